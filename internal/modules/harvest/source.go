package harvest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrRateLimited is returned when the mail provider answers 429. The handler
// surfaces this one distinctly; every other failure collapses to a generic error.
var ErrRateLimited = errors.New("mail source rate limited")

// Message is one email, resolved to its plain-text body.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    time.Time
	Body    string
}

// MessagePage is one batch of messages plus the token for the next batch.
type MessagePage struct {
	Messages      []Message
	NextPageToken string
}

// MailSource is the provider-agnostic mailbox interface. To support another
// provider (IMAP, Outlook), implement this interface.
type MailSource interface {
	// Messages returns one page of messages matching the query.
	Messages(ctx context.Context, query, pageToken string) (*MessagePage, error)
}

// ── Gmail adapter ─────────────────────────────────────────────────────────────

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

type gmailSource struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

// NewGmailSource creates a MailSource over the Gmail REST API using an OAuth
// access token obtained out of band.
func NewGmailSource(accessToken string) MailSource {
	return &gmailSource{
		accessToken: accessToken,
		baseURL:     gmailBaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type gmailListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

type gmailMessageResponse struct {
	ID           string `json:"id"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Body struct {
			Data string `json:"data"`
		} `json:"body"`
		Parts []struct {
			MimeType string `json:"mimeType"`
			Body     struct {
				Data string `json:"data"`
			} `json:"body"`
		} `json:"parts"`
	} `json:"payload"`
}

func (g *gmailSource) Messages(ctx context.Context, query, pageToken string) (*MessagePage, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	params.Set("maxResults", "25")

	var list gmailListResponse
	if err := g.get(ctx, "/messages?"+params.Encode(), &list); err != nil {
		return nil, err
	}

	page := &MessagePage{NextPageToken: list.NextPageToken}
	for _, ref := range list.Messages {
		var raw gmailMessageResponse
		if err := g.get(ctx, "/messages/"+ref.ID+"?format=full", &raw); err != nil {
			return nil, err
		}
		page.Messages = append(page.Messages, decodeGmailMessage(raw))
	}
	return page, nil
}

func (g *gmailSource) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gmail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail request failed with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeGmailMessage(raw gmailMessageResponse) Message {
	m := Message{ID: raw.ID}
	for _, h := range raw.Payload.Headers {
		switch h.Name {
		case "Subject":
			m.Subject = h.Value
		case "From":
			m.From = h.Value
		}
	}

	var millis int64
	fmt.Sscanf(raw.InternalDate, "%d", &millis)
	if millis > 0 {
		m.Date = time.UnixMilli(millis)
	}

	data := raw.Payload.Body.Data
	if data == "" {
		for _, part := range raw.Payload.Parts {
			if part.MimeType == "text/plain" && part.Body.Data != "" {
				data = part.Body.Data
				break
			}
		}
	}
	if data != "" {
		if body, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data); err == nil {
			m.Body = string(body)
		}
	}
	return m
}
