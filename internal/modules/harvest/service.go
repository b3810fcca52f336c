package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bakehouse/bakehouse-backend/internal/modules/invoice"
	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"go.uber.org/zap"
)

// maxBatches caps one harvest run so a runaway mailbox cannot hold the request
// open indefinitely.
const maxBatches = 50

// defaultBatchDelay is the fixed pause between page fetches. There is no
// backoff; a rate-limited run simply fails with ErrRateLimited and the next
// run starts over.
const defaultBatchDelay = 500 * time.Millisecond

// Queries sent to the mail source for each harvest kind.
const (
	orderQuery   = `subject:"new order" newer_than:7d`
	invoiceQuery = `subject:invoice newer_than:30d`
)

// Result summarises one harvest run.
type Result struct {
	Batches    int `json:"batches"`
	Fetched    int `json:"fetched"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"` // unparseable or failed messages
}

// OrderCreator is the slice of the order service the harvester needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
}

// InvoiceCreator is the slice of the invoice service the harvester needs.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req invoice.CreateInvoiceRequest) (*invoice.Invoice, error)
}

// Service defines the email-harvesting operations.
type Service interface {
	// CheckEmails pages through order emails and creates orders.
	CheckEmails(ctx context.Context) (*Result, error)

	// HarvestInvoices pages through invoice emails and creates invoices.
	HarvestInvoices(ctx context.Context) (*Result, error)

	// TestConnection fetches a single page to verify mailbox access.
	TestConnection(ctx context.Context) error
}

type service struct {
	source     MailSource
	orders     OrderCreator
	invoices   InvoiceCreator
	repo       Repository
	log        *zap.Logger
	batchDelay time.Duration
}

// NewService creates a new harvest service.
func NewService(source MailSource, orders OrderCreator, invoices InvoiceCreator, repo Repository, log *zap.Logger) Service {
	return &service{
		source:     source,
		orders:     orders,
		invoices:   invoices,
		repo:       repo,
		log:        log,
		batchDelay: defaultBatchDelay,
	}
}

func (s *service) CheckEmails(ctx context.Context) (*Result, error) {
	return s.run(ctx, orderQuery, "order", func(ctx context.Context, m Message) error {
		req, err := ParseOrder(m)
		if err != nil {
			return fmt.Errorf("%w: %v", errUnparseable, err)
		}
		_, err = s.orders.CreateOrder(ctx, *req)
		return err
	})
}

func (s *service) HarvestInvoices(ctx context.Context) (*Result, error) {
	return s.run(ctx, invoiceQuery, "invoice", func(ctx context.Context, m Message) error {
		req, err := ParseInvoice(m)
		if err != nil {
			return fmt.Errorf("%w: %v", errUnparseable, err)
		}
		_, err = s.invoices.CreateInvoice(ctx, *req)
		return err
	})
}

func (s *service) TestConnection(ctx context.Context) error {
	_, err := s.source.Messages(ctx, "", "")
	return err
}

// errUnparseable marks messages that will never parse. They are recorded so
// later runs do not retry them, unlike transient creation failures.
var errUnparseable = errors.New("unparseable message")

// run drives the manual page-token loop shared by both harvest kinds. Each
// message is handled independently: a parse or create failure on one message
// is logged and counted, never fatal to the run.
func (s *service) run(ctx context.Context, query, kind string, handle func(context.Context, Message) error) (*Result, error) {
	result := &Result{}
	pageToken := ""

	for result.Batches < maxBatches {
		page, err := s.source.Messages(ctx, query, pageToken)
		if err != nil {
			return nil, fmt.Errorf("fetch batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
		result.Fetched += len(page.Messages)

		for _, m := range page.Messages {
			seen, err := s.repo.Seen(ctx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("dedup check: %w", err)
			}
			if seen {
				result.Duplicates++
				continue
			}

			if err := handle(ctx, m); err != nil {
				result.Skipped++
				s.log.Warn("harvest message skipped",
					zap.String("message_id", m.ID), zap.String("kind", kind), zap.Error(err))
				if errors.Is(err, errUnparseable) {
					if err := s.repo.Record(ctx, m.ID, "skipped"); err != nil {
						return nil, fmt.Errorf("record message %s: %w", m.ID, err)
					}
				}
				continue
			}
			if err := s.repo.Record(ctx, m.ID, kind); err != nil {
				return nil, fmt.Errorf("record message %s: %w", m.ID, err)
			}
			result.Created++
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.batchDelay):
		}
	}
	return result, nil
}
