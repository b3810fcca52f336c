package invoice

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the lifecycle state of a harvested invoice.
type InvoiceStatus string

const (
	StatusOpen InvoiceStatus = "OPEN"
	StatusPaid InvoiceStatus = "PAID"
	StatusVoid InvoiceStatus = "VOID"
)

// Invoice is a supplier invoice harvested from email or entered manually.
// MessageID carries the Gmail message the invoice came from and doubles as
// the harvest idempotency key.
type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	Supplier      string        `json:"supplier"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        InvoiceStatus `json:"status"`
	MessageID     string        `json:"message_id,omitempty"`
	FileURL       string        `json:"file_url,omitempty"`
	IssuedAt      *time.Time    `json:"issued_date,omitempty"`
	DueAt         *time.Time    `json:"due_date,omitempty"`
	PaidAt        *time.Time    `json:"paid_date,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateInvoiceRequest is the payload for recording an invoice.
type CreateInvoiceRequest struct {
	Supplier  string  `json:"supplier"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	MessageID string  `json:"message_id,omitempty"`
	FileURL   string  `json:"file_url,omitempty"`
	IssuedAt  string  `json:"issued_date,omitempty"` // "2006-01-02"
	Notes     string  `json:"notes,omitempty"`
}

// MarkPaidRequest records a payment against an open invoice.
type MarkPaidRequest struct {
	PaidAt string `json:"paid_date,omitempty"` // "2006-01-02", defaults to today
}
