package invoice

import "context"

// Repository defines data access for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	// GetByMessageID returns the invoice harvested from a given email message,
	// or nil when the message has not produced an invoice yet.
	GetByMessageID(ctx context.Context, messageID string) (*Invoice, error)
	List(ctx context.Context, supplier string, status string) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
}
