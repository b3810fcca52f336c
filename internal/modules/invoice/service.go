package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service defines invoice business logic.
type Service interface {
	// CreateInvoice records an invoice. When the request carries a message_id
	// that already produced an invoice, the existing record is returned
	// unchanged instead of creating a duplicate.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)

	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, supplier string, status string) ([]*Invoice, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*Invoice, error)
	VoidInvoice(ctx context.Context, id string) (*Invoice, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new invoice service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if strings.TrimSpace(req.Supplier) == "" {
		return nil, fmt.Errorf("supplier is required")
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("amount must be >= 0")
	}

	// Idempotency: a message harvested twice yields the same invoice.
	if req.MessageID != "" {
		existing, err := s.repo.GetByMessageID(ctx, req.MessageID)
		if err == nil && existing != nil {
			return existing, nil
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "ILS"
	}

	now := s.now()
	inv := &Invoice{
		ID:            uuid.New(),
		InvoiceNumber: generateInvoiceNumber(now),
		Supplier:      req.Supplier,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        StatusOpen,
		MessageID:     req.MessageID,
		FileURL:       req.FileURL,
		Notes:         req.Notes,
	}
	if req.IssuedAt != "" {
		t, err := time.Parse("2006-01-02", req.IssuedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid issued_date: %w", err)
		}
		inv.IssuedAt = &t
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *service) ListInvoices(ctx context.Context, supplier string, status string) ([]*Invoice, error) {
	return s.repo.List(ctx, supplier, strings.ToUpper(status))
}

func (s *service) MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusOpen {
		return nil, fmt.Errorf("only OPEN invoices can be paid (current: %s)", inv.Status)
	}

	paidAt := s.now()
	if req.PaidAt != "" {
		t, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("invalid paid_date: %w", err)
		}
		paidAt = t
	}
	inv.Status = StatusPaid
	inv.PaidAt = &paidAt

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) VoidInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status == StatusPaid {
		return nil, fmt.Errorf("a PAID invoice cannot be voided")
	}
	inv.Status = StatusVoid

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// generateInvoiceNumber creates a human-readable invoice number: INV-YYYYMM-XXXX
func generateInvoiceNumber(t time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("INV-%s-%s", t.UTC().Format("200601"), suffix)
}
