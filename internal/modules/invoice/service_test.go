package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	invoices map[string]*Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: map[string]*Invoice{}}
}

func (r *fakeRepo) Create(_ context.Context, inv *Invoice) error {
	r.invoices[inv.ID.String()] = inv
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return inv, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (r *fakeRepo) GetByMessageID(_ context.Context, messageID string) (*Invoice, error) {
	for _, inv := range r.invoices {
		if inv.MessageID == messageID {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(_ context.Context, supplier, status string) ([]*Invoice, error) {
	var out []*Invoice
	for _, inv := range r.invoices {
		if supplier != "" && inv.Supplier != supplier {
			continue
		}
		if status != "" && string(inv.Status) != status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, inv *Invoice) error {
	r.invoices[inv.ID.String()] = inv
	return nil
}

var invoiceTestTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *service {
	return &service{repo: repo, now: func() time.Time { return invoiceTestTime }}
}

func TestCreateInvoice(t *testing.T) {
	svc := newTestService(newFakeRepo())

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Supplier: "Flour Mills Ltd",
		Amount:   1250.50,
		IssuedAt: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, inv.Status)
	assert.Equal(t, "ILS", inv.Currency)
	assert.Contains(t, inv.InvoiceNumber, "INV-202403-")
	require.NotNil(t, inv.IssuedAt)
	assert.Equal(t, "2024-03-01", inv.IssuedAt.Format("2006-01-02"))
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{Amount: 10})
	assert.ErrorContains(t, err, "supplier is required")

	_, err = svc.CreateInvoice(context.Background(), CreateInvoiceRequest{Supplier: "X", Amount: -1})
	assert.ErrorContains(t, err, "amount must be >= 0")

	_, err = svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Supplier: "X", Amount: 1, IssuedAt: "01/03/2024",
	})
	assert.ErrorContains(t, err, "invalid issued_date")
}

func TestCreateInvoiceIdempotentByMessageID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	first, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Supplier: "Flour Mills Ltd", Amount: 100, MessageID: "msg-1",
	})
	require.NoError(t, err)

	second, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Supplier: "Flour Mills Ltd", Amount: 999, MessageID: "msg-1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 100.0, second.Amount) // original record returned unchanged
	assert.Len(t, repo.invoices, 1)
}

func TestMarkPaid(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{Supplier: "X", Amount: 50})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), inv.ID.String(), MarkPaidRequest{PaidAt: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "2024-03-10", paid.PaidAt.Format("2006-01-02"))

	_, err = svc.MarkPaid(context.Background(), inv.ID.String(), MarkPaidRequest{})
	assert.ErrorContains(t, err, "only OPEN invoices can be paid")
}

func TestVoidInvoice(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{Supplier: "X", Amount: 50})
	require.NoError(t, err)

	voided, err := svc.VoidInvoice(context.Background(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusVoid, voided.Status)

	paid, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{Supplier: "Y", Amount: 10})
	require.NoError(t, err)
	_, err = svc.MarkPaid(context.Background(), paid.ID.String(), MarkPaidRequest{})
	require.NoError(t, err)
	_, err = svc.VoidInvoice(context.Background(), paid.ID.String())
	assert.ErrorContains(t, err, "PAID invoice cannot be voided")
}
