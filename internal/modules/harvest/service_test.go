package harvest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bakehouse/bakehouse-backend/internal/modules/invoice"
	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	pages []*MessagePage
	err   error
	calls int
}

func (s *fakeSource) Messages(_ context.Context, _, pageToken string) (*MessagePage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pages) == 0 {
		return &MessagePage{}, nil
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

type fakeHarvestRepo struct {
	seen map[string]string // message id -> kind
}

func newFakeHarvestRepo() *fakeHarvestRepo {
	return &fakeHarvestRepo{seen: map[string]string{}}
}

func (r *fakeHarvestRepo) Seen(_ context.Context, messageID string) (bool, error) {
	_, ok := r.seen[messageID]
	return ok, nil
}

func (r *fakeHarvestRepo) Record(_ context.Context, messageID, kind string) error {
	r.seen[messageID] = kind
	return nil
}

type fakeOrderCreator struct {
	created []string // customer names
	err     error
}

func (c *fakeOrderCreator) CreateOrder(_ context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, req.CustomerName)
	return &order.Order{CustomerName: req.CustomerName}, nil
}

type fakeInvoiceCreator struct {
	created []string // suppliers
}

func (c *fakeInvoiceCreator) CreateInvoice(_ context.Context, req invoice.CreateInvoiceRequest) (*invoice.Invoice, error) {
	c.created = append(c.created, req.Supplier)
	return &invoice.Invoice{Supplier: req.Supplier}, nil
}

func orderMessage(id string) Message {
	return Message{
		ID:      id,
		Subject: "New order #" + id,
		Body:    "Customer: Dana Levi\n- 1 x Challah @ 18.00\n",
	}
}

func newHarvestService(src MailSource, orders *fakeOrderCreator, invoices *fakeInvoiceCreator, repo Repository) *service {
	return &service{
		source:     src,
		orders:     orders,
		invoices:   invoices,
		repo:       repo,
		log:        zap.NewNop(),
		batchDelay: 0,
	}
}

func TestCheckEmailsCreatesOrders(t *testing.T) {
	src := &fakeSource{pages: []*MessagePage{
		{Messages: []Message{orderMessage("m1"), orderMessage("m2")}, NextPageToken: "p2"},
		{Messages: []Message{orderMessage("m3")}},
	}}
	orders := &fakeOrderCreator{}
	repo := newFakeHarvestRepo()
	svc := newHarvestService(src, orders, &fakeInvoiceCreator{}, repo)

	result, err := svc.CheckEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Batches)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.Created)
	assert.Zero(t, result.Duplicates)
	assert.Len(t, orders.created, 3)
	assert.Equal(t, "order", repo.seen["m1"])
}

func TestCheckEmailsSkipsSeenMessages(t *testing.T) {
	src := &fakeSource{pages: []*MessagePage{
		{Messages: []Message{orderMessage("m1"), orderMessage("m2")}},
	}}
	orders := &fakeOrderCreator{}
	repo := newFakeHarvestRepo()
	repo.seen["m1"] = "order"
	svc := newHarvestService(src, orders, &fakeInvoiceCreator{}, repo)

	result, err := svc.CheckEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"Dana Levi"}, orders.created)
}

func TestCheckEmailsRecordsUnparseable(t *testing.T) {
	src := &fakeSource{pages: []*MessagePage{
		{Messages: []Message{{ID: "junk", Body: "nothing useful"}}},
	}}
	repo := newFakeHarvestRepo()
	svc := newHarvestService(src, &fakeOrderCreator{}, &fakeInvoiceCreator{}, repo)

	result, err := svc.CheckEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Created)
	// unparseable messages are recorded so the next run doesn't retry them
	assert.Equal(t, "skipped", repo.seen["junk"])
}

func TestCheckEmailsRetriesFailedCreates(t *testing.T) {
	src := &fakeSource{pages: []*MessagePage{
		{Messages: []Message{orderMessage("m1")}},
	}}
	orders := &fakeOrderCreator{err: errors.New("db down")}
	repo := newFakeHarvestRepo()
	svc := newHarvestService(src, orders, &fakeInvoiceCreator{}, repo)

	result, err := svc.CheckEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	// a transient creation failure is NOT recorded; the next run retries it
	_, recorded := repo.seen["m1"]
	assert.False(t, recorded)
}

func TestCheckEmailsStopsAtBatchCap(t *testing.T) {
	// every page points to another one; the cap must stop the loop
	var pages []*MessagePage
	for i := 0; i < maxBatches+10; i++ {
		pages = append(pages, &MessagePage{
			Messages:      []Message{orderMessage(fmt.Sprintf("m%d", i))},
			NextPageToken: fmt.Sprintf("p%d", i+1),
		})
	}
	src := &fakeSource{pages: pages}
	svc := newHarvestService(src, &fakeOrderCreator{}, &fakeInvoiceCreator{}, newFakeHarvestRepo())

	result, err := svc.CheckEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, maxBatches, result.Batches)
	assert.Equal(t, maxBatches, src.calls)
}

func TestCheckEmailsSurfacesRateLimit(t *testing.T) {
	src := &fakeSource{err: ErrRateLimited}
	svc := newHarvestService(src, &fakeOrderCreator{}, &fakeInvoiceCreator{}, newFakeHarvestRepo())

	_, err := svc.CheckEmails(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestHarvestInvoices(t *testing.T) {
	src := &fakeSource{pages: []*MessagePage{
		{Messages: []Message{{
			ID:   "inv1",
			From: "Flour Mills <billing@flourmills.example>",
			Body: "Amount: 1250.50\n",
		}}},
	}}
	invoices := &fakeInvoiceCreator{}
	repo := newFakeHarvestRepo()
	svc := newHarvestService(src, &fakeOrderCreator{}, invoices, repo)

	result, err := svc.HarvestInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"Flour Mills"}, invoices.created)
	assert.Equal(t, "invoice", repo.seen["inv1"])
}

func TestTestConnection(t *testing.T) {
	svc := newHarvestService(&fakeSource{}, &fakeOrderCreator{}, &fakeInvoiceCreator{}, newFakeHarvestRepo())
	assert.NoError(t, svc.TestConnection(context.Background()))

	broken := newHarvestService(&fakeSource{err: errors.New("401 unauthorized")}, &fakeOrderCreator{}, &fakeInvoiceCreator{}, newFakeHarvestRepo())
	assert.Error(t, broken.TestConnection(context.Background()))
}
