package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"github.com/bakehouse/bakehouse-backend/internal/modules/settings"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderStore struct {
	shipments  []*order.Order
	pickups    []*order.Order
	failNumber string
	updated    []string
}

func (s *fakeOrderStore) ListDueShipments(_ context.Context, _ time.Time) ([]*order.Order, error) {
	return s.shipments, nil
}

func (s *fakeOrderStore) ListDuePickups(_ context.Context, _ time.Time) ([]*order.Order, error) {
	return s.pickups, nil
}

func (s *fakeOrderStore) UpdateOrder(_ context.Context, o *order.Order) error {
	if o.OrderNumber == s.failNumber {
		return errors.New("write failed")
	}
	s.updated = append(s.updated, o.OrderNumber)
	return nil
}

type fakeSettings struct {
	values map[string]string
}

func (s *fakeSettings) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", settings.ErrNotFound
	}
	return v, nil
}

func (s *fakeSettings) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func newTestService(store *fakeOrderStore, kv *fakeSettings, at time.Time) *service {
	return &service{
		orders:   store,
		settings: kv,
		log:      zap.NewNop(),
		now:      func() time.Time { return at },
	}
}

func shipmentOrder(number string, due time.Time) *order.Order {
	return &order.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		Status:          order.StatusWaitingForShipment,
		ShipmentDueDate: &due,
	}
}

func pickupOrder(number string, day time.Time, hhmm string) *order.Order {
	return &order.Order{
		ID:                  uuid.New(),
		OrderNumber:         number,
		Status:              order.StatusWaitingForPickup,
		PickupPreferredDate: &day,
		PickupPreferredTime: hhmm,
	}
}

func TestProcessOverdueShipmentsAdvancesDates(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := shipmentOrder("ORD-1", due)
	store := &fakeOrderStore{shipments: []*order.Order{o}}
	kv := &fakeSettings{values: map[string]string{}}
	svc := newTestService(store, kv, now)

	report, err := svc.ProcessOverdueShipments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Advanced)
	assert.False(t, report.Skipped)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *o.ShipmentDueDate)
	assert.Contains(t, o.Notes, "shipment date advanced automatically from 2024-01-01 to 2024-01-02")
	assert.Equal(t, "2024-01-02", kv.values[KeyShipmentsLastRun])
}

func TestProcessOverdueShipmentsRunsOncePerDay(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	o := shipmentOrder("ORD-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := &fakeOrderStore{shipments: []*order.Order{o}}
	kv := &fakeSettings{values: map[string]string{}}
	svc := newTestService(store, kv, now)

	first, err := svc.ProcessOverdueShipments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Advanced)

	second, err := svc.ProcessOverdueShipments(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Advanced)
	assert.Len(t, store.updated, 1)
}

func TestProcessOverdueShipmentsIsolatesFailures(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := shipmentOrder("ORD-A", due)
	b := shipmentOrder("ORD-B", due)
	c := shipmentOrder("ORD-C", due)
	store := &fakeOrderStore{shipments: []*order.Order{a, b, c}, failNumber: "ORD-B"}
	kv := &fakeSettings{values: map[string]string{}}
	svc := newTestService(store, kv, now)

	report, err := svc.ProcessOverdueShipments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Advanced)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"ORD-A", "ORD-C"}, store.updated)
}

func TestProcessOverduePickupsAdvancesPastGrace(t *testing.T) {
	// Pickup preferred at 10:00, checked at 11:30: past the one-hour grace.
	now := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := pickupOrder("ORD-1", day, "10:00")
	store := &fakeOrderStore{pickups: []*order.Order{o}}
	kv := &fakeSettings{values: map[string]string{}}
	svc := newTestService(store, kv, now)

	report, err := svc.ProcessOverduePickups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Advanced)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *o.PickupPreferredDate)
	assert.Contains(t, o.Notes, "pickup date advanced automatically from 2024-01-01 to 2024-01-02")
}

func TestProcessOverduePickupsRespectsGraceWindow(t *testing.T) {
	// Checked at 10:45, only 45 minutes past the preferred time: still in grace.
	now := time.Date(2024, 1, 1, 10, 45, 0, 0, time.UTC)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := pickupOrder("ORD-1", day, "10:00")
	store := &fakeOrderStore{pickups: []*order.Order{o}}
	kv := &fakeSettings{values: map[string]string{}}
	svc := newTestService(store, kv, now)

	report, err := svc.ProcessOverduePickups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Zero(t, report.Advanced)
	assert.Empty(t, store.updated)
}

func TestProcessOverduePickupsNoTimeMeansEndOfDay(t *testing.T) {
	// No preferred time: the order is not overdue until the day is over.
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := pickupOrder("ORD-1", day, "")
	store := &fakeOrderStore{pickups: []*order.Order{o}}
	kv := &fakeSettings{values: map[string]string{}}

	svc := newTestService(store, kv, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC))
	report, err := svc.ProcessOverduePickups(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Advanced)

	svc = newTestService(store, kv, time.Date(2024, 1, 2, 1, 30, 0, 0, time.UTC))
	report, err = svc.ProcessOverduePickups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Advanced)
}

func TestPickupDeadline(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	due, ok := pickupDeadline(day, "14:30", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC), due)

	_, ok = pickupDeadline(day, "25:99", time.UTC)
	assert.False(t, ok)
}
