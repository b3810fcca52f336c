package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	orders     map[string]*Order
	updateErr  error
	failNumber string   // UpdateOrder fails for this order number only
	updated    []string // order numbers in write order
	itemWrites int
}

func newFakeRepo(orders ...*Order) *fakeRepo {
	r := &fakeRepo{orders: map[string]*Order{}}
	for _, o := range orders {
		r.orders[o.ID.String()] = o
	}
	return r
}

func (r *fakeRepo) CreateOrder(_ context.Context, o *Order) error {
	r.orders[o.ID.String()] = o
	return nil
}

func (r *fakeRepo) GetOrderByID(_ context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return o, nil
}

func (r *fakeRepo) GetOrderByNumber(_ context.Context, number string) (*Order, error) {
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (r *fakeRepo) ListOrders(_ context.Context, status, orderType string) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		if orderType != "" && string(o.OrderType) != orderType {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeRepo) ListByOriginalOrder(_ context.Context, originalID string) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.OriginalOrderID != nil && o.OriginalOrderID.String() == originalID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateOrder(_ context.Context, o *Order) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.failNumber != "" && o.OrderNumber == r.failNumber {
		return fmt.Errorf("write failed for %s", o.OrderNumber)
	}
	r.orders[o.ID.String()] = o
	r.updated = append(r.updated, o.OrderNumber)
	return nil
}

func (r *fakeRepo) UpdateItems(_ context.Context, items []*OrderItem) error {
	r.itemWrites += len(items)
	return nil
}

func (r *fakeRepo) ListDueShipments(_ context.Context, cutoff time.Time) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.Status != StatusWaitingForShipment && o.Status != StatusWithCourier {
			continue
		}
		if o.ShipmentDueDate != nil && o.ShipmentDueDate.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListDuePickups(_ context.Context, day time.Time) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.Status != StatusWaitingForPickup {
			continue
		}
		if o.PickupPreferredDate != nil && !o.PickupPreferredDate.After(day) {
			out = append(out, o)
		}
	}
	return out, nil
}

// fakeNotifier records the events it receives.
type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) OrderEvent(_ context.Context, _ *Order, event string) {
	n.events = append(n.events, event)
}

func newTestService(repo *fakeRepo, notifier *fakeNotifier, at time.Time) *service {
	return &service{
		repo:     repo,
		notifier: notifier,
		log:      zap.NewNop(),
		now:      func() time.Time { return at },
	}
}
