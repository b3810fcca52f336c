// Package sweep implements the daily overdue-order passes: any order whose
// shipment or pickup target has passed without resolution gets its date pushed
// forward one day with a note. Each pass is idempotent per calendar day via a
// persisted last-run stamp, and each order is updated independently so one
// failure never blocks the rest.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"go.uber.org/zap"
)

// Setting keys holding the last-run day of each pass.
const (
	KeyShipmentsLastRun = "overdue_shipments_last_run"
	KeyPickupsLastRun   = "overdue_pickups_last_run"
)

// pickupGrace is how long past the preferred pickup time an order may sit
// before the pass considers it overdue.
const pickupGrace = 60 * time.Minute

const dayFormat = "2006-01-02"

// Report summarises one pass.
type Report struct {
	Checked  int  `json:"checked"`
	Advanced int  `json:"advanced"`
	Failed   int  `json:"failed"`
	Skipped  bool `json:"skipped"` // true when the pass already ran today
}

// OrderStore is the slice of the order repository the sweeps need.
type OrderStore interface {
	ListDueShipments(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
	ListDuePickups(ctx context.Context, day time.Time) ([]*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
}

// Settings persists the last-run stamps.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Service runs the overdue passes.
type Service interface {
	ProcessOverdueShipments(ctx context.Context) (*Report, error)
	ProcessOverduePickups(ctx context.Context) (*Report, error)
}

type service struct {
	orders   OrderStore
	settings Settings
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new sweep service.
func NewService(orders OrderStore, settings Settings, log *zap.Logger) Service {
	return &service{orders: orders, settings: settings, log: log, now: time.Now}
}

func (s *service) ProcessOverdueShipments(ctx context.Context) (*Report, error) {
	now := s.now()
	if s.ranToday(ctx, KeyShipmentsLastRun, now) {
		return &Report{Skipped: true}, nil
	}

	today := startOfDay(now)
	overdue, err := s.orders.ListDueShipments(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list overdue shipments: %w", err)
	}

	report := &Report{Checked: len(overdue)}
	for _, o := range overdue {
		if o.ShipmentDueDate == nil {
			continue
		}
		from := *o.ShipmentDueDate
		next := from.AddDate(0, 0, 1)
		o.ShipmentDueDate = &next
		o.Notes = appendNote(o.Notes, fmt.Sprintf(
			"shipment date advanced automatically from %s to %s",
			from.Format(dayFormat), next.Format(dayFormat)))

		if err := s.orders.UpdateOrder(ctx, o); err != nil {
			report.Failed++
			s.log.Warn("overdue shipment update failed",
				zap.String("order_number", o.OrderNumber), zap.Error(err))
			continue
		}
		report.Advanced++
	}

	s.stamp(ctx, KeyShipmentsLastRun, now)
	return report, nil
}

func (s *service) ProcessOverduePickups(ctx context.Context) (*Report, error) {
	now := s.now()
	if s.ranToday(ctx, KeyPickupsLastRun, now) {
		return &Report{Skipped: true}, nil
	}

	today := startOfDay(now)
	candidates, err := s.orders.ListDuePickups(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list due pickups: %w", err)
	}

	report := &Report{Checked: len(candidates)}
	for _, o := range candidates {
		if o.PickupPreferredDate == nil {
			continue
		}
		due, ok := pickupDeadline(*o.PickupPreferredDate, o.PickupPreferredTime, now.Location())
		if !ok || !now.After(due.Add(pickupGrace)) {
			continue
		}

		from := *o.PickupPreferredDate
		next := from.AddDate(0, 0, 1)
		o.PickupPreferredDate = &next
		o.Notes = appendNote(o.Notes, fmt.Sprintf(
			"pickup date advanced automatically from %s to %s",
			from.Format(dayFormat), next.Format(dayFormat)))

		if err := s.orders.UpdateOrder(ctx, o); err != nil {
			report.Failed++
			s.log.Warn("overdue pickup update failed",
				zap.String("order_number", o.OrderNumber), zap.Error(err))
			continue
		}
		report.Advanced++
	}

	s.stamp(ctx, KeyPickupsLastRun, now)
	return report, nil
}

// ranToday reports whether the pass already ran on the current wall-clock day.
// A missing or unreadable stamp counts as "not run".
func (s *service) ranToday(ctx context.Context, key string, now time.Time) bool {
	last, err := s.settings.Get(ctx, key)
	if err != nil {
		return false
	}
	return last == now.Format(dayFormat)
}

func (s *service) stamp(ctx context.Context, key string, now time.Time) {
	if err := s.settings.Set(ctx, key, now.Format(dayFormat)); err != nil {
		s.log.Warn("failed to persist sweep last-run stamp",
			zap.String("key", key), zap.Error(err))
	}
}

// pickupDeadline combines the preferred date with the "HH:MM" time. With no
// time set, the whole preferred day counts, so the deadline is end of day.
func pickupDeadline(day time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	if hhmm == "" {
		return base.AddDate(0, 0, 1).Add(-time.Nanosecond), true
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return base.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
