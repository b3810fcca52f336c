package order

import (
	"context"
	"time"
)

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its items atomically in a transaction.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrderByID retrieves an order with its items by UUID.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetOrderByNumber retrieves an order by its human-readable order number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// ListOrders returns orders, optionally filtered by status and/or type.
	ListOrders(ctx context.Context, status string, orderType string) ([]*Order, error)

	// ListByOriginalOrder returns the baking sub-orders derived from a primary order.
	ListByOriginalOrder(ctx context.Context, originalOrderID string) ([]*Order, error)

	// UpdateOrder writes back every mutable field of the order row.
	UpdateOrder(ctx context.Context, o *Order) error

	// UpdateItems writes back picking/baking progress for the given items.
	UpdateItems(ctx context.Context, items []*OrderItem) error

	// ListDueShipments returns non-terminal courier orders whose shipment due
	// date falls strictly before the cutoff.
	ListDueShipments(ctx context.Context, cutoff time.Time) ([]*Order, error)

	// ListDuePickups returns orders waiting for pickup whose preferred date
	// falls on or before the given day. Time-of-day filtering is up to the caller.
	ListDuePickups(ctx context.Context, day time.Time) ([]*Order, error)
}
