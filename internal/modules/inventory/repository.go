package inventory

import "context"

// Repository defines data access for inventory items.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	GetBySKU(ctx context.Context, sku string) (*Item, error)
	List(ctx context.Context, category string, activeOnly bool) ([]*Item, error)
	ListLowStock(ctx context.Context) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
}
