package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items map[string]*Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*Item{}}
}

func (r *fakeRepo) Create(_ context.Context, item *Item) error {
	r.items[item.ID.String()] = item
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return item, nil
}

func (r *fakeRepo) GetBySKU(_ context.Context, sku string) (*Item, error) {
	for _, item := range r.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (r *fakeRepo) List(_ context.Context, category string, activeOnly bool) ([]*Item, error) {
	var out []*Item
	for _, item := range r.items {
		if category != "" && item.Category != category {
			continue
		}
		if activeOnly && !item.IsActive {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeRepo) ListLowStock(_ context.Context) ([]*Item, error) {
	var out []*Item
	for _, item := range r.items {
		if item.IsActive && item.Quantity <= item.LowStockThreshold {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, item *Item) error {
	r.items[item.ID.String()] = item
	return nil
}

func TestCreateItem(t *testing.T) {
	svc := NewService(newFakeRepo())

	item, err := svc.CreateItem(context.Background(), CreateItemRequest{
		SKU: "FLOUR-01", Name: "Bread flour", Quantity: 40, LowStockThreshold: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "unit", item.Unit)
	assert.True(t, item.IsActive)
}

func TestCreateItemRejectsDuplicateSKU(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.CreateItem(context.Background(), CreateItemRequest{SKU: "FLOUR-01", Name: "Bread flour"})
	require.NoError(t, err)

	_, err = svc.CreateItem(context.Background(), CreateItemRequest{SKU: "FLOUR-01", Name: "Other flour"})
	assert.ErrorContains(t, err, "already exists")
}

func TestAdjustQuantityFloorsAtZero(t *testing.T) {
	svc := NewService(newFakeRepo())
	item, err := svc.CreateItem(context.Background(), CreateItemRequest{SKU: "FLOUR-01", Name: "Bread flour", Quantity: 5})
	require.NoError(t, err)

	_, err = svc.AdjustQuantity(context.Background(), item.ID.String(), AdjustRequest{Delta: 0})
	assert.ErrorContains(t, err, "must be non-zero")

	got, err := svc.AdjustQuantity(context.Background(), item.ID.String(), AdjustRequest{Delta: -8})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	got, err = svc.AdjustQuantity(context.Background(), item.ID.String(), AdjustRequest{Delta: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)
}

func TestListLowStock(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.CreateItem(context.Background(), CreateItemRequest{SKU: "FLOUR-01", Name: "Bread flour", Quantity: 3, LowStockThreshold: 10})
	require.NoError(t, err)
	_, err = svc.CreateItem(context.Background(), CreateItemRequest{SKU: "SUGAR-01", Name: "Sugar", Quantity: 50, LowStockThreshold: 10})
	require.NoError(t, err)

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "FLOUR-01", low[0].SKU)
}

func TestDeactivateItem(t *testing.T) {
	svc := NewService(newFakeRepo())
	item, err := svc.CreateItem(context.Background(), CreateItemRequest{SKU: "FLOUR-01", Name: "Bread flour"})
	require.NoError(t, err)

	got, err := svc.DeactivateItem(context.Background(), item.ID.String())
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := svc.ListItems(context.Background(), "", true)
	require.NoError(t, err)
	assert.Empty(t, active)
}
