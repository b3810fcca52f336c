package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service defines inventory business logic.
type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, category string, activeOnly bool) ([]*Item, error)
	ListLowStock(ctx context.Context) ([]*Item, error)
	// AdjustQuantity applies a signed delta, flooring at zero.
	AdjustQuantity(ctx context.Context, id string, req AdjustRequest) (*Item, error)
	DeactivateItem(ctx context.Context, id string) (*Item, error)
}

type service struct{ repo Repository }

// NewService creates a new inventory service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if strings.TrimSpace(req.SKU) == "" {
		return nil, fmt.Errorf("sku is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must be >= 0")
	}
	if existing, err := s.repo.GetBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, fmt.Errorf("sku %s already exists", req.SKU)
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	item := &Item{
		ID:                uuid.New(),
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		Unit:              unit,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListItems(ctx context.Context, category string, activeOnly bool) ([]*Item, error) {
	return s.repo.List(ctx, category, activeOnly)
}

func (s *service) ListLowStock(ctx context.Context) ([]*Item, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *service) AdjustQuantity(ctx context.Context, id string, req AdjustRequest) (*Item, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	item.Quantity += req.Delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) DeactivateItem(ctx context.Context, id string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	item.IsActive = false
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
