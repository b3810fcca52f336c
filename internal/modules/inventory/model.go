package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stocked ingredient or finished product in the bakery.
type Item struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Category          string    `json:"category,omitempty"`
	Quantity          int       `json:"quantity"`
	Unit              string    `json:"unit"` // e.g. "kg", "unit", "bag"
	LowStockThreshold int       `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateItemRequest is the payload for adding a stock item.
type CreateItemRequest struct {
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	Quantity          int    `json:"quantity"`
	Unit              string `json:"unit"`
	LowStockThreshold int    `json:"low_stock_threshold,omitempty"`
}

// AdjustRequest changes an item's quantity by a signed delta.
type AdjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}
