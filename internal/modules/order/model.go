package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending            OrderStatus = "PENDING"
	StatusPicking            OrderStatus = "PICKING"
	StatusWaitingForShipment OrderStatus = "WAITING_FOR_SHIPMENT"
	StatusWaitingForPickup   OrderStatus = "WAITING_FOR_PICKUP"
	StatusWithCourier        OrderStatus = "WITH_COURIER"
	StatusArchived           OrderStatus = "ARCHIVED"
	StatusCancelled          OrderStatus = "CANCELLED"
)

// OrderType distinguishes customer orders from the baking sub-orders derived from them.
type OrderType string

const (
	TypePrimary OrderType = "PRIMARY"
	TypeBaking  OrderType = "BAKING"
)

// PickingStatus tracks warehouse picking progress independently of the order status.
type PickingStatus string

const (
	PickingNotStarted PickingStatus = "NOT_STARTED"
	PickingInProgress PickingStatus = "IN_PROGRESS"
	PickingCompleted  PickingStatus = "COMPLETED"
)

// BakingStatus tracks oven progress on a baking sub-order.
type BakingStatus string

const (
	BakingNotStarted BakingStatus = "NOT_STARTED"
	BakingInProgress BakingStatus = "IN_PROGRESS"
	BakingCompleted  BakingStatus = "COMPLETED"
)

// ShippingMethod is how the customer receives the order.
type ShippingMethod string

const (
	MethodCourier    ShippingMethod = "COURIER"
	MethodSelfPickup ShippingMethod = "SELF_PICKUP"
)

// DeliveryStatus is the terminal delivery outcome recorded by the courier.
type DeliveryStatus string

const (
	DeliveryDelivered    DeliveryStatus = "DELIVERED"
	DeliveryNotDelivered DeliveryStatus = "NOT_DELIVERED"
)

// Order is the central record of the system. The status field drives every
// downstream workflow; all status changes go through the transition table in
// transitions.go.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	OrderNumber string      `json:"order_number"`
	OrderType   OrderType   `json:"order_type"`
	Status      OrderStatus `json:"status"`

	// Customer & contact
	CustomerName   string `json:"customer_name"`
	ShippingName   string `json:"shipping_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	SecondaryPhone string `json:"secondary_phone,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`

	// Financial
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`

	// Picking sub-state
	PickingStatus      PickingStatus   `json:"picking_status"`
	PickingStartedAt   *time.Time      `json:"picking_started_date,omitempty"`
	PickingCompletedAt *time.Time      `json:"picking_completed_date,omitempty"`
	LocationBagSummary json.RawMessage `json:"location_bag_summary,omitempty"`

	// Baking sub-state (only meaningful on BAKING orders)
	BakingStatus    BakingStatus `json:"baking_status,omitempty"`
	NotesForBaker   string       `json:"notes_for_baker,omitempty"`
	OriginalOrderID *uuid.UUID   `json:"original_order_id,omitempty"`

	// Shipping sub-state
	ShippingMethod      *ShippingMethod `json:"shipping_method_chosen,omitempty"`
	CourierCompany      string          `json:"courier_company,omitempty"`
	ShipmentDueDate     *time.Time      `json:"shipment_due_date,omitempty"`
	PickupPreferredDate *time.Time      `json:"pickup_preferred_date,omitempty"`
	PickupPreferredTime string          `json:"pickup_preferred_time,omitempty"` // "HH:MM"

	// Delivery sub-state
	DeliveryStatus    *DeliveryStatus `json:"delivery_status,omitempty"`
	DeliveredBy       string          `json:"delivered_by,omitempty"`
	DeliveredAt       *time.Time      `json:"delivered_date,omitempty"`
	DeliveryPhotoURL  string          `json:"delivery_photo_url,omitempty"`
	DeliveryNotes     string          `json:"delivery_notes,omitempty"`
	NonDeliveryReason string          `json:"non_delivery_reason,omitempty"`

	// Return sub-state (shipment pulled back from a courier)
	ReturnReason string     `json:"return_reason,omitempty"`
	ReturnedBy   string     `json:"returned_by,omitempty"`
	ReturnedAt   *time.Time `json:"returned_date,omitempty"`

	Notes string       `json:"notes,omitempty"`
	Items []*OrderItem `json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a single product line within an order.
type OrderItem struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         float64         `json:"unit_price"`
	LineTotal         float64         `json:"line_total"`
	PickedQuantity    int             `json:"picked_quantity"`
	BakedQuantity     int             `json:"baked_quantity"`
	NeedsBaking       bool            `json:"needs_baking"`
	LocationBreakdown json.RawMessage `json:"location_breakdown,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the order can no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusArchived || o.Status == StatusCancelled
}

// ── Request payloads ──────────────────────────────────────────────────────────

// NewItemRequest describes one line of a new order.
type NewItemRequest struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	NeedsBaking bool    `json:"needs_baking"`
}

// CreateOrderRequest is the payload for manual order entry. Orders created from
// harvested email go through the same path.
type CreateOrderRequest struct {
	OrderNumber    string           `json:"order_number,omitempty"` // generated when empty
	CustomerName   string           `json:"customer_name"`
	ShippingName   string           `json:"shipping_name,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	SecondaryPhone string           `json:"secondary_phone,omitempty"`
	Address        string           `json:"address,omitempty"`
	City           string           `json:"city,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Items          []NewItemRequest `json:"items"`
}

// PickedQuantityRequest records picking progress for one item.
type PickedQuantityRequest struct {
	ItemID            string          `json:"item_id"`
	PickedQuantity    int             `json:"picked_quantity"`
	LocationBreakdown json.RawMessage `json:"location_breakdown,omitempty"`
}

// RecordPickingRequest is the payload for per-item picking updates.
type RecordPickingRequest struct {
	Items []PickedQuantityRequest `json:"items"`
}

// BakedQuantityRequest records baking progress for one item of a baking order.
type BakedQuantityRequest struct {
	ItemID        string `json:"item_id"`
	BakedQuantity int    `json:"baked_quantity"`
}

// RecordBakingRequest is the payload for per-item baking updates.
type RecordBakingRequest struct {
	Items     []BakedQuantityRequest `json:"items"`
	Completed bool                   `json:"completed,omitempty"`
}

// SplitBakingRequest derives a baking sub-order from a primary order.
type SplitBakingRequest struct {
	NotesForBaker string `json:"notes_for_baker,omitempty"`
}

// ChooseMethodRequest selects courier shipping or self pickup. Exactly one
// branch of fields applies; the shared validator clears the other.
type ChooseMethodRequest struct {
	Method              string `json:"method"`
	CourierCompany      string `json:"courier_company,omitempty"`
	ShipmentDueDate     string `json:"shipment_due_date,omitempty"`     // "2006-01-02"
	PickupPreferredDate string `json:"pickup_preferred_date,omitempty"` // "2006-01-02"
	PickupPreferredTime string `json:"pickup_preferred_time,omitempty"` // "HH:MM"
}

// UpdateDatesRequest edits the active shipping branch's target date/time.
type UpdateDatesRequest struct {
	ShipmentDueDate     string `json:"shipment_due_date,omitempty"`
	PickupPreferredDate string `json:"pickup_preferred_date,omitempty"`
	PickupPreferredTime string `json:"pickup_preferred_time,omitempty"`
}

// DispatchRequest hands a waiting shipment to a courier.
type DispatchRequest struct {
	DeliveredBy string `json:"delivered_by"`
}

// DeliveredRequest is the courier's proof-of-delivery payload.
type DeliveredRequest struct {
	DeliveredBy      string `json:"delivered_by"`
	DeliveryPhotoURL string `json:"delivery_photo_url,omitempty"`
	DeliveryNotes    string `json:"delivery_notes,omitempty"`
}

// NotDeliveredRequest records a failed delivery attempt.
type NotDeliveredRequest struct {
	DeliveredBy       string `json:"delivered_by"`
	NonDeliveryReason string `json:"non_delivery_reason"`
}

// ReturnRequest pulls a courier-assigned shipment back to the waiting queue.
type ReturnRequest struct {
	Reason              string `json:"reason"`
	ReturnedBy          string `json:"returned_by"`
	Method              string `json:"method"`
	CourierCompany      string `json:"courier_company,omitempty"`
	ShipmentDueDate     string `json:"shipment_due_date,omitempty"`
	PickupPreferredDate string `json:"pickup_preferred_date,omitempty"`
	PickupPreferredTime string `json:"pickup_preferred_time,omitempty"`
}

// RevertBakingRequest sends a completed baking order back to in-progress.
type RevertBakingRequest struct {
	Reason     string `json:"reason,omitempty"`
	RevertedBy string `json:"reverted_by,omitempty"`
}
