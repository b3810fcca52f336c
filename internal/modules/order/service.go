package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle events handed to the Notifier. Delivery of these is best effort
// and never blocks the triggering operation.
const (
	EventPickingStarted   = "picking_started"
	EventPickingCompleted = "picking_completed"
	EventBakingSplit      = "baking_order_split"
	EventDispatched       = "order_dispatched"
	EventDelivered        = "order_delivered"
	EventNotDelivered     = "order_not_delivered"
	EventReturned         = "order_returned"
)

// Notifier receives order lifecycle events. Implementations log their own
// failures; the order service never sees them.
type Notifier interface {
	OrderEvent(ctx context.Context, o *Order, event string)
}

// Service defines the order lifecycle business logic.
type Service interface {
	// CreateOrder validates and persists a new primary order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// GetOrder retrieves a full order with its items by UUID.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// GetOrderByNumber retrieves an order by its human-readable number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// ListOrders returns orders optionally filtered by status and type.
	ListOrders(ctx context.Context, status string, orderType string) ([]*Order, error)

	// ListBakingOrders returns the baking sub-orders of a primary order.
	ListBakingOrders(ctx context.Context, originalOrderID string) ([]*Order, error)

	// StartPicking moves a pending order into the picking workflow.
	StartPicking(ctx context.Context, id string) (*Order, error)

	// RecordPicking saves per-item picked quantities and location breakdowns.
	RecordPicking(ctx context.Context, id string, req RecordPickingRequest) (*Order, error)

	// CompletePicking closes the picking phase and computes the bag summary.
	CompletePicking(ctx context.Context, id string) (*Order, error)

	// SplitBakingOrder derives a baking sub-order from the items that need baking.
	SplitBakingOrder(ctx context.Context, id string, req SplitBakingRequest) (*Order, error)

	// RecordBaking saves per-item baked quantities on a baking sub-order.
	RecordBaking(ctx context.Context, id string, req RecordBakingRequest) (*Order, error)

	// ChooseShippingMethod selects courier or self-pickup and sets the target date.
	ChooseShippingMethod(ctx context.Context, id string, req ChooseMethodRequest) (*Order, error)

	// UpdateShippingDates edits the active branch's target date/time.
	UpdateShippingDates(ctx context.Context, id string, req UpdateDatesRequest) (*Order, error)

	// DispatchWithCourier hands a waiting shipment to a courier.
	DispatchWithCourier(ctx context.Context, id string, req DispatchRequest) (*Order, error)

	// MarkDelivered records a successful delivery and archives the order.
	MarkDelivered(ctx context.Context, id string, req DeliveredRequest) (*Order, error)

	// MarkNotDelivered records a failed delivery and archives the order.
	MarkNotDelivered(ctx context.Context, id string, req NotDeliveredRequest) (*Order, error)

	// ReturnToQueue pulls a courier-assigned shipment back to the waiting queue.
	ReturnToQueue(ctx context.Context, id string, req ReturnRequest) (*Order, error)

	// RevertBakingOrder reopens a completed baking order from the archive view.
	RevertBakingOrder(ctx context.Context, id string, req RevertBakingRequest) (*Order, error)

	// ArchiveOrder moves an order to the archive explicitly.
	ArchiveOrder(ctx context.Context, id string) (*Order, error)

	// CancelOrder cancels an order that has not reached a terminal state.
	CancelOrder(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, notifier Notifier, log *zap.Logger) Service {
	return &service{repo: repo, notifier: notifier, log: log, now: time.Now}
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("customer_name is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	currency := req.Currency
	if currency == "" {
		currency = "ILS"
	}

	var items []*OrderItem
	var total float64
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return nil, fmt.Errorf("product_name is required on every item")
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be > 0 for %s", it.ProductName)
		}
		lineTotal := it.UnitPrice * float64(it.Quantity)
		total += lineTotal
		items = append(items, &OrderItem{
			ID:          uuid.New(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lineTotal,
			NeedsBaking: it.NeedsBaking,
		})
	}

	number := strings.TrimSpace(req.OrderNumber)
	if number == "" {
		number = generateOrderNumber(s.now())
	} else if existing, err := s.repo.GetOrderByNumber(ctx, number); err == nil && existing != nil {
		return nil, fmt.Errorf("order number %s already exists", number)
	}

	o := &Order{
		ID:             uuid.New(),
		OrderNumber:    number,
		OrderType:      TypePrimary,
		Status:         StatusPending,
		CustomerName:   req.CustomerName,
		ShippingName:   req.ShippingName,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Address:        req.Address,
		City:           req.City,
		TotalAmount:    round2(total),
		Currency:       currency,
		PickingStatus:  PickingNotStarted,
		Notes:          req.Notes,
		Items:          items,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, orderNumber)
}

func (s *service) ListOrders(ctx context.Context, status string, orderType string) ([]*Order, error) {
	return s.repo.ListOrders(ctx, strings.ToUpper(status), strings.ToUpper(orderType))
}

func (s *service) ListBakingOrders(ctx context.Context, originalOrderID string) ([]*Order, error) {
	return s.repo.ListByOriginalOrder(ctx, originalOrderID)
}

func (s *service) StartPicking(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusPicking); err != nil {
		return nil, err
	}
	now := s.now()
	o.PickingStatus = PickingNotStarted
	o.PickingStartedAt = &now

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventPickingStarted)
	return o, nil
}

func (s *service) RecordPicking(ctx context.Context, id string, req RecordPickingRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if o.Status != StatusPicking {
		return nil, fmt.Errorf("order %s is not in picking (current: %s)", o.OrderNumber, o.Status)
	}
	if o.PickingStatus == PickingCompleted {
		return nil, fmt.Errorf("picking already completed for order %s", o.OrderNumber)
	}

	updated, err := applyPickedQuantities(o, req.Items)
	if err != nil {
		return nil, err
	}
	o.PickingStatus = PickingInProgress

	if err := s.repo.UpdateItems(ctx, updated); err != nil {
		return nil, err
	}
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CompletePicking(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if o.Status != StatusPicking {
		return nil, fmt.Errorf("order %s is not in picking (current: %s)", o.OrderNumber, o.Status)
	}

	now := s.now()
	o.PickingStatus = PickingCompleted
	o.PickingCompletedAt = &now
	o.LocationBagSummary = buildBagSummary(o.Items)

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventPickingCompleted)
	return o, nil
}

func (s *service) SplitBakingOrder(ctx context.Context, id string, req SplitBakingRequest) (*Order, error) {
	parent, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if parent.OrderType != TypePrimary {
		return nil, fmt.Errorf("only a primary order can be split into a baking order")
	}

	var items []*OrderItem
	for _, it := range parent.Items {
		if !it.NeedsBaking {
			continue
		}
		items = append(items, &OrderItem{
			ID:          uuid.New(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
			NeedsBaking: true,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("order %s has no items that need baking", parent.OrderNumber)
	}

	parentID := parent.ID
	sub := &Order{
		ID:              uuid.New(),
		OrderNumber:     parent.OrderNumber + "-B",
		OrderType:       TypeBaking,
		Status:          StatusPicking,
		CustomerName:    parent.CustomerName,
		Currency:        parent.Currency,
		PickingStatus:   PickingNotStarted,
		BakingStatus:    BakingNotStarted,
		NotesForBaker:   req.NotesForBaker,
		OriginalOrderID: &parentID,
		Items:           items,

		// Baking follows the parent's target date from day one.
		ShippingMethod:      parent.ShippingMethod,
		ShipmentDueDate:     parent.ShipmentDueDate,
		PickupPreferredDate: parent.PickupPreferredDate,
		PickupPreferredTime: parent.PickupPreferredTime,
	}

	if err := s.repo.CreateOrder(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to persist baking order: %w", err)
	}
	s.notifier.OrderEvent(ctx, sub, EventBakingSplit)
	return sub, nil
}

func (s *service) RecordBaking(ctx context.Context, id string, req RecordBakingRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if o.OrderType != TypeBaking {
		return nil, fmt.Errorf("order %s is not a baking order", o.OrderNumber)
	}

	byID := make(map[string]*OrderItem, len(o.Items))
	for _, it := range o.Items {
		byID[it.ID.String()] = it
	}
	var updated []*OrderItem
	for _, r := range req.Items {
		it, ok := byID[r.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %s does not belong to order %s", r.ItemID, o.OrderNumber)
		}
		if r.BakedQuantity < 0 {
			return nil, fmt.Errorf("baked_quantity must be >= 0 for item %s", r.ItemID)
		}
		it.BakedQuantity = r.BakedQuantity
		updated = append(updated, it)
	}

	if req.Completed {
		o.BakingStatus = BakingCompleted
	} else {
		o.BakingStatus = BakingInProgress
	}

	if len(updated) > 0 {
		if err := s.repo.UpdateItems(ctx, updated); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) ChooseShippingMethod(ctx context.Context, id string, req ChooseMethodRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	branch, err := parseShippingBranch(req.Method, req.CourierCompany,
		req.ShipmentDueDate, req.PickupPreferredDate, req.PickupPreferredTime)
	if err != nil {
		return nil, err
	}

	target := StatusWaitingForShipment
	if branch.method == MethodSelfPickup {
		target = StatusWaitingForPickup
	}
	if o.Status != target { // switching WAITING_FOR_SHIPMENT <-> WAITING_FOR_PICKUP re-enters the same state otherwise
		if err := s.transition(o, target); err != nil {
			return nil, err
		}
	}
	branch.apply(o)

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.syncBakingOrders(ctx, o)
	return o, nil
}

func (s *service) UpdateShippingDates(ctx context.Context, id string, req UpdateDatesRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if o.ShippingMethod == nil {
		return nil, fmt.Errorf("order %s has no shipping method chosen yet", o.OrderNumber)
	}

	var branch *shippingBranch
	switch *o.ShippingMethod {
	case MethodCourier:
		branch, err = parseShippingBranch(string(MethodCourier), o.CourierCompany, req.ShipmentDueDate, "", "")
	case MethodSelfPickup:
		branch, err = parseShippingBranch(string(MethodSelfPickup), "", "", req.PickupPreferredDate, req.PickupPreferredTime)
	}
	if err != nil {
		return nil, err
	}
	branch.apply(o)

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.syncBakingOrders(ctx, o)
	return o, nil
}

func (s *service) DispatchWithCourier(ctx context.Context, id string, req DispatchRequest) (*Order, error) {
	if strings.TrimSpace(req.DeliveredBy) == "" {
		return nil, fmt.Errorf("delivered_by is required")
	}
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusWithCourier); err != nil {
		return nil, err
	}
	o.DeliveredBy = req.DeliveredBy

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventDispatched)
	return o, nil
}

func (s *service) MarkDelivered(ctx context.Context, id string, req DeliveredRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusArchived); err != nil {
		return nil, err
	}

	now := s.now()
	status := DeliveryDelivered
	o.DeliveryStatus = &status
	o.DeliveredAt = &now
	if req.DeliveredBy != "" {
		o.DeliveredBy = req.DeliveredBy
	}
	o.DeliveryPhotoURL = req.DeliveryPhotoURL
	o.DeliveryNotes = req.DeliveryNotes

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventDelivered)
	return o, nil
}

func (s *service) MarkNotDelivered(ctx context.Context, id string, req NotDeliveredRequest) (*Order, error) {
	if strings.TrimSpace(req.NonDeliveryReason) == "" {
		return nil, fmt.Errorf("non_delivery_reason is required")
	}
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusArchived); err != nil {
		return nil, err
	}

	now := s.now()
	status := DeliveryNotDelivered
	o.DeliveryStatus = &status
	o.DeliveredAt = &now
	if req.DeliveredBy != "" {
		o.DeliveredBy = req.DeliveredBy
	}
	o.NonDeliveryReason = req.NonDeliveryReason

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventNotDelivered)
	return o, nil
}

func (s *service) ReturnToQueue(ctx context.Context, id string, req ReturnRequest) (*Order, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("reason is required")
	}
	if strings.TrimSpace(req.ReturnedBy) == "" {
		return nil, fmt.Errorf("returned_by is required")
	}
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	branch, err := parseShippingBranch(req.Method, req.CourierCompany,
		req.ShipmentDueDate, req.PickupPreferredDate, req.PickupPreferredTime)
	if err != nil {
		return nil, err
	}
	target := StatusWaitingForShipment
	if branch.method == MethodSelfPickup {
		target = StatusWaitingForPickup
	}
	if err := s.transition(o, target); err != nil {
		return nil, err
	}

	// Clear the failed delivery attempt before re-queueing.
	now := s.now()
	o.DeliveryStatus = nil
	o.DeliveredBy = ""
	o.DeliveredAt = nil
	o.DeliveryPhotoURL = ""
	o.DeliveryNotes = ""
	o.NonDeliveryReason = ""
	o.ReturnReason = req.Reason
	o.ReturnedBy = req.ReturnedBy
	o.ReturnedAt = &now
	branch.apply(o)

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.notifier.OrderEvent(ctx, o, EventReturned)
	return o, nil
}

func (s *service) RevertBakingOrder(ctx context.Context, id string, req RevertBakingRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if o.OrderType != TypeBaking {
		return nil, fmt.Errorf("order %s is not a baking order", o.OrderNumber)
	}
	if o.PickingStatus != PickingCompleted {
		return nil, fmt.Errorf("baking order %s is not completed (picking: %s)", o.OrderNumber, o.PickingStatus)
	}

	o.PickingStatus = PickingInProgress
	o.PickingCompletedAt = nil
	note := fmt.Sprintf("reverted from archive on %s", s.now().Format("2006-01-02 15:04"))
	if req.RevertedBy != "" {
		note += " by " + req.RevertedBy
	}
	if req.Reason != "" {
		note += ": " + req.Reason
	}
	o.Notes = appendNote(o.Notes, note)

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) ArchiveOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusArchived); err != nil {
		return nil, err
	}
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, id string) error {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return fmt.Errorf("order not found: %w", err)
	}
	if err := s.transition(o, StatusCancelled); err != nil {
		return err
	}
	return s.save(ctx, o)
}

// ── internals ─────────────────────────────────────────────────────────────────

func (s *service) transition(o *Order, next OrderStatus) error {
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("cannot transition order from %s to %s", o.Status, next)
	}
	o.Status = next
	return nil
}

func (s *service) save(ctx context.Context, o *Order) error {
	o.UpdatedAt = s.now()
	return s.repo.UpdateOrder(ctx, o)
}

// syncBakingOrders propagates the parent's shipment/pickup target onto its
// baking sub-orders. Fire and forget: a failure here is logged and must not
// roll back or block the primary save. Last write wins.
func (s *service) syncBakingOrders(ctx context.Context, parent *Order) {
	if parent.OrderType != TypePrimary {
		return
	}
	subs, err := s.repo.ListByOriginalOrder(ctx, parent.ID.String())
	if err != nil {
		s.log.Warn("baking order date sync failed",
			zap.String("order_number", parent.OrderNumber), zap.Error(err))
		return
	}
	for _, sub := range subs {
		sub.ShippingMethod = parent.ShippingMethod
		sub.CourierCompany = parent.CourierCompany
		sub.ShipmentDueDate = parent.ShipmentDueDate
		sub.PickupPreferredDate = parent.PickupPreferredDate
		sub.PickupPreferredTime = parent.PickupPreferredTime
		if err := s.save(ctx, sub); err != nil {
			s.log.Warn("baking order date sync failed",
				zap.String("order_number", parent.OrderNumber),
				zap.String("baking_order_number", sub.OrderNumber), zap.Error(err))
		}
	}
}

func applyPickedQuantities(o *Order, reqs []PickedQuantityRequest) ([]*OrderItem, error) {
	byID := make(map[string]*OrderItem, len(o.Items))
	for _, it := range o.Items {
		byID[it.ID.String()] = it
	}
	var updated []*OrderItem
	for _, r := range reqs {
		it, ok := byID[r.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %s does not belong to order %s", r.ItemID, o.OrderNumber)
		}
		if r.PickedQuantity < 0 {
			return nil, fmt.Errorf("picked_quantity must be >= 0 for item %s", r.ItemID)
		}
		it.PickedQuantity = r.PickedQuantity
		if len(r.LocationBreakdown) > 0 {
			it.LocationBreakdown = r.LocationBreakdown
		}
		updated = append(updated, it)
	}
	return updated, nil
}

// buildBagSummary aggregates per-item location breakdowns into a single
// location -> item count map stored on the order.
func buildBagSummary(items []*OrderItem) json.RawMessage {
	summary := map[string]int{}
	for _, it := range items {
		if len(it.LocationBreakdown) == 0 {
			continue
		}
		var perLocation map[string]int
		if err := json.Unmarshal(it.LocationBreakdown, &perLocation); err != nil {
			continue
		}
		for loc, n := range perLocation {
			summary[loc] += n
		}
	}
	if len(summary) == 0 {
		return nil
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return nil
	}
	return b
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber(t time.Time) string {
	date := t.UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
