package notification

import (
	"context"
	"fmt"

	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventRecipients routes each order event to the dashboards that care.
var eventRecipients = map[string][]user.Role{
	order.EventPickingStarted:   {user.RoleStoreManager},
	order.EventPickingCompleted: {user.RoleStoreManager},
	order.EventBakingSplit:      {user.RoleBaker},
	order.EventDispatched:       {user.RoleStoreManager},
	order.EventDelivered:        {user.RoleAdmin, user.RoleStoreManager},
	order.EventNotDelivered:     {user.RoleAdmin, user.RoleStoreManager},
	order.EventReturned:         {user.RoleStoreManager},
}

var eventMessages = map[string]string{
	order.EventPickingStarted:   "picking started for order %s",
	order.EventPickingCompleted: "picking completed for order %s",
	order.EventBakingSplit:      "baking order %s created",
	order.EventDispatched:       "order %s handed to courier",
	order.EventDelivered:        "order %s delivered",
	order.EventNotDelivered:     "order %s could not be delivered",
	order.EventReturned:         "order %s returned to the shipping queue",
}

// Service defines notification business logic.
type Service interface {
	// CreateFromOrderEvent inserts one notification per recipient role.
	CreateFromOrderEvent(ctx context.Context, orderID uuid.UUID, orderNumber, event string) error

	ListForRole(ctx context.Context, role string, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, role string) (int, error)
}

type service struct{ repo Repository }

// NewService creates a new notification service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateFromOrderEvent(ctx context.Context, orderID uuid.UUID, orderNumber, event string) error {
	roles, ok := eventRecipients[event]
	if !ok {
		return fmt.Errorf("unknown order event %q", event)
	}
	message := fmt.Sprintf(eventMessages[event], orderNumber)
	for _, role := range roles {
		n := &Notification{
			ID:            uuid.New(),
			OrderID:       orderID,
			OrderNumber:   orderNumber,
			RecipientRole: string(role),
			Event:         event,
			Message:       message,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

func (s *service) ListForRole(ctx context.Context, role string, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListByRole(ctx, role, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *service) CountUnread(ctx context.Context, role string) (int, error) {
	return s.repo.CountUnread(ctx, role)
}

// Trigger adapts the service to order.Notifier. Notification failures are
// logged and swallowed so they never block the order operation that fired them.
type Trigger struct {
	service Service
	log     *zap.Logger
}

// NewTrigger creates the best-effort adapter handed to the order service.
func NewTrigger(service Service, log *zap.Logger) *Trigger {
	return &Trigger{service: service, log: log}
}

func (t *Trigger) OrderEvent(ctx context.Context, o *order.Order, event string) {
	if err := t.service.CreateFromOrderEvent(ctx, o.ID, o.OrderNumber, event); err != nil {
		t.log.Warn("order notification failed",
			zap.String("order_number", o.OrderNumber),
			zap.String("event", event),
			zap.Error(err))
	}
}
