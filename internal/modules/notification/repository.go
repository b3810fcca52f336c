package notification

import "context"

// Repository defines data access for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRole(ctx context.Context, role string, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, role string) (int, error)
}
