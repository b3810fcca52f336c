package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a plain record insert aimed at a role's dashboard. There is
// no delivery pipeline behind it; dashboards poll their unread list.
type Notification struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	RecipientRole string    `json:"recipient_role"`
	Event         string    `json:"event"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
