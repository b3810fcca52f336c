package order

// validTransitions defines the allowed status state machine. Every operation
// that changes an order's status checks this table; there are no other status
// write paths.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:            {StatusPicking, StatusCancelled},
	StatusPicking:            {StatusWaitingForShipment, StatusWaitingForPickup, StatusCancelled},
	StatusWaitingForShipment: {StatusWithCourier, StatusWaitingForPickup, StatusArchived, StatusCancelled},
	StatusWaitingForPickup:   {StatusWaitingForShipment, StatusArchived, StatusCancelled},
	StatusWithCourier:        {StatusArchived, StatusWaitingForShipment, StatusWaitingForPickup},
	StatusArchived:           {},
	StatusCancelled:          {},
}

// CanTransition returns true if the move from current to next is allowed.
func CanTransition(current, next OrderStatus) bool {
	allowed, ok := validTransitions[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}
