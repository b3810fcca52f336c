package order

import (
	"fmt"
	"strings"
	"time"
)

// shippingBranch is the validated result of choosing a shipping method. The
// courier and self-pickup field sets are mutually exclusive; apply() writes
// one branch and nulls the other, so every call site clears the inactive
// fields the same way.
type shippingBranch struct {
	method         ShippingMethod
	courierCompany string
	shipmentDue    *time.Time
	pickupDate     *time.Time
	pickupTime     string
}

func parseShippingBranch(method, courierCompany, shipmentDue, pickupDate, pickupTime string) (*shippingBranch, error) {
	switch ShippingMethod(strings.ToUpper(method)) {
	case MethodCourier:
		if shipmentDue == "" {
			return nil, fmt.Errorf("shipment_due_date is required for courier shipping")
		}
		due, err := parseDay(shipmentDue)
		if err != nil {
			return nil, fmt.Errorf("invalid shipment_due_date: %w", err)
		}
		return &shippingBranch{
			method:         MethodCourier,
			courierCompany: courierCompany,
			shipmentDue:    &due,
		}, nil

	case MethodSelfPickup:
		if pickupDate == "" {
			return nil, fmt.Errorf("pickup_preferred_date is required for self pickup")
		}
		day, err := parseDay(pickupDate)
		if err != nil {
			return nil, fmt.Errorf("invalid pickup_preferred_date: %w", err)
		}
		if pickupTime != "" {
			if _, err := time.Parse("15:04", pickupTime); err != nil {
				return nil, fmt.Errorf("invalid pickup_preferred_time, use HH:MM: %w", err)
			}
		}
		return &shippingBranch{
			method:     MethodSelfPickup,
			pickupDate: &day,
			pickupTime: pickupTime,
		}, nil

	default:
		return nil, fmt.Errorf("unknown shipping method %q", method)
	}
}

// apply writes the chosen branch onto the order and clears the other one.
func (b *shippingBranch) apply(o *Order) {
	method := b.method
	o.ShippingMethod = &method
	switch b.method {
	case MethodCourier:
		o.CourierCompany = b.courierCompany
		o.ShipmentDueDate = b.shipmentDue
		o.PickupPreferredDate = nil
		o.PickupPreferredTime = ""
	case MethodSelfPickup:
		o.PickupPreferredDate = b.pickupDate
		o.PickupPreferredTime = b.pickupTime
		o.ShipmentDueDate = nil
		o.CourierCompany = ""
	}
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
