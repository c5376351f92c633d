package enums

import "fmt"

// DeliveryStatus tracks a rider's progress on an assigned delivery.
type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusAccepted  DeliveryStatus = "accepted"
	DeliveryStatusPickingUp DeliveryStatus = "picking_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusAssigned,
	DeliveryStatusAccepted,
	DeliveryStatusPickingUp,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusFailed,
	DeliveryStatusCancelled,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the delivery admits no further transitions.
func (d DeliveryStatus) IsTerminal() bool {
	return d == DeliveryStatusDelivered || d == DeliveryStatusFailed || d == DeliveryStatusCancelled
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
