package orders

import "github.com/kaanagas/kaanagas-backend/pkg/enums"

// orderTransitions is the authoritative order state machine. Delivery
// progress feeds into it but never bypasses it.
var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:      {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing:      {enums.OrderStatusReadyForPickup, enums.OrderStatusCancelled},
	enums.OrderStatusReadyForPickup: {enums.OrderStatusOutForDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:      {enums.OrderStatusRefunded},
}

// CanTransition reports whether an order may move between the two states.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// deliveryTransitions is the rider-side state machine, subordinate to
// the order's.
var deliveryTransitions = map[enums.DeliveryStatus][]enums.DeliveryStatus{
	enums.DeliveryStatusAssigned:  {enums.DeliveryStatusAccepted, enums.DeliveryStatusFailed, enums.DeliveryStatusCancelled},
	enums.DeliveryStatusAccepted:  {enums.DeliveryStatusPickingUp, enums.DeliveryStatusFailed, enums.DeliveryStatusCancelled},
	enums.DeliveryStatusPickingUp: {enums.DeliveryStatusInTransit, enums.DeliveryStatusFailed, enums.DeliveryStatusCancelled},
	enums.DeliveryStatusInTransit: {enums.DeliveryStatusDelivered, enums.DeliveryStatusFailed},
}

// CanTransitionDelivery reports whether a delivery may move between the
// two states.
func CanTransitionDelivery(from, to enums.DeliveryStatus) bool {
	for _, candidate := range deliveryTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
