package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregatePayment  OutboxAggregateType = "payment"
	AggregateDelivery OutboxAggregateType = "delivery"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregatePayment,
	AggregateDelivery,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column on outbox_events.
type OutboxEventType string

const (
	EventOrderCreated          OutboxEventType = "order.created"
	EventOrderStatusChanged    OutboxEventType = "order.status_changed"
	EventOrderCancelled        OutboxEventType = "order.cancelled"
	EventOrderDelivered        OutboxEventType = "order.delivered"
	EventPaymentCompleted      OutboxEventType = "payment.completed"
	EventPaymentFailed         OutboxEventType = "payment.failed"
	EventDeliveryAssigned      OutboxEventType = "delivery.assigned"
	EventDeliveryStatusChanged OutboxEventType = "delivery.status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventOrderDelivered,
	EventPaymentCompleted,
	EventPaymentFailed,
	EventDeliveryAssigned,
	EventDeliveryStatusChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// OutboxDLQErrorReason records why an event landed in the dead letter table.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
}

// IsValid reports whether the value matches the canonical error reason enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
