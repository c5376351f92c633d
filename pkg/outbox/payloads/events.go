package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// OrderCreatedEvent signals a new order placed against a vendor.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	OrderType   enums.OrderType `json:"order_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsEmergency bool            `json:"is_emergency"`
}

// OrderStatusChangedEvent is emitted on every order state transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	VendorID    uuid.UUID         `json:"vendor_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
	Notes       string            `json:"notes,omitempty"`
}

// OrderCancelledEvent is emitted when an order is cancelled before completion.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// OrderDeliveredEvent surfaces the final delivery fields when an order completes.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	VendorID    uuid.UUID  `json:"vendor_id"`
	RiderID     *uuid.UUID `json:"rider_id,omitempty"`
	DeliveredAt time.Time  `json:"delivered_at"`
}

// PaymentCompletedEvent reports a reconciled payment.
type PaymentCompletedEvent struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        enums.PaymentMethod `json:"method"`
	TransactionID string              `json:"transaction_id,omitempty"`
}

// PaymentFailedEvent reports a gateway-rejected or failed payment attempt.
type PaymentFailedEvent struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// DeliveryAssignedEvent tells downstream systems a rider was matched to an order.
type DeliveryAssignedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	OrderID    uuid.UUID `json:"order_id"`
	RiderID    uuid.UUID `json:"rider_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// DeliveryStatusChangedEvent is emitted on every delivery leg transition.
type DeliveryStatusChangedEvent struct {
	DeliveryID uuid.UUID            `json:"delivery_id"`
	OrderID    uuid.UUID            `json:"order_id"`
	RiderID    uuid.UUID            `json:"rider_id"`
	FromStatus enums.DeliveryStatus `json:"from_status"`
	ToStatus   enums.DeliveryStatus `json:"to_status"`
	Notes      string               `json:"notes,omitempty"`
}
