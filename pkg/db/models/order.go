package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// Order is the customer-facing order aggregate. Orders are never
// physically deleted; cancellation is a status.
type Order struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string     `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID  uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	VendorID    uuid.UUID  `gorm:"column:vendor_id;type:uuid;not null"`
	RiderID     *uuid.UUID `gorm:"column:rider_id;type:uuid"`

	OrderType enums.OrderType   `gorm:"column:order_type;type:text;not null;default:'delivery'"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	DeliveryAddress      *string  `gorm:"column:delivery_address"`
	DeliveryInstructions *string  `gorm:"column:delivery_instructions"`
	DeliveryLatitude     *float64 `gorm:"column:delivery_latitude"`
	DeliveryLongitude    *float64 `gorm:"column:delivery_longitude"`

	RequestedDeliveryTime *time.Time `gorm:"column:requested_delivery_time"`
	EstimatedDeliveryTime *time.Time `gorm:"column:estimated_delivery_time"`
	ActualDeliveryTime    *time.Time `gorm:"column:actual_delivery_time"`

	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DeliveryFee    decimal.Decimal `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`

	PaymentStatus    enums.OrderPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod    *enums.PaymentMethod     `gorm:"column:payment_method;type:text"`
	PaymentReference *string                  `gorm:"column:payment_reference"`

	SpecialInstructions *string `gorm:"column:special_instructions"`
	CancellationReason  *string `gorm:"column:cancellation_reason"`
	IsEmergency         bool    `gorm:"column:is_emergency;not null;default:false"`

	Items    []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Tracking []OrderTracking `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery *Delivery       `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
