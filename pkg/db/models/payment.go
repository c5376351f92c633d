package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/types"
)

// Payment is a single settlement attempt against the gateway. An order
// may accumulate several attempts but at most one may be processing or
// completed at a time.
type Payment struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Amount decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	PhoneNumber *string `gorm:"column:phone_number"`

	// ExternalReference holds the gateway CheckoutRequestID and is the
	// callback match key.
	ExternalReference *string        `gorm:"column:external_reference;uniqueIndex"`
	TransactionID     *string        `gorm:"column:transaction_id"`
	GatewayResponse   *types.JSONMap `gorm:"column:gateway_response;type:jsonb"`
	FailureReason     *string        `gorm:"column:failure_reason"`

	InitiatedAt time.Time  `gorm:"column:initiated_at;autoCreateTime"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
