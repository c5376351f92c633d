package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// RiderEarning is a credit on a rider's ledger.
type RiderEarning struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RiderID       uuid.UUID                `gorm:"column:rider_id;type:uuid;not null;index"`
	DeliveryID    *uuid.UUID               `gorm:"column:delivery_id;type:uuid"`
	EarningType   enums.EarningType        `gorm:"column:earning_type;type:text;not null"`
	Amount        decimal.Decimal          `gorm:"column:amount;type:numeric(10,2);not null"`
	Description   *string                  `gorm:"column:description"`
	PaymentStatus enums.OrderPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	EarningDate   time.Time                `gorm:"column:earning_date;not null"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
}
