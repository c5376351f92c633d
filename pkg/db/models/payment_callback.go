package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/pkg/types"
)

// PaymentCallback records every inbound gateway callback, matched or
// not, so replays and orphans stay diagnosable.
type PaymentCallback struct {
	ID                uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutRequestID string        `gorm:"column:checkout_request_id;not null;index"`
	ResultCode        int           `gorm:"column:result_code;not null"`
	ResultDescription string        `gorm:"column:result_description;not null"`
	RawPayload        types.JSONMap `gorm:"column:raw_payload;type:jsonb;not null"`
	PaymentID         *uuid.UUID    `gorm:"column:payment_id;type:uuid"`
	Outcome           string        `gorm:"column:outcome;not null"`
	CreatedAt         time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// Callback outcomes.
const (
	CallbackOutcomeCompleted = "completed"
	CallbackOutcomeFailed    = "failed"
	CallbackOutcomeReplay    = "replay"
	CallbackOutcomeUnmatched = "unmatched"
)
