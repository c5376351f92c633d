package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// OrderTracking is the append-only status history of an order. Rows are
// written once per transition and never updated.
type OrderTracking struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Notes     *string           `gorm:"column:notes"`
	Latitude  *float64          `gorm:"column:latitude"`
	Longitude *float64          `gorm:"column:longitude"`
	UpdatedBy *uuid.UUID        `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
