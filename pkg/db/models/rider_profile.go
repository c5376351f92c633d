package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// RiderProfile describes a delivery rider.
type RiderProfile struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	VehicleType         enums.VehicleType `gorm:"column:vehicle_type;type:text;not null"`
	VehicleRegistration *string           `gorm:"column:vehicle_registration"`
	Status              enums.RiderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	IsAvailable         bool              `gorm:"column:is_available;not null;default:false"`
	CurrentLatitude     *float64          `gorm:"column:current_latitude"`
	CurrentLongitude    *float64          `gorm:"column:current_longitude"`
	LastLocationUpdate  *time.Time        `gorm:"column:last_location_update"`
	MaxDeliveryDistance float64           `gorm:"column:max_delivery_distance;not null;default:15"`
	TotalDeliveries     int               `gorm:"column:total_deliveries;not null;default:0"`
	CompletedDeliveries int               `gorm:"column:completed_deliveries;not null;default:0"`
	RatingAverage       decimal.Decimal   `gorm:"column:rating_average;type:numeric(3,2);not null;default:0"`
	RatingCount         int               `gorm:"column:rating_count;not null;default:0"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
