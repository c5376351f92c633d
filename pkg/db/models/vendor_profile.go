package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// VendorProfile describes a gas vendor storefront.
type VendorProfile struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName       string             `gorm:"column:business_name;not null"`
	BusinessType       enums.BusinessType `gorm:"column:business_type;type:text;not null"`
	RegistrationNumber *string            `gorm:"column:registration_number"`
	Address            string             `gorm:"column:address;not null"`
	Latitude           float64            `gorm:"column:latitude;not null"`
	Longitude          float64            `gorm:"column:longitude;not null"`
	DeliveryRadiusKM   float64            `gorm:"column:delivery_radius_km;not null;default:10"`
	MinimumOrderAmount decimal.Decimal    `gorm:"column:minimum_order_amount;type:numeric(10,2);not null;default:0"`
	DeliveryFee        decimal.Decimal    `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	EstimatedTime      int                `gorm:"column:estimated_time;not null;default:30"`
	Status             enums.VendorStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RatingAverage      decimal.Decimal    `gorm:"column:rating_average;type:numeric(3,2);not null;default:0"`
	RatingCount        int                `gorm:"column:rating_count;not null;default:0"`
	CommissionRate     decimal.Decimal    `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
