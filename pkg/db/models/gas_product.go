package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// GasProduct is a catalogue entry for a cylinder SKU. Vendor-specific
// pricing and stock live on VendorInventory.
type GasProduct struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	GasType      enums.GasType      `gorm:"column:gas_type;type:text;not null"`
	CylinderSize enums.CylinderSize `gorm:"column:cylinder_size;type:text;not null"`
	Brand        string             `gorm:"column:brand;not null"`
	Description  *string            `gorm:"column:description"`
	EmptyWeight  decimal.Decimal    `gorm:"column:empty_weight;type:numeric(6,2);not null;default:0"`
	FullWeight   decimal.Decimal    `gorm:"column:full_weight;type:numeric(6,2);not null;default:0"`
	BasePrice    decimal.Decimal    `gorm:"column:base_price;type:numeric(10,2);not null"`
	RefillPrice  decimal.Decimal    `gorm:"column:refill_price;type:numeric(10,2);not null"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
