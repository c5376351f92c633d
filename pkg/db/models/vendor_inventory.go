package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorInventory is a vendor's stock and pricing for one product.
// Available stock is current minus reserved; reservations are taken with
// an atomic conditional update, never read-modify-write.
type VendorInventory struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID      uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_vendor_product"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_vendor_product"`
	CurrentStock  int             `gorm:"column:current_stock;not null;default:0"`
	ReservedStock int             `gorm:"column:reserved_stock;not null;default:0"`
	MinimumStock  int             `gorm:"column:minimum_stock;not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"column:selling_price;type:numeric(10,2);not null"`
	RefillPrice   decimal.Decimal `gorm:"column:refill_price;type:numeric(10,2);not null"`
	IsAvailable   bool            `gorm:"column:is_available;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Product *GasProduct `gorm:"foreignKey:ProductID"`
}

// AvailableStock returns sellable units.
func (v VendorInventory) AvailableStock() int {
	return v.CurrentStock - v.ReservedStock
}
