package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// OrderItem is a line on an order. Product fields are snapshotted at
// order time so later catalogue edits do not rewrite history.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`

	ProductName  string             `gorm:"column:product_name;not null"`
	CylinderSize enums.CylinderSize `gorm:"column:cylinder_size;type:text;not null"`
	Brand        string             `gorm:"column:brand;not null"`

	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`

	IsRefill               bool    `gorm:"column:is_refill;not null;default:false"`
	CustomerCylinderSerial *string `gorm:"column:customer_cylinder_serial"`

	// StockReserved marks lines that took a vendor inventory
	// reservation at order time. Catalogue-priced lines without an
	// inventory row never reserve, so fulfilment must not commit or
	// release stock for them.
	StockReserved bool `gorm:"column:stock_reserved;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
