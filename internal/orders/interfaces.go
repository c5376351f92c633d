package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateTracking(ctx context.Context, entry *models.OrderTracking) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListRiderOrders(ctx context.Context, riderID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListAllOrders(ctx context.Context, filters ListFilters) (*OrderList, error)
	ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error)
	ListUnassignedReady(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	CreateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	UpdateDelivery(ctx context.Context, deliveryID uuid.UUID, updates map[string]any) error
	CountByVendorAndStatus(ctx context.Context, vendorID uuid.UUID) (map[string]int64, error)
	StatsSince(ctx context.Context, since time.Time) (map[string]int64, decimal.Decimal, error)
}
