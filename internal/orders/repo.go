package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Items", "Tracking", "Delivery").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateTracking(ctx context.Context, entry *models.OrderTracking) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Delivery").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Delivery").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters ListFilters) (*OrderList, error) {
	return r.list(ctx, filters, "customer_id = ?", customerID)
}

func (r *repository) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters ListFilters) (*OrderList, error) {
	return r.list(ctx, filters, "vendor_id = ?", vendorID)
}

func (r *repository) ListRiderOrders(ctx context.Context, riderID uuid.UUID, filters ListFilters) (*OrderList, error) {
	return r.list(ctx, filters, "rider_id = ?", riderID)
}

func (r *repository) ListAllOrders(ctx context.Context, filters ListFilters) (*OrderList, error) {
	return r.list(ctx, filters, "", uuid.Nil)
}

func (r *repository) list(ctx context.Context, filters ListFilters, scopeClause string, scopeID uuid.UUID) (*OrderList, error) {
	limit := pagination.NormalizeLimit(filters.Limit)
	cursor, err := pagination.ParseCursor(filters.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if scopeClause != "" {
		query = query.Where(scopeClause, scopeID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.OrderType != nil {
		query = query.Where("order_type = ?", *filters.OrderType)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filters.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for _, row := range rows {
		totalItems := 0
		for _, item := range row.Items {
			totalItems += item.Quantity
		}
		list.Orders = append(list.Orders, OrderSummary{
			ID:            row.ID,
			OrderNumber:   row.OrderNumber,
			Status:        row.Status,
			OrderType:     row.OrderType,
			TotalAmount:   row.TotalAmount,
			PaymentStatus: row.PaymentStatus,
			TotalItems:    totalItems,
			IsEmergency:   row.IsEmergency,
			CreatedAt:     row.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) ListUnassignedReady(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusReadyForPickup).
		Where("order_type = ?", enums.OrderTypeDelivery).
		Where("rider_id IS NULL").
		Order("is_emergency DESC, created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error) {
	var entries []models.OrderTracking
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) CreateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *repository) UpdateDelivery(ctx context.Context, deliveryID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		Updates(updates).Error
}

func (r *repository) StatsSince(ctx context.Context, since time.Time) (map[string]int64, decimal.Decimal, error) {
	type statusRow struct {
		Status string
		Total  int64
	}
	var rows []statusRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, decimal.Zero, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	var revenue struct {
		Total decimal.Decimal
	}
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("created_at >= ?", since).
		Where("status = ?", enums.OrderStatusDelivered).
		Where("payment_status = ?", enums.OrderPaymentStatusPaid).
		Scan(&revenue).Error
	if err != nil {
		return nil, decimal.Zero, err
	}
	return counts, revenue.Total, nil
}

func (r *repository) CountByVendorAndStatus(ctx context.Context, vendorID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Where("vendor_id = ?", vendorID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
