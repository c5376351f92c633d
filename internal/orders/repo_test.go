package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  rider_id TEXT,
  order_type TEXT NOT NULL DEFAULT 'delivery',
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_address TEXT,
  delivery_instructions TEXT,
  delivery_latitude REAL,
  delivery_longitude REAL,
  requested_delivery_time DATETIME,
  estimated_delivery_time DATETIME,
  actual_delivery_time DATETIME,
  subtotal NUMERIC NOT NULL,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT,
  payment_reference TEXT,
  special_instructions TEXT,
  cancellation_reason TEXT,
  is_emergency INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  cylinder_size TEXT NOT NULL,
  brand TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  is_refill INTEGER NOT NULL DEFAULT 0,
  customer_cylinder_serial TEXT,
  stock_reserved INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	tracking := `
CREATE TABLE IF NOT EXISTS order_trackings (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  notes TEXT,
  latitude REAL,
  longitude REAL,
  updated_by TEXT,
  created_at DATETIME
);`
	deliveries := `
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  rider_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'assigned',
  assigned_at DATETIME,
  accepted_at DATETIME,
  picked_up_at DATETIME,
  delivered_at DATETIME,
  pickup_latitude REAL,
  pickup_longitude REAL,
  delivery_latitude REAL,
  delivery_longitude REAL,
  estimated_distance_km REAL,
  actual_distance_km REAL,
  estimated_duration_minutes INTEGER,
  actual_duration_minutes INTEGER,
  base_fee NUMERIC NOT NULL DEFAULT 0,
  distance_fee NUMERIC NOT NULL DEFAULT 0,
  total_earnings NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(tracking).Error)
	require.NoError(t, db.Exec(deliveries).Error)
	require.NoError(t, db.Exec(`DELETE FROM deliveries`).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_trackings`).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_items`).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

var orderSeq int

func seedOrder(t *testing.T, db *gorm.DB, customerID, vendorID uuid.UUID, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	orderSeq++
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: fmt.Sprintf("KAA20260829%04d", orderSeq),
		CustomerID:  customerID,
		VendorID:    vendorID,
		OrderType:   enums.OrderTypeDelivery,
		Status:      status,
		Subtotal:    decimal.NewFromInt(2500),
		DeliveryFee: decimal.NewFromInt(300),
		TotalAmount: decimal.NewFromInt(2800),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Omit("Items", "Tracking", "Delivery").Create(order).Error)

	item := &models.OrderItem{
		ID:           uuid.New(),
		OrderID:      order.ID,
		ProductID:    uuid.New(),
		ProductName:  "K-Gas 13kg",
		CylinderSize: enums.CylinderSize13KG,
		Brand:        "K-Gas",
		Quantity:     1,
		UnitPrice:    decimal.NewFromInt(2500),
		TotalPrice:   decimal.NewFromInt(2500),
		CreatedAt:    created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now())

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "K-Gas 13kg", found.Items[0].ProductName)
	assert.Nil(t, found.Delivery)

	byNumber, err := repo.FindByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindPreloadsDelivery(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusReadyForPickup, time.Now())
	riderID := uuid.New()
	_, err := repo.CreateDelivery(ctx, &models.Delivery{
		ID:         uuid.New(),
		OrderID:    order.ID,
		RiderID:    riderID,
		Status:     enums.DeliveryStatusAssigned,
		AssignedAt: time.Now(),
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Delivery)
	assert.Equal(t, riderID, found.Delivery.RiderID)
	assert.Equal(t, enums.DeliveryStatusAssigned, found.Delivery.Status)
}

func TestRepositoryListCustomerOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	vendorID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		seedOrder(t, db, customerID, vendorID, enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(t, db, customerID, vendorID, enums.OrderStatusDelivered, base.Add(10*time.Minute))
	seedOrder(t, db, uuid.New(), vendorID, enums.OrderStatusPending, base.Add(11*time.Minute))

	list, err := repo.ListCustomerOrders(ctx, customerID, ListFilters{Limit: 3})
	require.NoError(t, err)
	require.Len(t, list.Orders, 3)
	require.NotEmpty(t, list.NextCursor)
	assert.True(t, list.Orders[0].CreatedAt.After(list.Orders[1].CreatedAt))

	next, err := repo.ListCustomerOrders(ctx, customerID, ListFilters{Limit: 3, Cursor: list.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Orders, 2)
	assert.Empty(t, next.NextCursor)

	status := enums.OrderStatusDelivered
	delivered, err := repo.ListCustomerOrders(ctx, customerID, ListFilters{Status: &status, Limit: 10})
	require.NoError(t, err)
	require.Len(t, delivered.Orders, 1)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Orders[0].Status)
}

func TestRepositoryCountByVendorAndStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	now := time.Now()
	seedOrder(t, db, uuid.New(), vendorID, enums.OrderStatusPending, now)
	seedOrder(t, db, uuid.New(), vendorID, enums.OrderStatusPending, now)
	seedOrder(t, db, uuid.New(), vendorID, enums.OrderStatusDelivered, now)
	seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, now)

	counts, err := repo.CountByVendorAndStatus(ctx, vendorID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["pending"])
	assert.Equal(t, int64(1), counts["delivered"])
}

func TestRepositoryTrackingOrdering(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now())
	statuses := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
	}
	base := time.Now().Add(-time.Minute)
	for i, status := range statuses {
		require.NoError(t, repo.CreateTracking(ctx, &models.OrderTracking{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	history, err := repo.ListTracking(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, enums.OrderStatusPending, history[0].Status)
	assert.Equal(t, enums.OrderStatusPreparing, history[2].Status)
}
