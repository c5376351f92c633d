package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/payloads"
)

type stubOrderDirectory struct {
	orders map[uuid.UUID]*models.Order
}

func (s *stubOrderDirectory) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type stubVendorDirectory struct {
	vendors map[uuid.UUID]*models.VendorProfile
}

func (s *stubVendorDirectory) FindProfileByID(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	vendor, ok := s.vendors[vendorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

func newTestConsumer(t *testing.T) (*Consumer, *fakeRepository, *stubOrderDirectory, *stubVendorDirectory) {
	t.Helper()

	repo := &fakeRepository{}
	orders := &stubOrderDirectory{orders: map[uuid.UUID]*models.Order{}}
	vendors := &stubVendorDirectory{vendors: map[uuid.UUID]*models.VendorProfile{}}
	consumer := &Consumer{
		repo:    repo,
		orders:  orders,
		vendors: vendors,
	}
	return consumer, repo, orders, vendors
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestWantsEvent(t *testing.T) {
	assert.True(t, wantsEvent(enums.EventOrderCreated))
	assert.True(t, wantsEvent(enums.EventPaymentCompleted))
	assert.True(t, wantsEvent(enums.EventPaymentFailed))
	assert.True(t, wantsEvent(enums.EventOrderDelivered))
	assert.False(t, wantsEvent(enums.EventOrderStatusChanged))
	assert.False(t, wantsEvent(enums.EventDeliveryStatusChanged))
}

func TestHandleOrderCreatedNotifiesBothParties(t *testing.T) {
	consumer, repo, _, vendors := newTestConsumer(t)

	vendorID := uuid.New()
	vendorUser := uuid.New()
	vendors.vendors[vendorID] = &models.VendorProfile{ID: vendorID, UserID: vendorUser}

	customerID := uuid.New()
	payload := payloads.OrderCreatedEvent{
		OrderID:     uuid.New(),
		OrderNumber: "KAA202608290042",
		CustomerID:  customerID,
		VendorID:    vendorID,
		TotalAmount: decimal.NewFromInt(5300),
		IsEmergency: true,
	}
	err := consumer.handle(context.Background(), enums.EventOrderCreated, mustJSON(t, payload))
	require.NoError(t, err)

	require.Len(t, repo.created, 2)
	assert.Equal(t, customerID, repo.created[0].UserID)
	assert.Equal(t, enums.NotificationTypeOrderUpdate, repo.created[0].Type)
	assert.Equal(t, vendorUser, repo.created[1].UserID)
	assert.Equal(t, "Emergency order received", repo.created[1].Title)
	assert.Contains(t, repo.created[1].Message, "5300.00")
}

func TestHandlePaymentCompletedNotifiesCustomer(t *testing.T) {
	consumer, repo, orders, _ := newTestConsumer(t)

	customerID := uuid.New()
	orderID := uuid.New()
	orders.orders[orderID] = &models.Order{
		ID:          orderID,
		OrderNumber: "KAA202608290042",
		CustomerID:  customerID,
	}

	payload := payloads.PaymentCompletedEvent{
		PaymentID: uuid.New(),
		OrderID:   orderID,
		Amount:    decimal.NewFromInt(5300),
	}
	err := consumer.handle(context.Background(), enums.EventPaymentCompleted, mustJSON(t, payload))
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, customerID, repo.created[0].UserID)
	assert.Equal(t, enums.NotificationTypePaymentUpdate, repo.created[0].Type)
	assert.Equal(t, "Payment received", repo.created[0].Title)
}

func TestHandlePaymentFailedIncludesReason(t *testing.T) {
	consumer, repo, orders, _ := newTestConsumer(t)

	orderID := uuid.New()
	orders.orders[orderID] = &models.Order{
		ID:          orderID,
		OrderNumber: "KAA202608290042",
		CustomerID:  uuid.New(),
	}

	payload := payloads.PaymentFailedEvent{
		PaymentID:     uuid.New(),
		OrderID:       orderID,
		FailureReason: "Request cancelled by user.",
	}
	err := consumer.handle(context.Background(), enums.EventPaymentFailed, mustJSON(t, payload))
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Payment failed", repo.created[0].Title)
	assert.Contains(t, repo.created[0].Message, "Request cancelled by user.")
}

func TestHandleUnknownOrderFails(t *testing.T) {
	consumer, repo, _, _ := newTestConsumer(t)

	payload := payloads.PaymentCompletedEvent{PaymentID: uuid.New(), OrderID: uuid.New()}
	err := consumer.handle(context.Background(), enums.EventPaymentCompleted, mustJSON(t, payload))
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestHandleOrderDelivered(t *testing.T) {
	consumer, repo, _, vendors := newTestConsumer(t)

	vendorID := uuid.New()
	vendors.vendors[vendorID] = &models.VendorProfile{ID: vendorID, UserID: uuid.New()}

	payload := payloads.OrderDeliveredEvent{
		OrderID:     uuid.New(),
		OrderNumber: "KAA202608290042",
		CustomerID:  uuid.New(),
		VendorID:    vendorID,
	}
	err := consumer.handle(context.Background(), enums.EventOrderDelivered, mustJSON(t, payload))
	require.NoError(t, err)

	require.Len(t, repo.created, 2)
	assert.Equal(t, enums.NotificationTypeDeliveryUpdate, repo.created[0].Type)
	assert.Equal(t, "Order delivered", repo.created[0].Title)
	assert.Equal(t, "Order completed", repo.created[1].Title)
}
