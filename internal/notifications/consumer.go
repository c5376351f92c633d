package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/idempotency"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type orderDirectory interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type vendorDirectory interface {
	FindProfileByID(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error)
}

// Consumer watches domain events and materializes in-app notification
// rows for the affected customers and vendors.
type Consumer struct {
	repo        repository
	orders      orderDirectory
	vendors     vendorDirectory
	subscriber  *pubsub.Subscriber
	idempotency *idempotency.Manager
	logg        *logger.Logger
}

// NewConsumer builds the domain notification consumer.
func NewConsumer(repo repository, orders orderDirectory, vendors vendorDirectory, subscriber *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order directory required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor directory required")
	}
	if subscriber == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:        repo,
		orders:      orders,
		vendors:     vendors,
		subscriber:  subscriber,
		idempotency: manager,
		logg:        logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if !wantsEvent(eventType) {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func wantsEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventOrderCreated, enums.EventOrderDelivered,
		enums.EventPaymentCompleted, enums.EventPaymentFailed:
		return true
	default:
		return false
	}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventOrderCreated:
		var payload payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order.created payload: %w", err)
		}
		return c.onOrderCreated(ctx, payload)
	case enums.EventOrderDelivered:
		var payload payloads.OrderDeliveredEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order.delivered payload: %w", err)
		}
		return c.onOrderDelivered(ctx, payload)
	case enums.EventPaymentCompleted:
		var payload payloads.PaymentCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse payment.completed payload: %w", err)
		}
		return c.onPaymentResult(ctx, payload.OrderID, true, "")
	case enums.EventPaymentFailed:
		var payload payloads.PaymentFailedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse payment.failed payload: %w", err)
		}
		return c.onPaymentResult(ctx, payload.OrderID, false, payload.FailureReason)
	default:
		return nil
	}
}

func (c *Consumer) onOrderCreated(ctx context.Context, payload payloads.OrderCreatedEvent) error {
	if payload.CustomerID == uuid.Nil || payload.VendorID == uuid.Nil {
		return fmt.Errorf("order.created payload missing parties")
	}

	customerNote := &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.CustomerID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order %s has been placed and sent to the vendor.", payload.OrderNumber),
		OrderID: &payload.OrderID,
	}
	if err := c.repo.Create(ctx, customerNote); err != nil {
		return err
	}

	vendor, err := c.vendors.FindProfileByID(ctx, payload.VendorID)
	if err != nil {
		return fmt.Errorf("resolve vendor %s: %w", payload.VendorID, err)
	}
	title := "New order received"
	if payload.IsEmergency {
		title = "Emergency order received"
	}
	vendorNote := &models.Notification{
		ID:      uuid.New(),
		UserID:  vendor.UserID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   title,
		Message: fmt.Sprintf("Order %s for KES %s is waiting for confirmation.", payload.OrderNumber, payload.TotalAmount.StringFixed(2)),
		OrderID: &payload.OrderID,
	}
	return c.repo.Create(ctx, vendorNote)
}

func (c *Consumer) onOrderDelivered(ctx context.Context, payload payloads.OrderDeliveredEvent) error {
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("order.delivered payload missing customer")
	}

	customerNote := &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.CustomerID,
		Type:    enums.NotificationTypeDeliveryUpdate,
		Title:   "Order delivered",
		Message: fmt.Sprintf("Your order %s has been delivered.", payload.OrderNumber),
		OrderID: &payload.OrderID,
	}
	if err := c.repo.Create(ctx, customerNote); err != nil {
		return err
	}

	vendor, err := c.vendors.FindProfileByID(ctx, payload.VendorID)
	if err != nil {
		return fmt.Errorf("resolve vendor %s: %w", payload.VendorID, err)
	}
	vendorNote := &models.Notification{
		ID:      uuid.New(),
		UserID:  vendor.UserID,
		Type:    enums.NotificationTypeDeliveryUpdate,
		Title:   "Order completed",
		Message: fmt.Sprintf("Order %s was delivered to the customer.", payload.OrderNumber),
		OrderID: &payload.OrderID,
	}
	return c.repo.Create(ctx, vendorNote)
}

func (c *Consumer) onPaymentResult(ctx context.Context, orderID uuid.UUID, completed bool, reason string) error {
	order, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", orderID, err)
	}

	title := "Payment received"
	message := fmt.Sprintf("Payment for order %s was received. Thank you.", order.OrderNumber)
	if !completed {
		title = "Payment failed"
		message = fmt.Sprintf("Payment for order %s failed. Please try again.", order.OrderNumber)
		if reason != "" {
			message = fmt.Sprintf("Payment for order %s failed: %s", order.OrderNumber, reason)
		}
	}
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypePaymentUpdate,
		Title:   title,
		Message: message,
		OrderID: &order.ID,
	})
}
