package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	dbpkg "github.com/kaanagas/kaanagas-backend/pkg/db"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/metrics"
	"github.com/kaanagas/kaanagas-backend/pkg/mpesa"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/payloads"
	"github.com/kaanagas/kaanagas-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stkPusher interface {
	STKPush(ctx context.Context, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

type callbackGuard interface {
	IdempotencyKey(scope, id string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// InitiateInput starts an STK push for an order.
type InitiateInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	PhoneNumber string
	ActorRole   string
}

// Service owns payment initiation and callback reconciliation.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*models.Payment, error)
	HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) (string, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	outbox  outboxPublisher
	gateway stkPusher
	guard   callbackGuard
	metrics *metrics.PaymentMetrics
	logg    *logger.Logger
	cfg     config.EventingConfig
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, ob outboxPublisher, gateway stkPusher, guard callbackGuard, paymentMetrics *metrics.PaymentMetrics, logg *logger.Logger, cfg config.EventingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if guard == nil {
		return nil, fmt.Errorf("callback guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		orders:  ordersRepo,
		tx:      tx,
		outbox:  ob,
		gateway: gateway,
		guard:   guard,
		metrics: paymentMetrics,
		logg:    logg,
		cfg:     cfg,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.PhoneNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if input.CustomerID != uuid.Nil && order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	if order.Status == enums.OrderStatusCancelled || order.Status == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable")
	}
	if order.PaymentStatus == enums.OrderPaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	if _, err := s.repo.FindInFlightByOrder(ctx, order.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment is already in progress for this order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check in-flight payments")
	}

	phone := input.PhoneNumber
	payment := &models.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Amount:      order.TotalAmount,
		Method:      enums.PaymentMethodMpesa,
		Status:      enums.PaymentStatusPending,
		PhoneNumber: &phone,
		InitiatedAt: time.Now().UTC(),
	}
	if _, err := s.repo.CreatePayment(ctx, payment); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_payments_order_in_flight") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment is already in progress for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}

	resp, err := s.gateway.STKPush(ctx, mpesa.STKPushRequest{
		Amount:           order.TotalAmount,
		PhoneNumber:      input.PhoneNumber,
		AccountReference: order.OrderNumber,
		TransactionDesc:  "KaanaGas order " + order.OrderNumber,
	})
	if err != nil {
		s.metrics.IncPush("error")
		s.failPayment(ctx, payment.ID, "gateway request failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initiate stk push")
	}
	if !resp.Accepted() {
		s.metrics.IncPush("rejected")
		s.failPayment(ctx, payment.ID, resp.ResponseDescription)
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway rejected the request")
	}

	gatewayResponse := types.JSONMap{
		"merchant_request_id": resp.MerchantRequestID,
		"response_code":       resp.ResponseCode,
		"customer_message":    resp.CustomerMessage,
	}
	updates := map[string]any{
		"status":             enums.PaymentStatusProcessing,
		"external_reference": resp.CheckoutRequestID,
		"gateway_response":   gatewayResponse,
	}
	if err := s.repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	s.metrics.IncPush("accepted")

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_id":          payment.ID.String(),
		"order_id":            order.ID.String(),
		"checkout_request_id": resp.CheckoutRequestID,
	})
	s.logg.Info(logCtx, "stk push accepted")

	payment.Status = enums.PaymentStatusProcessing
	payment.ExternalReference = &resp.CheckoutRequestID
	payment.GatewayResponse = &gatewayResponse
	return payment, nil
}

func (s *service) failPayment(ctx context.Context, paymentID uuid.UUID, reason string) {
	err := s.repo.UpdatePayment(ctx, paymentID, map[string]any{
		"status":         enums.PaymentStatusFailed,
		"failure_reason": reason,
	})
	if err != nil {
		logCtx := s.logg.WithField(ctx, "payment_id", paymentID.String())
		s.logg.Error(logCtx, "failed to mark payment failed", err)
	}
}

// HandleCallback reconciles one gateway callback. Every callback is
// logged; the returned outcome is one of completed, failed, replay or
// unmatched. Unmatched and replayed callbacks are not errors, the
// gateway retries on anything else.
func (s *service) HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) (string, error) {
	callback := envelope.Body.STKCallback
	if callback.CheckoutRequestID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "callback missing checkout request id")
	}

	raw := rawPayload(envelope)
	guardKey := s.guard.IdempotencyKey("webhook:mpesa", fmt.Sprintf("%s:%d", callback.CheckoutRequestID, callback.ResultCode))
	fresh, err := s.guard.SetNX(ctx, guardKey, time.Now().UTC().Unix(), s.cfg.WebhookGuardTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "callback replay guard")
	}
	if !fresh {
		s.metrics.IncCallback(models.CallbackOutcomeReplay)
		s.recordCallback(ctx, callback, raw, nil, models.CallbackOutcomeReplay)
		return models.CallbackOutcomeReplay, nil
	}

	payment, err := s.repo.FindByExternalReference(ctx, callback.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncCallback(models.CallbackOutcomeUnmatched)
			s.recordCallback(ctx, callback, raw, nil, models.CallbackOutcomeUnmatched)
			logCtx := s.logg.WithField(ctx, "checkout_request_id", callback.CheckoutRequestID)
			s.logg.Warn(logCtx, "callback matched no payment")
			return models.CallbackOutcomeUnmatched, nil
		}
		s.releaseGuard(ctx, guardKey)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match payment")
	}
	if payment.Status == enums.PaymentStatusCompleted || payment.Status == enums.PaymentStatusFailed {
		s.metrics.IncCallback(models.CallbackOutcomeReplay)
		s.recordCallback(ctx, callback, raw, &payment.ID, models.CallbackOutcomeReplay)
		return models.CallbackOutcomeReplay, nil
	}

	outcome := models.CallbackOutcomeFailed
	if callback.Succeeded() {
		outcome = models.CallbackOutcomeCompleted
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		now := time.Now().UTC()
		if callback.Succeeded() {
			receipt := callback.ReceiptNumber()
			if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{
				"status":           enums.PaymentStatusCompleted,
				"transaction_id":   receipt,
				"completed_at":     now,
				"gateway_response": raw,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete payment")
			}
			if err := ordersRepo.UpdateOrder(ctx, payment.OrderID, map[string]any{
				"payment_status":    enums.OrderPaymentStatusPaid,
				"payment_method":    enums.PaymentMethodMpesa,
				"payment_reference": receipt,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
			if order, err := ordersRepo.FindByID(ctx, payment.OrderID); err == nil {
				note := "Payment completed successfully via M-Pesa"
				if err := ordersRepo.CreateTracking(ctx, &models.OrderTracking{
					ID:      uuid.New(),
					OrderID: order.ID,
					Status:  order.Status,
					Notes:   &note,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment tracking")
				}
			}
			if err := repo.RecordCallback(ctx, &models.PaymentCallback{
				ID:                uuid.New(),
				CheckoutRequestID: callback.CheckoutRequestID,
				ResultCode:        callback.ResultCode,
				ResultDescription: callback.ResultDesc,
				RawPayload:        raw,
				PaymentID:         &payment.ID,
				Outcome:           models.CallbackOutcomeCompleted,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record callback")
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentCompleted,
				AggregateType: enums.AggregatePayment,
				AggregateID:   payment.ID,
				Version:       1,
				Data: payloads.PaymentCompletedEvent{
					PaymentID:     payment.ID,
					OrderID:       payment.OrderID,
					Amount:        payment.Amount,
					Method:        enums.PaymentMethodMpesa,
					TransactionID: receipt,
				},
			})
		}

		if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{
			"status":           enums.PaymentStatusFailed,
			"failure_reason":   callback.ResultDesc,
			"gateway_response": raw,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail payment")
		}
		if err := ordersRepo.UpdateOrder(ctx, payment.OrderID, map[string]any{
			"payment_status": enums.OrderPaymentStatusFailed,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order payment failed")
		}
		if err := repo.RecordCallback(ctx, &models.PaymentCallback{
			ID:                uuid.New(),
			CheckoutRequestID: callback.CheckoutRequestID,
			ResultCode:        callback.ResultCode,
			ResultDescription: callback.ResultDesc,
			RawPayload:        raw,
			PaymentID:         &payment.ID,
			Outcome:           models.CallbackOutcomeFailed,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record callback")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: payloads.PaymentFailedEvent{
				PaymentID:     payment.ID,
				OrderID:       payment.OrderID,
				Amount:        payment.Amount,
				FailureReason: callback.ResultDesc,
			},
		})
	})
	if err != nil {
		s.releaseGuard(ctx, guardKey)
		return "", err
	}

	s.metrics.IncCallback(outcome)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_id":  payment.ID.String(),
		"order_id":    payment.OrderID.String(),
		"outcome":     outcome,
		"result_code": callback.ResultCode,
	})
	s.logg.Info(logCtx, "payment callback reconciled")
	return outcome, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}

// releaseGuard drops the replay guard when reconciliation failed so the
// gateway's retry of the same callback is processed, not classified as
// a replay.
func (s *service) releaseGuard(ctx context.Context, key string) {
	if err := s.guard.Del(ctx, key); err != nil {
		logCtx := s.logg.WithField(ctx, "guard_key", key)
		s.logg.Error(logCtx, "failed to release callback replay guard", err)
	}
}

func (s *service) recordCallback(ctx context.Context, callback mpesa.STKCallback, raw types.JSONMap, paymentID *uuid.UUID, outcome string) {
	err := s.repo.RecordCallback(ctx, &models.PaymentCallback{
		ID:                uuid.New(),
		CheckoutRequestID: callback.CheckoutRequestID,
		ResultCode:        callback.ResultCode,
		ResultDescription: callback.ResultDesc,
		RawPayload:        raw,
		PaymentID:         paymentID,
		Outcome:           outcome,
	})
	if err != nil {
		logCtx := s.logg.WithField(ctx, "checkout_request_id", callback.CheckoutRequestID)
		s.logg.Error(logCtx, "failed to record payment callback", err)
	}
}

func rawPayload(envelope mpesa.CallbackEnvelope) types.JSONMap {
	raw := types.JSONMap{}
	data, err := json.Marshal(envelope)
	if err != nil {
		return raw
	}
	_ = json.Unmarshal(data, &raw)
	return raw
}

