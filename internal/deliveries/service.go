package deliveries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/geo"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type riderDirectory interface {
	FindProfileByID(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error)
}

// ClaimJobInput is a rider taking an open order for themselves.
type ClaimJobInput struct {
	OrderID     uuid.UUID
	RiderID     uuid.UUID
	ActorUserID uuid.UUID
}

// ActionInput advances a delivery one step.
type ActionInput struct {
	DeliveryID  uuid.UUID
	RiderID     uuid.UUID
	ActorUserID uuid.UUID
	Notes       *string
}

// CompleteInput closes out a delivery at the customer's door.
type CompleteInput struct {
	DeliveryID       uuid.UUID
	RiderID          uuid.UUID
	ActorUserID      uuid.UUID
	Notes            *string
	ActualDistanceKM *float64
}

// FailInput marks a delivery as undeliverable.
type FailInput struct {
	DeliveryID  uuid.UUID
	RiderID     uuid.UUID
	ActorUserID uuid.UUID
	Reason      string
}

// Job is one open order a rider could take, with the leg distance from
// the rider's current position to the vendor.
type Job struct {
	Order        models.Order         `json:"order"`
	Vendor       models.VendorProfile `json:"vendor"`
	DistanceKM   float64              `json:"distanceKm"`
	EstimatedFee decimal.Decimal      `json:"estimatedFee"`
}

// Service runs the rider-side delivery state machine. Order status
// moves to out_for_delivery, delivered or cancelled only through these
// transitions.
type Service interface {
	ClaimJob(ctx context.Context, input ClaimJobInput) (*models.Delivery, error)
	Accept(ctx context.Context, input ActionInput) (*models.Delivery, error)
	StartPickup(ctx context.Context, input ActionInput) (*models.Delivery, error)
	StartTransit(ctx context.Context, input ActionInput) (*models.Delivery, error)
	Complete(ctx context.Context, input CompleteInput) (*models.Delivery, error)
	Fail(ctx context.Context, input FailInput) (*models.Delivery, error)
	GetForRider(ctx context.Context, deliveryID, riderID uuid.UUID) (*models.Delivery, error)
	ListRiderDeliveries(ctx context.Context, riderID uuid.UUID, limit int) ([]models.Delivery, error)
	ListOpenJobs(ctx context.Context, riderID uuid.UUID) ([]Job, error)
}

type service struct {
	repo      Repository
	orders    orders.Repository
	inventory vendors.Repository
	riders    riderDirectory
	tx        txRunner
	outbox    outboxPublisher
	cfg       config.MarketplaceConfig
}

// NewService builds a deliveries service with the required dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, inventory vendors.Repository, riders riderDirectory, tx txRunner, ob outboxPublisher, cfg config.MarketplaceConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if riders == nil {
		return nil, fmt.Errorf("rider directory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		orders:    ordersRepo,
		inventory: inventory,
		riders:    riders,
		tx:        tx,
		outbox:    ob,
		cfg:       cfg,
	}, nil
}

func (s *service) ClaimJob(ctx context.Context, input ClaimJobInput) (*models.Delivery, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rider, err := s.loadActiveRider(ctx, input.RiderID)
	if err != nil {
		return nil, err
	}
	if !rider.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "rider is not available")
	}

	var created *models.Delivery
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		order, err := ordersRepo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.OrderType != enums.OrderTypeDelivery {
			return pkgerrors.New(pkgerrors.CodeValidation, "only delivery orders take riders")
		}
		if order.Status != enums.OrderStatusReadyForPickup {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open for pickup")
		}
		if order.RiderID != nil || order.Delivery != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has a rider")
		}

		now := time.Now().UTC()
		delivery := &models.Delivery{
			ID:                uuid.New(),
			OrderID:           order.ID,
			RiderID:           rider.ID,
			Status:            enums.DeliveryStatusAccepted,
			AssignedAt:        now,
			AcceptedAt:        &now,
			DeliveryLatitude:  order.DeliveryLatitude,
			DeliveryLongitude: order.DeliveryLongitude,
		}
		if _, err := ordersRepo.CreateDelivery(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}
		if err := s.moveOrder(ctx, ordersRepo, tx, order, enums.OrderStatusOutForDelivery, "Rider accepted the delivery", input.ActorUserID, map[string]any{"rider_id": rider.ID}); err != nil {
			return err
		}
		created = delivery
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryAssigned,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleRider)},
			Data: payloads.DeliveryAssignedEvent{
				DeliveryID: delivery.ID,
				OrderID:    order.ID,
				RiderID:    rider.ID,
				AssignedAt: delivery.AssignedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Accept(ctx context.Context, input ActionInput) (*models.Delivery, error) {
	return s.advance(ctx, input, enums.DeliveryStatusAccepted, func(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, order *models.Order) (map[string]any, error) {
		now := time.Now().UTC()
		if err := s.moveOrder(ctx, s.orders.WithTx(tx), tx, order, enums.OrderStatusOutForDelivery, "Rider accepted the delivery", input.ActorUserID, nil); err != nil {
			return nil, err
		}
		return map[string]any{"accepted_at": now}, nil
	})
}

func (s *service) StartPickup(ctx context.Context, input ActionInput) (*models.Delivery, error) {
	return s.advance(ctx, input, enums.DeliveryStatusPickingUp, nil)
}

func (s *service) StartTransit(ctx context.Context, input ActionInput) (*models.Delivery, error) {
	return s.advance(ctx, input, enums.DeliveryStatusInTransit, func(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, order *models.Order) (map[string]any, error) {
		now := time.Now().UTC()
		return map[string]any{"picked_up_at": now}, nil
	})
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*models.Delivery, error) {
	action := ActionInput{
		DeliveryID:  input.DeliveryID,
		RiderID:     input.RiderID,
		ActorUserID: input.ActorUserID,
		Notes:       input.Notes,
	}
	return s.advance(ctx, action, enums.DeliveryStatusDelivered, func(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, order *models.Order) (map[string]any, error) {
		now := time.Now().UTC()
		ordersRepo := s.orders.WithTx(tx)
		repo := s.repo.WithTx(tx)

		if err := s.moveOrder(ctx, ordersRepo, tx, order, enums.OrderStatusDelivered, "Order delivered", input.ActorUserID, map[string]any{"actual_delivery_time": now}); err != nil {
			return nil, err
		}

		inventory := s.inventory.WithTx(tx)
		for _, item := range order.Items {
			if !item.StockReserved {
				continue
			}
			if err := inventory.CommitReservation(ctx, order.VendorID, item.ProductID, item.Quantity); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit reserved stock")
			}
		}

		distance := 0.0
		if input.ActualDistanceKM != nil {
			distance = *input.ActualDistanceKM
		} else if delivery.EstimatedDistanceKM != nil {
			distance = *delivery.EstimatedDistanceKM
		}
		baseFee := s.cfg.RiderBaseFee
		distanceFee := s.cfg.RiderPerKmRate.Mul(decimal.NewFromFloat(distance)).Round(2)
		total := baseFee.Add(distanceFee)

		earning := &models.RiderEarning{
			ID:          uuid.New(),
			RiderID:     delivery.RiderID,
			DeliveryID:  &delivery.ID,
			EarningType: enums.EarningTypeDelivery,
			Amount:      total,
			EarningDate: now,
		}
		if err := repo.CreateEarning(ctx, earning); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record rider earning")
		}
		if err := repo.RecordRiderOutcome(ctx, delivery.RiderID, true); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rider counters")
		}

		err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleRider)},
			Data: payloads.OrderDeliveredEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				RiderID:     &delivery.RiderID,
				DeliveredAt: now,
			},
		})
		if err != nil {
			return nil, err
		}

		updates := map[string]any{
			"delivered_at":   now,
			"base_fee":       baseFee,
			"distance_fee":   distanceFee,
			"total_earnings": total,
		}
		if input.ActualDistanceKM != nil {
			updates["actual_distance_km"] = *input.ActualDistanceKM
		}
		return updates, nil
	})
}

func (s *service) Fail(ctx context.Context, input FailInput) (*models.Delivery, error) {
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "failure reason required")
	}
	action := ActionInput{
		DeliveryID:  input.DeliveryID,
		RiderID:     input.RiderID,
		ActorUserID: input.ActorUserID,
	}
	return s.advance(ctx, action, enums.DeliveryStatusFailed, func(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, order *models.Order) (map[string]any, error) {
		ordersRepo := s.orders.WithTx(tx)
		repo := s.repo.WithTx(tx)
		reason := "delivery failed: " + input.Reason

		if err := s.moveOrder(ctx, ordersRepo, tx, order, enums.OrderStatusCancelled, reason, input.ActorUserID, map[string]any{"cancellation_reason": reason}); err != nil {
			return nil, err
		}

		inventory := s.inventory.WithTx(tx)
		for _, item := range order.Items {
			if !item.StockReserved {
				continue
			}
			if err := inventory.Release(ctx, order.VendorID, item.ProductID, item.Quantity); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release reserved stock")
			}
		}
		if err := repo.RecordRiderOutcome(ctx, delivery.RiderID, false); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rider counters")
		}

		err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleRider)},
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				CancelledAt: time.Now().UTC(),
				Reason:      reason,
			},
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"failure_reason": input.Reason}, nil
	})
}

// advance moves a delivery to target within one transaction. The extra
// hook runs after the transition check and may return additional
// delivery column updates.
func (s *service) advance(ctx context.Context, input ActionInput, target enums.DeliveryStatus, extra func(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, order *models.Order) (map[string]any, error)) (*models.Delivery, error) {
	if input.DeliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rider context missing")
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		delivery, err := repo.FindByID(ctx, input.DeliveryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}
		if delivery.RiderID != input.RiderID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another rider")
		}
		if !orders.CanTransitionDelivery(delivery.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move delivery from %s to %s", delivery.Status, target))
		}

		order, err := s.orders.WithTx(tx).FindByID(ctx, delivery.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		fromStatus := delivery.Status
		updates := map[string]any{"status": target}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if extra != nil {
			more, err := extra(ctx, tx, delivery, order)
			if err != nil {
				return err
			}
			for k, v := range more {
				updates[k] = v
			}
		}
		if err := repo.UpdateDelivery(ctx, delivery.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		delivery.Status = target
		updated = delivery
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryStatusChanged,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleRider)},
			Data: payloads.DeliveryStatusChangedEvent{
				DeliveryID: delivery.ID,
				OrderID:    delivery.OrderID,
				RiderID:    delivery.RiderID,
				FromStatus: fromStatus,
				ToStatus:   target,
				Notes:      derefString(input.Notes),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// moveOrder applies one order transition with its tracking row and
// status-changed event, plus any extra column updates.
func (s *service) moveOrder(ctx context.Context, ordersRepo orders.Repository, tx *gorm.DB, order *models.Order, target enums.OrderStatus, note string, actorUserID uuid.UUID, extraUpdates map[string]any) error {
	if !orders.CanTransition(order.Status, target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}
	updates := map[string]any{"status": target}
	for k, v := range extraUpdates {
		updates[k] = v
	}
	if err := ordersRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if err := ordersRepo.CreateTracking(ctx, &models.OrderTracking{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    target,
		Notes:     &note,
		UpdatedBy: &actorUserID,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order tracking")
	}

	fromStatus := order.Status
	order.Status = target
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actorUserID, Role: string(enums.UserRoleRider)},
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			VendorID:    order.VendorID,
			FromStatus:  fromStatus,
			ToStatus:    target,
			Notes:       note,
		},
	})
}

func (s *service) GetForRider(ctx context.Context, deliveryID, riderID uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	if delivery.RiderID != riderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another rider")
	}
	return delivery, nil
}

func (s *service) ListRiderDeliveries(ctx context.Context, riderID uuid.UUID, limit int) ([]models.Delivery, error) {
	rows, err := s.repo.ListByRider(ctx, riderID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}
	return rows, nil
}

func (s *service) ListOpenJobs(ctx context.Context, riderID uuid.UUID) ([]Job, error) {
	rider, err := s.loadActiveRider(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if !rider.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "rider is not available")
	}
	if rider.CurrentLatitude == nil || rider.CurrentLongitude == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider location unknown")
	}

	open, err := s.orders.ListUnassignedReady(ctx, 100)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open orders")
	}

	jobs := make([]Job, 0, len(open))
	for _, order := range open {
		vendor, err := s.inventory.FindProfileByID(ctx, order.VendorID)
		if err != nil {
			continue
		}
		distance := geo.DistanceKM(*rider.CurrentLatitude, *rider.CurrentLongitude, vendor.Latitude, vendor.Longitude)
		if distance > rider.MaxDeliveryDistance {
			continue
		}
		legKM := distance
		if order.DeliveryLatitude != nil && order.DeliveryLongitude != nil {
			legKM = geo.DistanceKM(vendor.Latitude, vendor.Longitude, *order.DeliveryLatitude, *order.DeliveryLongitude)
		}
		fee := s.cfg.RiderBaseFee.Add(s.cfg.RiderPerKmRate.Mul(decimal.NewFromFloat(legKM)).Round(2))
		jobs = append(jobs, Job{
			Order:        order,
			Vendor:       *vendor,
			DistanceKM:   distance,
			EstimatedFee: fee,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].DistanceKM < jobs[j].DistanceKM })
	return jobs, nil
}

func (s *service) loadActiveRider(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error) {
	if riderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rider context missing")
	}
	rider, err := s.riders.FindProfileByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rider")
	}
	if rider.Status != enums.RiderStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rider is not active")
	}
	return rider, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
