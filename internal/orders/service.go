package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/geo"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox/payloads"
)

// defaultConfirmEstimateMinutes is used when the vendor confirms an
// order without giving their own preparation estimate.
const defaultConfirmEstimateMinutes = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type riderDirectory interface {
	FindProfileByID(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error)
}

type productDirectory interface {
	FindByID(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error)
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Confirm(ctx context.Context, input VendorActionInput) (*models.Order, error)
	StartPreparing(ctx context.Context, input VendorActionInput) (*models.Order, error)
	ReadyForPickup(ctx context.Context, input VendorActionInput) (*models.Order, error)
	AssignRider(ctx context.Context, input AssignRiderInput) (*models.Delivery, error)
	Cancel(ctx context.Context, input CancelOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	Track(ctx context.Context, orderID uuid.UUID) (*TrackingView, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListRiderOrders(ctx context.Context, riderID uuid.UUID, filters ListFilters) (*OrderList, error)
	ListAllOrders(ctx context.Context, filters ListFilters) (*OrderList, error)
	Estimate(ctx context.Context, input EstimateInput) (*Estimate, error)
	VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorOrderStats, error)
	AdminStats(ctx context.Context, days int) (*AdminOrderStats, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory vendors.Repository
	riders    riderDirectory
	products  productDirectory
	numbers   NumberSource
	cfg       config.MarketplaceConfig
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, inventory vendors.Repository, riders riderDirectory, products productDirectory, numbers NumberSource, cfg config.MarketplaceConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	if riders == nil {
		return nil, fmt.Errorf("rider directory required")
	}
	if products == nil {
		return nil, fmt.Errorf("product directory required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("order number source required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    ob,
		inventory: inventory,
		riders:    riders,
		products:  products,
		numbers:   numbers,
		cfg:       cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	orderType, err := enums.ParseOrderType(input.OrderType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	if max := s.cfg.MaxOrderItemsPerOrder; max > 0 && len(input.Items) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("orders are limited to %d line items", max))
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if orderType == enums.OrderTypeDelivery && input.DeliveryAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery orders need a delivery address")
	}

	vendor, err := s.inventory.FindProfileByID(ctx, input.VendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	if vendor.Status != enums.VendorStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vendor is not accepting orders")
	}

	now := time.Now().UTC()
	seq, err := s.numbers.Next(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}
	orderNumber := FormatOrderNumber(s.cfg.OrderNumberPrefix, now, seq)

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		orderID := uuid.New()
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			item := models.OrderItem{
				ID:                     uuid.New(),
				OrderID:                orderID,
				ProductID:              line.ProductID,
				Quantity:               line.Quantity,
				IsRefill:               line.IsRefill,
				CustomerCylinderSerial: line.CustomerCylinderSerial,
			}

			var unitPrice decimal.Decimal
			stock, err := inventory.FindInventory(ctx, input.VendorID, line.ProductID)
			switch {
			case err == nil:
				unitPrice, err = unitPriceFor(vendor, stock, line.IsRefill)
				if err != nil {
					return err
				}
				if err := inventory.Reserve(ctx, input.VendorID, line.ProductID, line.Quantity); err != nil {
					if errors.Is(err, vendors.ErrInsufficientStock) {
						return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock for a requested product")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
				}
				item.StockReserved = true
				if stock.Product != nil {
					item.ProductName = stock.Product.Name
					item.CylinderSize = stock.Product.CylinderSize
					item.Brand = stock.Product.Brand
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// No vendor inventory row. Price off the catalogue and
				// skip the stock reservation entirely.
				product, perr := s.products.FindByID(ctx, line.ProductID)
				if perr != nil {
					if errors.Is(perr, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeValidation, "a requested product does not exist")
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, perr, "load product")
				}
				if !product.IsActive {
					return pkgerrors.New(pkgerrors.CodeValidation, "a requested product is no longer sold")
				}
				unitPrice, perr = fallbackUnitPrice(vendor, product, line.IsRefill)
				if perr != nil {
					return perr
				}
				item.ProductName = product.Name
				item.CylinderSize = product.CylinderSize
				item.Brand = product.Brand
			default:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
			}

			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			item.UnitPrice = unitPrice
			item.TotalPrice = lineTotal
			items = append(items, item)
		}

		if subtotal.LessThan(vendor.MinimumOrderAmount) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("order subtotal is below the vendor minimum of %s", vendor.MinimumOrderAmount.StringFixed(2)))
		}

		deliveryFee := decimal.Zero
		if orderType == enums.OrderTypeDelivery {
			deliveryFee = vendor.DeliveryFee
		}
		estimated := now.Add(time.Duration(vendor.EstimatedTime) * time.Minute)

		order := &models.Order{
			ID:                    orderID,
			OrderNumber:           orderNumber,
			CustomerID:            input.CustomerID,
			VendorID:              input.VendorID,
			OrderType:             orderType,
			Status:                enums.OrderStatusPending,
			DeliveryAddress:       input.DeliveryAddress,
			DeliveryInstructions:  input.DeliveryInstructions,
			DeliveryLatitude:      input.DeliveryLatitude,
			DeliveryLongitude:     input.DeliveryLongitude,
			RequestedDeliveryTime: input.RequestedDeliveryTime,
			EstimatedDeliveryTime: &estimated,
			Subtotal:              subtotal,
			DeliveryFee:           deliveryFee,
			DiscountAmount:        decimal.Zero,
			TaxAmount:             decimal.Zero,
			TotalAmount:           subtotal.Add(deliveryFee),
			PaymentStatus:         enums.OrderPaymentStatusPending,
			SpecialInstructions:   input.SpecialInstructions,
			IsEmergency:           input.IsEmergency,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		createdNote := "Order created successfully"
		if err := repo.CreateTracking(ctx, &models.OrderTracking{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    enums.OrderStatusPending,
			Notes:     &createdNote,
			UpdatedBy: &input.CustomerID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order tracking")
		}

		order.Items = items
		created = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: input.ActorRole},
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				OrderType:   order.OrderType,
				TotalAmount: order.TotalAmount,
				IsEmergency: order.IsEmergency,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func unitPriceFor(vendor *models.VendorProfile, stock *models.VendorInventory, isRefill bool) (decimal.Decimal, error) {
	if !stock.IsAvailable {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict, "a requested product is not available")
	}
	if !isRefill {
		return stock.SellingPrice, nil
	}
	if !vendor.BusinessType.SellsRefills() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not offer refills")
	}
	return stock.RefillPrice, nil
}

func fallbackUnitPrice(vendor *models.VendorProfile, product *models.GasProduct, isRefill bool) (decimal.Decimal, error) {
	if !isRefill {
		return product.BasePrice, nil
	}
	if !vendor.BusinessType.SellsRefills() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not offer refills")
	}
	return product.RefillPrice, nil
}

func (s *service) Confirm(ctx context.Context, input VendorActionInput) (*models.Order, error) {
	return s.vendorTransition(ctx, input, enums.OrderStatusConfirmed)
}

func (s *service) StartPreparing(ctx context.Context, input VendorActionInput) (*models.Order, error) {
	return s.vendorTransition(ctx, input, enums.OrderStatusPreparing)
}

func (s *service) ReadyForPickup(ctx context.Context, input VendorActionInput) (*models.Order, error) {
	return s.vendorTransition(ctx, input, enums.OrderStatusReadyForPickup)
}

func (s *service) vendorTransition(ctx context.Context, input VendorActionInput, target enums.OrderStatus) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		if !CanTransition(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
		}

		from := order.Status
		updates := map[string]any{"status": target}
		var eta *time.Time
		if target == enums.OrderStatusConfirmed {
			minutes := defaultConfirmEstimateMinutes
			if input.EstimatedMinutes != nil && *input.EstimatedMinutes > 0 {
				minutes = *input.EstimatedMinutes
			}
			stamped := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)
			eta = &stamped
			updates["estimated_delivery_time"] = stamped
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if err := repo.CreateTracking(ctx, &models.OrderTracking{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    target,
			Notes:     input.Notes,
			UpdatedBy: &input.ActorUserID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order tracking")
		}

		order.Status = target
		if eta != nil {
			order.EstimatedDeliveryTime = eta
		}
		updated = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				FromStatus:  from,
				ToStatus:    target,
				Notes:       derefString(input.Notes),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) AssignRider(ctx context.Context, input AssignRiderInput) (*models.Delivery, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}

	rider, err := s.riders.FindProfileByID(ctx, input.RiderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rider")
	}
	if rider.Status != enums.RiderStatusActive || !rider.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "rider is not available")
	}

	var created *models.Delivery
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		if order.OrderType != enums.OrderTypeDelivery {
			return pkgerrors.New(pkgerrors.CodeValidation, "only delivery orders take riders")
		}
		if order.Delivery != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has a delivery")
		}
		if order.Status != enums.OrderStatusReadyForPickup {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not ready for rider assignment")
		}

		delivery := &models.Delivery{
			ID:                uuid.New(),
			OrderID:           order.ID,
			RiderID:           input.RiderID,
			Status:            enums.DeliveryStatusAssigned,
			AssignedAt:        time.Now().UTC(),
			DeliveryLatitude:  order.DeliveryLatitude,
			DeliveryLongitude: order.DeliveryLongitude,
		}
		if _, err := repo.CreateDelivery(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"rider_id": input.RiderID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach rider to order")
		}

		created = delivery
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryAssigned,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole},
			Data: payloads.DeliveryAssignedEvent{
				DeliveryID: delivery.ID,
				OrderID:    order.ID,
				RiderID:    input.RiderID,
				AssignedAt: delivery.AssignedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Cancel(ctx context.Context, input CancelOrderInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot be cancelled from %s", order.Status))
		}

		for _, item := range order.Items {
			if !item.StockReserved {
				continue
			}
			if err := inventory.Release(ctx, order.VendorID, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release reserved stock")
			}
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":              enums.OrderStatusCancelled,
			"cancellation_reason": input.Reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if order.Delivery != nil && !order.Delivery.Status.IsTerminal() {
			if err := repo.UpdateDelivery(ctx, order.Delivery.ID, map[string]any{
				"status": enums.DeliveryStatusCancelled,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel delivery")
			}
		}
		if err := repo.CreateTracking(ctx, &models.OrderTracking{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    enums.OrderStatusCancelled,
			Notes:     &input.Reason,
			UpdatedBy: &input.ActorUserID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order tracking")
		}

		order.Status = enums.OrderStatusCancelled
		order.CancellationReason = &input.Reason
		cancelled = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole},
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				CancelledAt: time.Now().UTC(),
				Reason:      input.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) Track(ctx context.Context, orderID uuid.UUID) (*TrackingView, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListTracking(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tracking history")
	}
	return &TrackingView{Order: order, History: history}, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListCustomerOrders(ctx, customerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

func (s *service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListVendorOrders(ctx, vendorID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return list, nil
}

func (s *service) ListRiderOrders(ctx context.Context, riderID uuid.UUID, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListRiderOrders(ctx, riderID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rider orders")
	}
	return list, nil
}

func (s *service) ListAllOrders(ctx context.Context, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListAllOrders(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Estimate quotes a prospective order without touching stock or writing
// anything. The delivery fee here is the vendor's flat fee, the same
// figure order creation uses.
func (s *service) Estimate(ctx context.Context, input EstimateInput) (*Estimate, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	orderType, err := enums.ParseOrderType(input.OrderType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimate needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	vendor, err := s.inventory.FindProfileByID(ctx, input.VendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	quote := &Estimate{
		Lines:            make([]EstimateLine, 0, len(input.Items)),
		EstimatedMinutes: vendor.EstimatedTime,
		CanDeliver:       true,
	}
	subtotal := decimal.Zero
	for _, line := range input.Items {
		priced := EstimateLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			IsRefill:  line.IsRefill,
		}
		stock, err := s.inventory.FindInventory(ctx, input.VendorID, line.ProductID)
		switch {
		case err == nil:
			priced.UnitPrice, err = unitPriceFor(vendor, stock, line.IsRefill)
			if err != nil {
				return nil, err
			}
			priced.InStock = stock.CurrentStock-stock.ReservedStock >= line.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			product, perr := s.products.FindByID(ctx, line.ProductID)
			if perr != nil {
				if errors.Is(perr, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "a requested product does not exist")
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, perr, "load product")
			}
			priced.UnitPrice, perr = fallbackUnitPrice(vendor, product, line.IsRefill)
			if perr != nil {
				return nil, perr
			}
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
		}
		priced.TotalPrice = priced.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(priced.TotalPrice)
		quote.Lines = append(quote.Lines, priced)
	}

	quote.Subtotal = subtotal
	if orderType == enums.OrderTypeDelivery {
		quote.DeliveryFee = vendor.DeliveryFee
		if input.DeliveryLatitude != nil && input.DeliveryLongitude != nil {
			distance := geo.DistanceKM(vendor.Latitude, vendor.Longitude, *input.DeliveryLatitude, *input.DeliveryLongitude)
			quote.DistanceKM = &distance
			quote.CanDeliver = distance <= vendor.DeliveryRadiusKM
		}
	}
	quote.TotalAmount = subtotal.Add(quote.DeliveryFee).Round(2)
	quote.MeetsMinimum = !subtotal.LessThan(vendor.MinimumOrderAmount)
	return quote, nil
}

func (s *service) VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorOrderStats, error) {
	counts, err := s.repo.CountByVendorAndStatus(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendor orders")
	}
	return &VendorOrderStats{Counts: counts}, nil
}

func (s *service) AdminStats(ctx context.Context, days int) (*AdminOrderStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	counts, revenue, err := s.repo.StatsSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate order stats")
	}

	stats := &AdminOrderStats{
		Days:           days,
		Completed:      counts[string(enums.OrderStatusDelivered)],
		Pending:        counts[string(enums.OrderStatusPending)],
		Cancelled:      counts[string(enums.OrderStatusCancelled)],
		Revenue:        revenue,
		CountsByStatus: counts,
	}
	for _, total := range counts {
		stats.TotalOrders += total
	}
	return stats, nil
}
