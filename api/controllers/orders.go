package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/api/middleware"
	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/api/validators"
	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

type createOrderItemRequest struct {
	ProductID              uuid.UUID `json:"product_id" validate:"required"`
	Quantity               int       `json:"quantity" validate:"required,gt=0"`
	IsRefill               bool      `json:"is_refill"`
	CustomerCylinderSerial *string   `json:"customer_cylinder_serial" validate:"omitempty,max=60"`
}

type createOrderRequest struct {
	VendorID  uuid.UUID                `json:"vendor_id" validate:"required"`
	OrderType string                   `json:"order_type" validate:"required"`
	Items     []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`

	DeliveryAddress       *string    `json:"delivery_address" validate:"omitempty,max=255"`
	DeliveryInstructions  *string    `json:"delivery_instructions" validate:"omitempty,max=500"`
	DeliveryLatitude      *float64   `json:"delivery_latitude" validate:"omitempty,min=-90,max=90"`
	DeliveryLongitude     *float64   `json:"delivery_longitude" validate:"omitempty,min=-180,max=180"`
	RequestedDeliveryTime *time.Time `json:"requested_delivery_time"`
	SpecialInstructions   *string    `json:"special_instructions" validate:"omitempty,max=500"`
	IsEmergency           bool       `json:"is_emergency"`
}

// CreateOrder places a new order for the authenticated customer.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		customerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.CreateOrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, orders.CreateOrderItemInput{
				ProductID:              item.ProductID,
				Quantity:               item.Quantity,
				IsRefill:               item.IsRefill,
				CustomerCylinderSerial: item.CustomerCylinderSerial,
			})
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			CustomerID:            customerID,
			VendorID:              req.VendorID,
			OrderType:             req.OrderType,
			Items:                 items,
			DeliveryAddress:       req.DeliveryAddress,
			DeliveryInstructions:  req.DeliveryInstructions,
			DeliveryLatitude:      req.DeliveryLatitude,
			DeliveryLongitude:     req.DeliveryLongitude,
			RequestedDeliveryTime: req.RequestedDeliveryTime,
			SpecialInstructions:   req.SpecialInstructions,
			IsEmergency:           req.IsEmergency,
			ActorRole:             middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type vendorNotesRequest struct {
	Notes         *string `json:"notes" validate:"omitempty,max=500"`
	EstimatedTime *int    `json:"estimated_time" validate:"omitempty,gt=0,lte=1440"`
}

func vendorAction(r *http.Request) (orders.VendorActionInput, error) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		return orders.VendorActionInput{}, err
	}
	vendorID, err := actorVendorID(r)
	if err != nil {
		return orders.VendorActionInput{}, err
	}
	userID, err := actorUserID(r)
	if err != nil {
		return orders.VendorActionInput{}, err
	}

	input := orders.VendorActionInput{
		OrderID:     orderID,
		VendorID:    vendorID,
		ActorUserID: userID,
		ActorRole:   middleware.RoleFromContext(r.Context()),
	}
	if r.ContentLength != 0 {
		var req vendorNotesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return orders.VendorActionInput{}, err
		}
		input.Notes = req.Notes
		input.EstimatedMinutes = req.EstimatedTime
	}
	return input, nil
}

func vendorOrderTransition(
	logg *logger.Logger,
	apply func(r *http.Request, input orders.VendorActionInput) (*models.Order, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := vendorAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := apply(r, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ConfirmOrder moves a pending order to confirmed.
func ConfirmOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return vendorOrderTransition(logg, func(r *http.Request, input orders.VendorActionInput) (*models.Order, error) {
		if svc == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
		}
		return svc.Confirm(r.Context(), input)
	})
}

// PrepareOrder moves a confirmed order to preparing.
func PrepareOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return vendorOrderTransition(logg, func(r *http.Request, input orders.VendorActionInput) (*models.Order, error) {
		if svc == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
		}
		return svc.StartPreparing(r.Context(), input)
	})
}

// ReadyOrderForPickup marks a preparing order as ready for pickup.
func ReadyOrderForPickup(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return vendorOrderTransition(logg, func(r *http.Request, input orders.VendorActionInput) (*models.Order, error) {
		if svc == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
		}
		return svc.ReadyForPickup(r.Context(), input)
	})
}

// AssignRider offers a ready order to a specific rider.
func AssignRider(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		RiderID uuid.UUID `json:"rider_id" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, err := actorVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.AssignRider(r.Context(), orders.AssignRiderInput{
			OrderID:     orderID,
			VendorID:    vendorID,
			RiderID:     req.RiderID,
			ActorUserID: userID,
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// CancelOrder cancels an order the caller is allowed to touch.
// Customers cancel their own orders, vendors theirs, admins any.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Reason string `json:"reason" validate:"required,min=3,max=255"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeOrderAccess(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cancelled, err := svc.Cancel(r.Context(), orders.CancelOrderInput{
			OrderID:     orderID,
			ActorUserID: userID,
			ActorRole:   middleware.RoleFromContext(r.Context()),
			Reason:      validators.SanitizeString(req.Reason, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cancelled)
	}
}

// authorizeOrderAccess enforces the per-role visibility rule shared by
// order reads and cancellation.
func authorizeOrderAccess(r *http.Request, order *models.Order) error {
	ctx := r.Context()
	switch middleware.RoleFromContext(ctx) {
	case string(enums.UserRoleAdmin):
		return nil
	case string(enums.UserRoleCustomer):
		if order.CustomerID.String() == middleware.UserIDFromContext(ctx) {
			return nil
		}
	case string(enums.UserRoleVendor):
		if order.VendorID.String() == middleware.VendorIDFromContext(ctx) {
			return nil
		}
	case string(enums.UserRoleRider):
		if order.RiderID != nil && order.RiderID.String() == middleware.RiderIDFromContext(ctx) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to you")
}

// GetOrder returns an order the caller is allowed to see.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeOrderAccess(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// TrackOrder returns an order's status history by order number.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderNumber := pathString(r, "orderNumber")
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := svc.GetByNumber(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeOrderAccess(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Track(r.Context(), order.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func parseOrderListFilters(r *http.Request) (orders.ListFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil {
		return orders.ListFilters{}, err
	}
	filters := orders.ListFilters{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("orderType")); raw != "" {
		orderType, err := enums.ParseOrderType(raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderType filter")
		}
		filters.OrderType = &orderType
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		filters.DateTo = &to
	}
	return filters, nil
}

// ListOrders serves the order list scoped to the caller's role.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		filters, err := parseOrderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list *orders.OrderList
		switch middleware.RoleFromContext(r.Context()) {
		case string(enums.UserRoleAdmin):
			list, err = svc.ListAllOrders(r.Context(), filters)
		case string(enums.UserRoleVendor):
			var vendorID uuid.UUID
			vendorID, err = actorVendorID(r)
			if err == nil {
				list, err = svc.ListVendorOrders(r.Context(), vendorID, filters)
			}
		case string(enums.UserRoleRider):
			var riderID uuid.UUID
			riderID, err = actorRiderID(r)
			if err == nil {
				list, err = svc.ListRiderOrders(r.Context(), riderID, filters)
			}
		default:
			var customerID uuid.UUID
			customerID, err = actorUserID(r)
			if err == nil {
				list, err = svc.ListCustomerOrders(r.Context(), customerID, filters)
			}
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type estimateItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	IsRefill  bool      `json:"is_refill"`
}

type estimateRequest struct {
	VendorID          uuid.UUID             `json:"vendor_id" validate:"required"`
	OrderType         string                `json:"order_type" validate:"required"`
	Items             []estimateItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryLatitude  *float64              `json:"delivery_latitude" validate:"omitempty,min=-90,max=90"`
	DeliveryLongitude *float64              `json:"delivery_longitude" validate:"omitempty,min=-180,max=180"`
}

// EstimateOrder prices a prospective order without persisting it.
func EstimateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var req estimateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.EstimateItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, orders.EstimateItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				IsRefill:  item.IsRefill,
			})
		}

		estimate, err := svc.Estimate(r.Context(), orders.EstimateInput{
			VendorID:          req.VendorID,
			OrderType:         req.OrderType,
			Items:             items,
			DeliveryLatitude:  req.DeliveryLatitude,
			DeliveryLongitude: req.DeliveryLongitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, estimate)
	}
}

// VendorOrderStats summarises the caller's order pipeline.
func VendorOrderStats(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		vendorID, err := actorVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.VendorStats(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminOrderStats aggregates marketplace order volume and revenue over
// a trailing window of days.
func AdminOrderStats(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		days, err := validators.ParseQueryInt(r, "days", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.AdminStats(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
