package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/api/middleware"
	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/api/validators"
	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/internal/payments"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required,min=10,max=15"`
}

// InitiatePayment starts an STK push for the caller's order.
func InitiatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		customerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Initiate(r.Context(), payments.InitiateInput{
			OrderID:     req.OrderID,
			CustomerID:  customerID,
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// ListPayments returns the payment attempts for one order, scoped to
// callers with a claim on that order.
func ListPayments(svc payments.Service, orderSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || orderSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("orderId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required"))
			return
		}
		orderID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderId"))
			return
		}

		order, err := orderSvc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeOrderAccess(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
