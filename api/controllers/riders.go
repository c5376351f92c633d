package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/api/validators"
	"github.com/kaanagas/kaanagas-backend/internal/deliveries"
	"github.com/kaanagas/kaanagas-backend/internal/riders"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

type registerRiderRequest struct {
	VehicleType         string  `json:"vehicle_type" validate:"required"`
	VehicleRegistration *string `json:"vehicle_registration" validate:"omitempty,max=20"`
	MaxDeliveryDistance float64 `json:"max_delivery_distance" validate:"omitempty,gt=0,max=100"`
}

// RegisterRider creates a rider profile for the authenticated user.
func RegisterRider(svc riders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rider service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerRiderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.RegisterRider(r.Context(), riders.RegisterRiderInput{
			UserID:              userID,
			VehicleType:         req.VehicleType,
			VehicleRegistration: req.VehicleRegistration,
			MaxDeliveryDistance: req.MaxDeliveryDistance,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// UpdateRiderLocation records a rider location ping.
func UpdateRiderLocation(svc riders.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
		Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rider service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateLocation(r.Context(), riders.UpdateLocationInput{
			RiderID:   riderID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

// SetRiderAvailability toggles whether the rider is offered jobs.
func SetRiderAvailability(svc riders.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		IsAvailable bool `json:"is_available"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rider service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SetAvailability(r.Context(), riderID, req.IsAvailable)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func parseEarningsParams(r *http.Request) (riders.EarningsParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil {
		return riders.EarningsParams{}, err
	}
	params := riders.EarningsParams{Limit: limit}

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return riders.EarningsParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		params.From = from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return riders.EarningsParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		params.To = to
	}
	return params, nil
}

// ListRiderEarnings returns the caller's earning entries.
func ListRiderEarnings(svc riders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rider service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parseEarningsParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListEarnings(r.Context(), riderID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// RiderEarningsSummary aggregates the caller's earnings over a window.
func RiderEarningsSummary(svc riders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rider service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parseEarningsParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.EarningsSummary(r.Context(), riderID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ListOpenJobs returns orders the rider could claim, closest first.
func ListOpenJobs(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		jobs, err := svc.ListOpenJobs(r.Context(), riderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobs)
	}
}

// AcceptJob claims an open order for the calling rider.
func AcceptJob(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		OrderID uuid.UUID `json:"order_id" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
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

		delivery, err := svc.ClaimJob(r.Context(), deliveries.ClaimJobInput{
			OrderID:     req.OrderID,
			RiderID:     riderID,
			ActorUserID: userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

type deliveryStatusRequest struct {
	Status           string   `json:"status" validate:"required"`
	Notes            *string  `json:"notes" validate:"omitempty,max=500"`
	ActualDistanceKM *float64 `json:"actual_distance_km" validate:"omitempty,gt=0"`
}

// UpdateDeliveryStatus advances the rider's delivery one step. The
// target status picks the transition; failed requires notes carrying
// the reason.
func UpdateDeliveryStatus(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := pathUUID(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDeliveryStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		action := deliveries.ActionInput{
			DeliveryID:  deliveryID,
			RiderID:     riderID,
			ActorUserID: userID,
			Notes:       req.Notes,
		}

		var delivery *models.Delivery
		switch status {
		case enums.DeliveryStatusAccepted:
			delivery, err = svc.Accept(r.Context(), action)
		case enums.DeliveryStatusPickingUp:
			delivery, err = svc.StartPickup(r.Context(), action)
		case enums.DeliveryStatusInTransit:
			delivery, err = svc.StartTransit(r.Context(), action)
		case enums.DeliveryStatusDelivered:
			delivery, err = svc.Complete(r.Context(), deliveries.CompleteInput{
				DeliveryID:       deliveryID,
				RiderID:          riderID,
				ActorUserID:      userID,
				Notes:            req.Notes,
				ActualDistanceKM: req.ActualDistanceKM,
			})
		case enums.DeliveryStatusFailed:
			reason := ""
			if req.Notes != nil {
				reason = strings.TrimSpace(*req.Notes)
			}
			if reason == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "notes with a failure reason are required"))
				return
			}
			delivery, err = svc.Fail(r.Context(), deliveries.FailInput{
				DeliveryID:  deliveryID,
				RiderID:     riderID,
				ActorUserID: userID,
				Reason:      reason,
			})
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "status cannot be set directly"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// GetDelivery returns one of the caller's deliveries.
func GetDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := pathUUID(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.GetForRider(r.Context(), deliveryID, riderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// ListRiderDeliveries returns the caller's recent deliveries.
func ListRiderDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		riderID, err := actorRiderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListRiderDeliveries(r.Context(), riderID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
