package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/api/validators"
	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

// ListVendors serves the public vendor directory. With lat/lng query
// params it switches to proximity search, closest first.
func ListVendors(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		rawLat := strings.TrimSpace(r.URL.Query().Get("lat"))
		rawLng := strings.TrimSpace(r.URL.Query().Get("lng"))
		if rawLat == "" && rawLng == "" {
			profiles, err := svc.ListVendors(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, profiles)
			return
		}

		lat, err := strconv.ParseFloat(rawLat, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lat"))
			return
		}
		lng, err := strconv.ParseFloat(rawLng, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lng"))
			return
		}

		params := vendors.NearbyParams{Latitude: lat, Longitude: lng}
		if raw := strings.TrimSpace(r.URL.Query().Get("productId")); raw != "" {
			productID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid productId"))
				return
			}
			params.ProductID = &productID
		}

		nearby, err := svc.FindNearbyVendors(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nearby)
	}
}

// GetVendor returns a single vendor profile.
func GetVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetVendor(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type registerVendorRequest struct {
	BusinessName       string          `json:"business_name" validate:"required,min=2,max=120"`
	BusinessType       string          `json:"business_type" validate:"required"`
	RegistrationNumber *string         `json:"registration_number" validate:"omitempty,max=60"`
	Address            string          `json:"address" validate:"required,min=3,max=255"`
	Latitude           float64         `json:"latitude" validate:"min=-90,max=90"`
	Longitude          float64         `json:"longitude" validate:"min=-180,max=180"`
	DeliveryRadiusKM   float64         `json:"delivery_radius_km" validate:"omitempty,gt=0,max=100"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	EstimatedTime      int             `json:"estimated_time" validate:"omitempty,gt=0,max=1440"`
}

// RegisterVendor creates a vendor profile for the authenticated user.
func RegisterVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerVendorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.RegisterVendor(r.Context(), vendors.RegisterVendorInput{
			UserID:             userID,
			BusinessName:       validators.SanitizeString(req.BusinessName, 120),
			BusinessType:       req.BusinessType,
			RegistrationNumber: req.RegistrationNumber,
			Address:            validators.SanitizeString(req.Address, 255),
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			DeliveryRadiusKM:   req.DeliveryRadiusKM,
			MinimumOrderAmount: req.MinimumOrderAmount,
			DeliveryFee:        req.DeliveryFee,
			EstimatedTime:      req.EstimatedTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

type updateVendorRequest struct {
	BusinessName       *string          `json:"business_name" validate:"omitempty,min=2,max=120"`
	Address            *string          `json:"address" validate:"omitempty,min=3,max=255"`
	Latitude           *float64         `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude          *float64         `json:"longitude" validate:"omitempty,min=-180,max=180"`
	DeliveryRadiusKM   *float64         `json:"delivery_radius_km" validate:"omitempty,gt=0,max=100"`
	MinimumOrderAmount *decimal.Decimal `json:"minimum_order_amount"`
	DeliveryFee        *decimal.Decimal `json:"delivery_fee"`
	EstimatedTime      *int             `json:"estimated_time" validate:"omitempty,gt=0,max=1440"`
}

// UpdateVendor applies partial updates to the caller's vendor profile.
func UpdateVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := actorVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateVendorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateVendor(r.Context(), vendorID, vendors.UpdateVendorInput{
			BusinessName:       req.BusinessName,
			Address:            req.Address,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			DeliveryRadiusKM:   req.DeliveryRadiusKM,
			MinimumOrderAmount: req.MinimumOrderAmount,
			DeliveryFee:        req.DeliveryFee,
			EstimatedTime:      req.EstimatedTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ListInventory returns the caller's vendor inventory rows.
func ListInventory(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := actorVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListInventory(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type setInventoryRequest struct {
	CurrentStock int             `json:"current_stock" validate:"min=0"`
	MinimumStock int             `json:"minimum_stock" validate:"min=0"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	RefillPrice  decimal.Decimal `json:"refill_price"`
	IsAvailable  bool            `json:"is_available"`
}

// SetInventory upserts one product's stock and pricing for the
// caller's vendor.
func SetInventory(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := actorVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setInventoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SetInventory(r.Context(), vendorID, vendors.SetInventoryInput{
			ProductID:    productID,
			CurrentStock: req.CurrentStock,
			MinimumStock: req.MinimumStock,
			SellingPrice: req.SellingPrice,
			RefillPrice:  req.RefillPrice,
			IsAvailable:  req.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminSetVendorStatus changes a vendor's lifecycle status.
func AdminSetVendorStatus(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Status string `json:"status" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetVendorStatus(r.Context(), vendorID, req.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": req.Status})
	}
}
