package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/api/validators"
	"github.com/kaanagas/kaanagas-backend/internal/catalog"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

// ListProducts serves the public catalogue with optional filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListParams{
			GasType:      strings.TrimSpace(r.URL.Query().Get("gasType")),
			CylinderSize: strings.TrimSpace(r.URL.Query().Get("cylinderSize")),
			Brand:        strings.TrimSpace(r.URL.Query().Get("brand")),
			Limit:        limit,
			Cursor:       strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct returns a single catalogue product.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name         string          `json:"name" validate:"required,min=2,max=120"`
	GasType      string          `json:"gas_type" validate:"required"`
	CylinderSize string          `json:"cylinder_size" validate:"required"`
	Brand        string          `json:"brand" validate:"required,min=2,max=80"`
	Description  *string         `json:"description" validate:"omitempty,max=1000"`
	EmptyWeight  decimal.Decimal `json:"empty_weight"`
	FullWeight   decimal.Decimal `json:"full_weight"`
	BasePrice    decimal.Decimal `json:"base_price"`
	RefillPrice  decimal.Decimal `json:"refill_price"`
}

// AdminCreateProduct registers a new gas product in the catalogue.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Name:         validators.SanitizeString(req.Name, 120),
			GasType:      req.GasType,
			CylinderSize: req.CylinderSize,
			Brand:        validators.SanitizeString(req.Brand, 80),
			Description:  req.Description,
			EmptyWeight:  req.EmptyWeight,
			FullWeight:   req.FullWeight,
			BasePrice:    req.BasePrice,
			RefillPrice:  req.RefillPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	RefillPrice *decimal.Decimal `json:"refill_price"`
	IsActive    *bool            `json:"is_active"`
}

// AdminUpdateProduct applies partial updates to a catalogue product.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, catalog.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			BasePrice:   req.BasePrice,
			RefillPrice: req.RefillPrice,
			IsActive:    req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
