package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/pagination"
)

// Service defines catalogue operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.GasProduct, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.GasProduct, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error)
	ListProducts(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService wires catalogue dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.GasProduct, error) {
	gasType, err := enums.ParseGasType(input.GasType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gas type")
	}
	size, err := enums.ParseCylinderSize(input.CylinderSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cylinder size")
	}
	if input.BasePrice.IsNegative() || input.RefillPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}

	product := &models.GasProduct{
		ID:           uuid.New(),
		Name:         input.Name,
		GasType:      gasType,
		CylinderSize: size,
		Brand:        input.Brand,
		Description:  input.Description,
		EmptyWeight:  input.EmptyWeight,
		FullWeight:   input.FullWeight,
		BasePrice:    input.BasePrice,
		RefillPrice:  input.RefillPrice,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.GasProduct, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
		}
		updates["base_price"] = *input.BasePrice
	}
	if input.RefillPrice != nil {
		if input.RefillPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refill price must not be negative")
		}
		updates["refill_price"] = *input.RefillPrice
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, productID)
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listProductsParams{
		Brand:      params.Brand,
		ActiveOnly: !params.IncludeInactive,
		Limit:      params.Limit,
	}
	if params.GasType != "" {
		gasType, err := enums.ParseGasType(params.GasType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gas type")
		}
		query.GasType = &gasType
	}
	if params.CylinderSize != "" {
		size, err := enums.ParseCylinderSize(params.CylinderSize)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cylinder size")
		}
		query.CylinderSize = &size
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// CreateProductInput carries the fields for a new catalogue entry.
type CreateProductInput struct {
	Name         string
	GasType      string
	CylinderSize string
	Brand        string
	Description  *string
	EmptyWeight  decimal.Decimal
	FullWeight   decimal.Decimal
	BasePrice    decimal.Decimal
	RefillPrice  decimal.Decimal
}

// UpdateProductInput carries optional catalogue updates.
type UpdateProductInput struct {
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
	RefillPrice *decimal.Decimal
	IsActive    *bool
}

// ListParams configures catalogue filtering and pagination.
type ListParams struct {
	GasType         string
	CylinderSize    string
	Brand           string
	IncludeInactive bool
	Limit           int
	Cursor          string
}

// ListResult wraps returned products and the cursor for the next page.
type ListResult struct {
	Items  []models.GasProduct `json:"items"`
	Cursor string              `json:"cursor"`
}
