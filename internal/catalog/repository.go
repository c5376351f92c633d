package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the product catalogue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.GasProduct) (*models.GasProduct, error)
	Update(ctx context.Context, productID uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error)
	List(ctx context.Context, params listProductsParams) ([]models.GasProduct, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalogue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProductsParams struct {
	GasType      *enums.GasType
	CylinderSize *enums.CylinderSize
	Brand        string
	ActiveOnly   bool
	Limit        int
	Cursor       *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.GasProduct) (*models.GasProduct, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repositoryImpl) Update(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GasProduct{}).
		Where("id = ?", productID).
		Updates(updates).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error) {
	var product models.GasProduct
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listProductsParams) ([]models.GasProduct, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.GasProduct{})
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.GasType != nil {
		query = query.Where("gas_type = ?", *params.GasType)
	}
	if params.CylinderSize != nil {
		query = query.Where("cylinder_size = ?", *params.CylinderSize)
	}
	if params.Brand != "" {
		query = query.Where("brand = ?", params.Brand)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.GasProduct
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}
