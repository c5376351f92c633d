package vendors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// ErrInsufficientStock is returned when a reservation cannot be satisfied.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository exposes persistence helpers for vendor profiles and inventory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProfile(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error)
	UpdateProfile(ctx context.Context, vendorID uuid.UUID, updates map[string]any) error
	FindProfileByID(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	ListActive(ctx context.Context) ([]models.VendorProfile, error)

	UpsertInventory(ctx context.Context, item *models.VendorInventory) (*models.VendorInventory, error)
	FindInventory(ctx context.Context, vendorID, productID uuid.UUID) (*models.VendorInventory, error)
	ListInventory(ctx context.Context, vendorID uuid.UUID) ([]models.VendorInventory, error)
	ListVendorsWithProduct(ctx context.Context, productID uuid.UUID) ([]models.VendorInventory, error)

	Reserve(ctx context.Context, vendorID, productID uuid.UUID, qty int) error
	Release(ctx context.Context, vendorID, productID uuid.UUID, qty int) error
	CommitReservation(ctx context.Context, vendorID, productID uuid.UUID, qty int) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a vendors repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateProfile(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repositoryImpl) UpdateProfile(ctx context.Context, vendorID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorProfile{}).
		Where("id = ?", vendorID).
		Updates(updates).Error
}

func (r *repositoryImpl) FindProfileByID(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.WithContext(ctx).Where("id = ?", vendorID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.VendorProfile, error) {
	var profiles []models.VendorProfile
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.VendorStatusActive).
		Order("business_name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *repositoryImpl) UpsertInventory(ctx context.Context, item *models.VendorInventory) (*models.VendorInventory, error) {
	var existing models.VendorInventory
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND product_id = ?", item.VendorID, item.ProductID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
			return nil, err
		}
		return item, nil
	}

	updates := map[string]any{
		"current_stock": item.CurrentStock,
		"minimum_stock": item.MinimumStock,
		"selling_price": item.SellingPrice,
		"refill_price":  item.RefillPrice,
		"is_available":  item.IsAvailable,
	}
	if err := r.db.WithContext(ctx).
		Model(&models.VendorInventory{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindInventory(ctx, item.VendorID, item.ProductID)
}

func (r *repositoryImpl) FindInventory(ctx context.Context, vendorID, productID uuid.UUID) (*models.VendorInventory, error) {
	var item models.VendorInventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("vendor_id = ? AND product_id = ?", vendorID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) ListInventory(ctx context.Context, vendorID uuid.UUID) ([]models.VendorInventory, error) {
	var items []models.VendorInventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repositoryImpl) ListVendorsWithProduct(ctx context.Context, productID uuid.UUID) ([]models.VendorInventory, error) {
	var items []models.VendorInventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_available = ? AND current_stock - reserved_stock > 0", productID, true).
		Find(&items).Error
	return items, err
}

// Reserve takes stock with a single conditional update so concurrent
// orders can never oversell.
func (r *repositoryImpl) Reserve(ctx context.Context, vendorID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.VendorInventory{}).
		Where("vendor_id = ? AND product_id = ? AND is_available = ? AND current_stock - reserved_stock >= ?",
			vendorID, productID, true, qty).
		UpdateColumn("reserved_stock", gorm.Expr("reserved_stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *repositoryImpl) Release(ctx context.Context, vendorID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	return r.db.WithContext(ctx).
		Model(&models.VendorInventory{}).
		Where("vendor_id = ? AND product_id = ? AND reserved_stock >= ?", vendorID, productID, qty).
		UpdateColumn("reserved_stock", gorm.Expr("reserved_stock - ?", qty)).Error
}

// CommitReservation converts reserved stock into a real decrement once
// the order leaves the vendor.
func (r *repositoryImpl) CommitReservation(ctx context.Context, vendorID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.VendorInventory{}).
		Where("vendor_id = ? AND product_id = ? AND reserved_stock >= ? AND current_stock >= ?",
			vendorID, productID, qty, qty).
		Updates(map[string]any{
			"reserved_stock": gorm.Expr("reserved_stock - ?", qty),
			"current_stock":  gorm.Expr("current_stock - ?", qty),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
