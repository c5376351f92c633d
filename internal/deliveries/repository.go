package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
)

// Repository defines persistence operations for deliveries and the
// rider-side ledger rows they produce.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
	ListByRider(ctx context.Context, riderID uuid.UUID, limit int) ([]models.Delivery, error)
	UpdateDelivery(ctx context.Context, deliveryID uuid.UUID, updates map[string]any) error
	CreateEarning(ctx context.Context, earning *models.RiderEarning) error
	RecordRiderOutcome(ctx context.Context, riderID uuid.UUID, completed bool) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Where("id = ?", deliveryID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repositoryImpl) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repositoryImpl) ListByRider(ctx context.Context, riderID uuid.UUID, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Delivery
	err := r.db.WithContext(ctx).
		Where("rider_id = ?", riderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UpdateDelivery(ctx context.Context, deliveryID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		Updates(updates).Error
}

func (r *repositoryImpl) CreateEarning(ctx context.Context, earning *models.RiderEarning) error {
	return r.db.WithContext(ctx).Create(earning).Error
}

// RecordRiderOutcome bumps the rider's delivery counters. Completed
// deliveries count toward both totals, failed ones only toward attempts.
func (r *repositoryImpl) RecordRiderOutcome(ctx context.Context, riderID uuid.UUID, completed bool) error {
	updates := map[string]any{
		"total_deliveries": gorm.Expr("total_deliveries + 1"),
	}
	if completed {
		updates["completed_deliveries"] = gorm.Expr("completed_deliveries + 1")
	}
	return r.db.WithContext(ctx).
		Model(&models.RiderProfile{}).
		Where("id = ?", riderID).
		Updates(updates).Error
}
