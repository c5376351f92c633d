package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// Repository exposes persistence helpers for payments and the callback log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	FindInFlightByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindByExternalReference(ctx context.Context, reference string) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	RecordCallback(ctx context.Context, callback *models.PaymentCallback) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) FindInFlightByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID,
			[]enums.PaymentStatus{enums.PaymentStatusPending, enums.PaymentStatusProcessing}).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) FindByExternalReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("external_reference = ?", reference).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(updates).Error
}

func (r *repositoryImpl) RecordCallback(ctx context.Context, callback *models.PaymentCallback) error {
	return r.db.WithContext(ctx).Create(callback).Error
}
