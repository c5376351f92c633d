package riders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
)

// EarningsSummary is the rolled-up view of a rider's ledger for a period.
type EarningsSummary struct {
	RiderID     uuid.UUID       `json:"rider_id"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int64           `json:"count"`
}

// Repository defines persistence operations for rider profiles and
// their earnings ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProfile(ctx context.Context, profile *models.RiderProfile) (*models.RiderProfile, error)
	FindProfileByID(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error)
	UpdateProfile(ctx context.Context, riderID uuid.UUID, updates map[string]any) error
	ListEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time, limit int) ([]models.RiderEarning, error)
	SummarizeEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time) (*EarningsSummary, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a riders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateProfile(ctx context.Context, profile *models.RiderProfile) (*models.RiderProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repositoryImpl) FindProfileByID(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error) {
	var profile models.RiderProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", riderID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error) {
	var profile models.RiderProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) UpdateProfile(ctx context.Context, riderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RiderProfile{}).
		Where("id = ?", riderID).
		Updates(updates).Error
}

func (r *repositoryImpl) ListEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time, limit int) ([]models.RiderEarning, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.RiderEarning
	err := r.db.WithContext(ctx).
		Where("rider_id = ?", riderID).
		Where("earning_date >= ? AND earning_date <= ?", from, to).
		Order("earning_date DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) SummarizeEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time) (*EarningsSummary, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.RiderEarning{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("rider_id = ?", riderID).
		Where("earning_date >= ? AND earning_date <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &EarningsSummary{
		RiderID:     riderID,
		From:        from,
		To:          to,
		TotalAmount: row.Total,
		Count:       row.Count,
	}, nil
}
