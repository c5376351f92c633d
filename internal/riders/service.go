package riders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
)

// RegisterRiderInput creates a rider profile for a user.
type RegisterRiderInput struct {
	UserID              uuid.UUID
	VehicleType         string
	VehicleRegistration *string
	MaxDeliveryDistance float64
}

// UpdateLocationInput is a rider location ping.
type UpdateLocationInput struct {
	RiderID   uuid.UUID
	Latitude  float64
	Longitude float64
}

// EarningsParams bounds an earnings query. Zero times default to the
// last 30 days.
type EarningsParams struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Service owns rider onboarding, presence and the earnings read side.
type Service interface {
	RegisterRider(ctx context.Context, input RegisterRiderInput) (*models.RiderProfile, error)
	GetRider(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error)
	SetRiderStatus(ctx context.Context, riderID uuid.UUID, status string) (*models.RiderProfile, error)
	UpdateLocation(ctx context.Context, input UpdateLocationInput) error
	SetAvailability(ctx context.Context, riderID uuid.UUID, available bool) (*models.RiderProfile, error)
	ListEarnings(ctx context.Context, riderID uuid.UUID, params EarningsParams) ([]models.RiderEarning, error)
	EarningsSummary(ctx context.Context, riderID uuid.UUID, params EarningsParams) (*EarningsSummary, error)
}

type service struct {
	repo Repository
}

// NewService builds a riders service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("riders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RegisterRider(ctx context.Context, input RegisterRiderInput) (*models.RiderProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	vehicleType, err := enums.ParseVehicleType(input.VehicleType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle type")
	}
	if _, err := s.repo.FindProfileByUserID(ctx, input.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a rider profile")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing profile")
	}

	profile := &models.RiderProfile{
		ID:                  uuid.New(),
		UserID:              input.UserID,
		VehicleType:         vehicleType,
		VehicleRegistration: input.VehicleRegistration,
		Status:              enums.RiderStatusPending,
		MaxDeliveryDistance: input.MaxDeliveryDistance,
	}
	if profile.MaxDeliveryDistance <= 0 {
		profile.MaxDeliveryDistance = 15
	}
	created, err := s.repo.CreateProfile(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rider profile")
	}
	return created, nil
}

func (s *service) GetRider(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error) {
	profile, err := s.repo.FindProfileByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rider")
	}
	return profile, nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rider")
	}
	return profile, nil
}

func (s *service) SetRiderStatus(ctx context.Context, riderID uuid.UUID, status string) (*models.RiderProfile, error) {
	parsed, err := enums.ParseRiderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rider status")
	}
	profile, err := s.GetRider(ctx, riderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": parsed}
	if parsed != enums.RiderStatusActive {
		updates["is_available"] = false
	}
	if err := s.repo.UpdateProfile(ctx, riderID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rider status")
	}
	profile.Status = parsed
	if parsed != enums.RiderStatusActive {
		profile.IsAvailable = false
	}
	return profile, nil
}

func (s *service) UpdateLocation(ctx context.Context, input UpdateLocationInput) error {
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	if _, err := s.GetRider(ctx, input.RiderID); err != nil {
		return err
	}
	err := s.repo.UpdateProfile(ctx, input.RiderID, map[string]any{
		"current_latitude":     input.Latitude,
		"current_longitude":    input.Longitude,
		"last_location_update": time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rider location")
	}
	return nil
}

func (s *service) SetAvailability(ctx context.Context, riderID uuid.UUID, available bool) (*models.RiderProfile, error) {
	profile, err := s.GetRider(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if available && profile.Status != enums.RiderStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rider must be active to go available")
	}
	if err := s.repo.UpdateProfile(ctx, riderID, map[string]any{"is_available": available}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rider availability")
	}
	profile.IsAvailable = available
	return profile, nil
}

func (s *service) ListEarnings(ctx context.Context, riderID uuid.UUID, params EarningsParams) ([]models.RiderEarning, error) {
	from, to := normalizePeriod(params)
	rows, err := s.repo.ListEarnings(ctx, riderID, from, to, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list earnings")
	}
	return rows, nil
}

func (s *service) EarningsSummary(ctx context.Context, riderID uuid.UUID, params EarningsParams) (*EarningsSummary, error) {
	from, to := normalizePeriod(params)
	summary, err := s.repo.SummarizeEarnings(ctx, riderID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize earnings")
	}
	return summary, nil
}

func normalizePeriod(params EarningsParams) (time.Time, time.Time) {
	to := params.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	from := params.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}
