package riders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
)

type stubRidersRepo struct {
	profiles map[uuid.UUID]*models.RiderProfile
	earnings []models.RiderEarning
}

func newStubRidersRepo() *stubRidersRepo {
	return &stubRidersRepo{profiles: map[uuid.UUID]*models.RiderProfile{}}
}

func (s *stubRidersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRidersRepo) CreateProfile(ctx context.Context, profile *models.RiderProfile) (*models.RiderProfile, error) {
	s.profiles[profile.ID] = profile
	return profile, nil
}

func (s *stubRidersRepo) FindProfileByID(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error) {
	profile, ok := s.profiles[riderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (s *stubRidersRepo) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error) {
	for _, profile := range s.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRidersRepo) UpdateProfile(ctx context.Context, riderID uuid.UUID, updates map[string]any) error {
	profile, ok := s.profiles[riderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.RiderStatus); ok {
		profile.Status = status
	}
	if available, ok := updates["is_available"].(bool); ok {
		profile.IsAvailable = available
	}
	if lat, ok := updates["current_latitude"].(float64); ok {
		profile.CurrentLatitude = &lat
	}
	if lng, ok := updates["current_longitude"].(float64); ok {
		profile.CurrentLongitude = &lng
	}
	if at, ok := updates["last_location_update"].(time.Time); ok {
		profile.LastLocationUpdate = &at
	}
	return nil
}

func (s *stubRidersRepo) ListEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time, limit int) ([]models.RiderEarning, error) {
	var rows []models.RiderEarning
	for _, earning := range s.earnings {
		if earning.RiderID == riderID && !earning.EarningDate.Before(from) && !earning.EarningDate.After(to) {
			rows = append(rows, earning)
		}
	}
	return rows, nil
}

func (s *stubRidersRepo) SummarizeEarnings(ctx context.Context, riderID uuid.UUID, from, to time.Time) (*EarningsSummary, error) {
	rows, _ := s.ListEarnings(ctx, riderID, from, to, 0)
	summary := &EarningsSummary{RiderID: riderID, From: from, To: to}
	for _, row := range rows {
		summary.TotalAmount = summary.TotalAmount.Add(row.Amount)
		summary.Count++
	}
	return summary, nil
}

func newRidersService(t *testing.T) (Service, *stubRidersRepo) {
	t.Helper()
	repo := newStubRidersRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func seedRider(repo *stubRidersRepo, status enums.RiderStatus) *models.RiderProfile {
	profile := &models.RiderProfile{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		VehicleType:         enums.VehicleTypeMotorcycle,
		Status:              status,
		MaxDeliveryDistance: 15,
	}
	repo.profiles[profile.ID] = profile
	return profile
}

func TestRegisterRider(t *testing.T) {
	svc, _ := newRidersService(t)

	profile, err := svc.RegisterRider(context.Background(), RegisterRiderInput{
		UserID:      uuid.New(),
		VehicleType: "motorcycle",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RiderStatusPending, profile.Status)
	assert.Equal(t, enums.VehicleTypeMotorcycle, profile.VehicleType)
	assert.Equal(t, 15.0, profile.MaxDeliveryDistance)
	assert.False(t, profile.IsAvailable)
}

func TestRegisterRiderRejectsDuplicateUser(t *testing.T) {
	svc, repo := newRidersService(t)
	existing := seedRider(repo, enums.RiderStatusActive)

	_, err := svc.RegisterRider(context.Background(), RegisterRiderInput{
		UserID:      existing.UserID,
		VehicleType: "bicycle",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegisterRiderRejectsBadVehicle(t *testing.T) {
	svc, _ := newRidersService(t)

	_, err := svc.RegisterRider(context.Background(), RegisterRiderInput{
		UserID:      uuid.New(),
		VehicleType: "skateboard",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetAvailabilityRequiresActiveRider(t *testing.T) {
	svc, repo := newRidersService(t)
	rider := seedRider(repo, enums.RiderStatusPending)

	_, err := svc.SetAvailability(context.Background(), rider.ID, true)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	rider.Status = enums.RiderStatusActive
	updated, err := svc.SetAvailability(context.Background(), rider.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAvailable)
}

func TestSuspendingRiderClearsAvailability(t *testing.T) {
	svc, repo := newRidersService(t)
	rider := seedRider(repo, enums.RiderStatusActive)
	rider.IsAvailable = true

	updated, err := svc.SetRiderStatus(context.Background(), rider.ID, "suspended")
	require.NoError(t, err)
	assert.Equal(t, enums.RiderStatusSuspended, updated.Status)
	assert.False(t, updated.IsAvailable)
}

func TestUpdateLocation(t *testing.T) {
	svc, repo := newRidersService(t)
	rider := seedRider(repo, enums.RiderStatusActive)

	err := svc.UpdateLocation(context.Background(), UpdateLocationInput{
		RiderID:   rider.ID,
		Latitude:  -1.2921,
		Longitude: 36.8219,
	})
	require.NoError(t, err)
	require.NotNil(t, rider.CurrentLatitude)
	assert.InDelta(t, -1.2921, *rider.CurrentLatitude, 0.0001)
	require.NotNil(t, rider.LastLocationUpdate)

	err = svc.UpdateLocation(context.Background(), UpdateLocationInput{
		RiderID:   rider.ID,
		Latitude:  91,
		Longitude: 0,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestEarningsSummaryDefaultsToLastThirtyDays(t *testing.T) {
	svc, repo := newRidersService(t)
	rider := seedRider(repo, enums.RiderStatusActive)

	now := time.Now().UTC()
	repo.earnings = []models.RiderEarning{
		{RiderID: rider.ID, Amount: decimal.NewFromInt(175), EarningDate: now.AddDate(0, 0, -1)},
		{RiderID: rider.ID, Amount: decimal.NewFromInt(130), EarningDate: now.AddDate(0, 0, -5)},
		{RiderID: rider.ID, Amount: decimal.NewFromInt(500), EarningDate: now.AddDate(0, 0, -45)},
	}

	summary, err := svc.EarningsSummary(context.Background(), rider.ID, EarningsParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(305)))
}
