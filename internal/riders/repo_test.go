package riders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

func setupRidersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	riders := `
CREATE TABLE IF NOT EXISTS rider_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  vehicle_type TEXT NOT NULL,
  vehicle_registration TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  is_available INTEGER NOT NULL DEFAULT 0,
  current_latitude REAL,
  current_longitude REAL,
  last_location_update DATETIME,
  max_delivery_distance REAL NOT NULL DEFAULT 15,
  total_deliveries INTEGER NOT NULL DEFAULT 0,
  completed_deliveries INTEGER NOT NULL DEFAULT 0,
  rating_average NUMERIC NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	earnings := `
CREATE TABLE IF NOT EXISTS rider_earnings (
  id TEXT PRIMARY KEY,
  rider_id TEXT NOT NULL,
  delivery_id TEXT,
  earning_type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  description TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  earning_date DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(riders).Error)
	require.NoError(t, db.Exec(earnings).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM rider_profiles")
		db.Exec("DELETE FROM rider_earnings")
	})
	return db
}

func createRider(t *testing.T, db *gorm.DB) *models.RiderProfile {
	t.Helper()

	profile := &models.RiderProfile{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		VehicleType:         enums.VehicleTypeMotorcycle,
		Status:              enums.RiderStatusActive,
		MaxDeliveryDistance: 15,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func seedEarning(t *testing.T, db *gorm.DB, riderID uuid.UUID, amount int64, daysAgo int) {
	t.Helper()

	require.NoError(t, db.Create(&models.RiderEarning{
		ID:          uuid.New(),
		RiderID:     riderID,
		EarningType: enums.EarningTypeDelivery,
		Amount:      decimal.NewFromInt(amount),
		EarningDate: time.Now().UTC().AddDate(0, 0, -daysAgo),
	}).Error)
}

func TestRepositoryProfileLookup(t *testing.T) {
	db := setupRidersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rider := createRider(t, db)

	byID, err := repo.FindProfileByID(ctx, rider.ID)
	require.NoError(t, err)
	assert.Equal(t, rider.UserID, byID.UserID)

	byUser, err := repo.FindProfileByUserID(ctx, rider.UserID)
	require.NoError(t, err)
	assert.Equal(t, rider.ID, byUser.ID)

	_, err = repo.FindProfileByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateProfile(t *testing.T) {
	db := setupRidersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rider := createRider(t, db)

	now := time.Now().UTC()
	err := repo.UpdateProfile(ctx, rider.ID, map[string]any{
		"is_available":         true,
		"current_latitude":     -1.2921,
		"current_longitude":    36.8219,
		"last_location_update": now,
	})
	require.NoError(t, err)

	stored, err := repo.FindProfileByID(ctx, rider.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
	require.NotNil(t, stored.CurrentLatitude)
	assert.InDelta(t, -1.2921, *stored.CurrentLatitude, 0.0001)
}

func TestRepositoryEarningsWindow(t *testing.T) {
	db := setupRidersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rider := createRider(t, db)
	seedEarning(t, db, rider.ID, 175, 1)
	seedEarning(t, db, rider.ID, 130, 5)
	seedEarning(t, db, rider.ID, 500, 45)
	seedEarning(t, db, uuid.New(), 999, 1)

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)

	rows, err := repo.ListEarnings(ctx, rider.ID, from, now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].EarningDate.After(rows[1].EarningDate))

	summary, err := repo.SummarizeEarnings(ctx, rider.ID, from, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(305)))
}
