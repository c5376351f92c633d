package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	paginationpkg "github.com/kaanagas/kaanagas-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []models.Notification
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func TestListRequiresUser(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListPassesUnreadFilter(t *testing.T) {
	var seen listNotificationsParams
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			seen = params
			return []models.Notification{{ID: uuid.New()}}, nil, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	userID := uuid.New()
	result, err := svc.List(context.Background(), ListParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Empty(t, result.Cursor)
	assert.Equal(t, userID, seen.UserID)
	assert.True(t, seen.UnreadOnly)
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestMarkReadAlreadyReadIsIdempotent(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: false}, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), uuid.New(), uuid.New()))
}

func TestMarkAllReadPropagatesErrors(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.MarkAllRead(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 4, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
