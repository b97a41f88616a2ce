package services

import (
	"context"
	"testing"
	"time"

	"fanbase_backend/internal/models"
	"fanbase_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedActiveSub(t *testing.T, store *fakeStore, userID, creatorID string) *models.Subscription {
	t.Helper()
	sub := &models.Subscription{
		UserID:        userID,
		CreatorID:     creatorID,
		PlanID:        uuid.NewString(),
		TransactionID: uuid.NewString(),
		Status:        models.SubscriptionStatusActive,
		StartDate:     time.Now().AddDate(0, 0, -5),
		EndDate:       time.Now().AddDate(0, 0, 25),
		Amount:        100000,
	}
	require.NoError(t, store.Subscriptions().Create(context.Background(), sub))
	return sub
}

func TestCancelSubscription(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewSubscriptionService(store)
	ctx := context.Background()

	sub := seedActiveSub(t, store, "user-1", "creator-1")

	require.NoError(t, svc.CancelSubscription(ctx, "user-1", sub.ID))

	got, err := store.Subscriptions().FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
}

func TestCancelSubscription_ForeignSubscriptionForbidden(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewSubscriptionService(store)

	sub := seedActiveSub(t, store, "user-1", "creator-1")

	err := svc.CancelSubscription(context.Background(), "user-2", sub.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 403, appErr.HTTPCode)
}

func TestCancelSubscription_AlreadyCancelled(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewSubscriptionService(store)
	ctx := context.Background()

	sub := seedActiveSub(t, store, "user-1", "creator-1")
	require.NoError(t, svc.CancelSubscription(ctx, "user-1", sub.ID))

	// Повторная отмена - конфликт статуса, а не успех
	err := svc.CancelSubscription(ctx, "user-1", sub.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotActive)
}

func TestCancelSubscription_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewSubscriptionService(newFakeStore())

	err := svc.CancelSubscription(context.Background(), "user-1", uuid.NewString())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestHasActiveSubscription(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	svc := NewSubscriptionService(store)
	ctx := context.Background()

	has, err := svc.HasActiveSubscription(ctx, "user-1", "creator-1")
	require.NoError(t, err)
	assert.False(t, has)

	seedActiveSub(t, store, "user-1", "creator-1")

	has, err = svc.HasActiveSubscription(ctx, "user-1", "creator-1")
	require.NoError(t, err)
	assert.True(t, has)
}
