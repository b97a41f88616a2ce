package services

import (
	"context"
	"errors"

	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"
)

type SubscriptionService interface {
	GetUserSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID string) error
	HasActiveSubscription(ctx context.Context, userID, creatorID string) (bool, error)
}

type subscriptionService struct {
	store repositories.Store
}

func NewSubscriptionService(store repositories.Store) SubscriptionService {
	return &subscriptionService{store: store}
}

func (s *subscriptionService) GetUserSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	subs, err := s.store.Subscriptions().FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return subs, nil
}

// CancelSubscription - немедленная отмена пользователем своей подписки
func (s *subscriptionService) CancelSubscription(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.store.Subscriptions().FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return apperrors.ErrNotFound(err, "subscription", "Subscription not found")
		}
		return apperrors.StorageError(err)
	}

	if sub.UserID != userID {
		return apperrors.NewForbiddenError("Subscription belongs to another user")
	}
	if sub.Status != models.SubscriptionStatusActive {
		return apperrors.ErrSubscriptionNotActive
	}

	if err := s.store.Subscriptions().Cancel(ctx, subscriptionID); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			// Уже отменена или истекла между чтением и апдейтом
			return apperrors.ErrSubscriptionNotActive
		}
		return apperrors.StorageError(err)
	}
	return nil
}

func (s *subscriptionService) HasActiveSubscription(ctx context.Context, userID, creatorID string) (bool, error) {
	has, err := s.store.Subscriptions().HasActive(ctx, userID, creatorID)
	if err != nil {
		return false, apperrors.StorageError(err)
	}
	return has, nil
}
