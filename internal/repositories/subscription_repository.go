package repositories

import (
	"context"
	"time"

	"fanbase_backend/internal/models"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	// Create возвращает ErrDuplicate при нарушении любого из двух
	// уникальных индексов (transaction_id; активная пара user+creator).
	Create(ctx context.Context, sub *models.Subscription) error

	FindByID(ctx context.Context, id string) (*models.Subscription, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Subscription, error)
	FindActiveByUserAndCreator(ctx context.Context, userID, creatorID string) (*models.Subscription, error)
	FindByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	HasActive(ctx context.Context, userID, creatorID string) (bool, error)
	CountActiveByCreator(ctx context.Context, creatorID string) (int64, error)

	Cancel(ctx context.Context, id string) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return translate(r.db.WithContext(ctx).Create(sub).Error, ErrSubscriptionNotFound)
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "transaction_id = ?", transactionID).Error
	if err != nil {
		return nil, translate(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

// Найти активную подписку пользователя на конкретного создателя
func (r *subscriptionRepository) FindActiveByUserAndCreator(ctx context.Context, userID, creatorID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND creator_id = ? AND status = ?", userID, creatorID, models.SubscriptionStatusActive).
		First(&sub).Error
	if err != nil {
		return nil, translate(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Preload("Creator").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) HasActive(ctx context.Context, userID, creatorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND creator_id = ? AND status = ? AND end_date > NOW()",
			userID, creatorID, models.SubscriptionStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) CountActiveByCreator(ctx context.Context, creatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("creator_id = ? AND status = ?", creatorID, models.SubscriptionStatusActive).
		Count(&count).Error
	return count, err
}

// Cancel - немедленная отмена по инициативе пользователя
func (r *subscriptionRepository) Cancel(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"cancelled_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ExpireOverdue помечает истекшие подписки. Только active -> expired:
// фоновая зачистка не должна трогать cancelled и гонки с продлением.
func (r *subscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}
