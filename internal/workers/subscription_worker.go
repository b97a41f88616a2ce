package workers

import (
	"context"
	"time"

	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/repositories"
)

// SubscriptionWorker - фоновая зачистка истекших подписок.
// Страховка на случай, когда пользователь не заходит и поллинг
// его подписку не трогает: active -> expired по end_date.
type SubscriptionWorker struct {
	store    repositories.Store
	interval time.Duration
}

func NewSubscriptionWorker(store repositories.Store) *SubscriptionWorker {
	return &SubscriptionWorker{
		store:    store,
		interval: time.Hour,
	}
}

// Start запускает фоновые задачи для подписок
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireOverdueLoop(ctx)
}

func (w *SubscriptionWorker) expireOverdueLoop(ctx context.Context) {
	// Первый проход сразу: после рестарта не ждем час
	w.expireOverdue(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Subscription worker stopped")
			return
		case <-ticker.C:
			w.expireOverdue(ctx)
		}
	}
}

func (w *SubscriptionWorker) expireOverdue(ctx context.Context) {
	expired, err := w.store.Subscriptions().ExpireOverdue(ctx, time.Now())
	logger.WorkerLog("subscription", "expire_overdue", err)
	if err == nil && expired > 0 {
		logger.Info("Marked subscriptions as expired", "count", expired)
	}
}
