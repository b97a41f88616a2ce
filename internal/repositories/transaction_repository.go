package repositories

import (
	"context"

	"fanbase_backend/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, trx *models.Transaction) error

	// FindByOrderID грузит транзакцию со связями (User, Creator, Plan).
	// OrderID - ключ идемпотентности при сверке с шлюзом.
	FindByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByUser(ctx context.Context, userID string) ([]models.Transaction, error)

	Update(ctx context.Context, trx *models.Transaction) error
}

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) Create(ctx context.Context, trx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(trx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	var trx models.Transaction
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Creator").
		Preload("Plan").
		First(&trx, "order_id = ?", orderID).Error
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &trx, nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var trx models.Transaction
	err := r.db.WithContext(ctx).First(&trx, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &trx, nil
}

func (r *transactionRepository) FindByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var trxs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trxs).Error
	if err != nil {
		return nil, err
	}
	return trxs, nil
}

func (r *transactionRepository) Update(ctx context.Context, trx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Save(trx).Error, ErrTransactionNotFound)
}
