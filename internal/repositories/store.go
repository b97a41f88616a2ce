package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrDuplicate - нарушение уникального индекса. Provisioner
	// превращает его в идемпотентный no-op, см. payment_service.
	ErrDuplicate = errors.New("duplicate record")
)

// Store объединяет все репозитории и атомарный блок работы.
//
// Atomic исполняет fn в одной database-транзакции: все репозитории,
// полученные из переданного Store, работают через нее. Снаружи
// наблюдаемы только оба эффекта вместе или ни одного.
type Store interface {
	Users() UserRepository
	Plans() PlanRepository
	Posts() PostRepository
	Transactions() TransactionRepository
	Subscriptions() SubscriptionRepository

	Atomic(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore создает Store поверх GORM-подключения
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *gormStore) Plans() PlanRepository                 { return &planRepository{db: s.db} }
func (s *gormStore) Posts() PostRepository                 { return &postRepository{db: s.db} }
func (s *gormStore) Transactions() TransactionRepository   { return &transactionRepository{db: s.db} }
func (s *gormStore) Subscriptions() SubscriptionRepository { return &subscriptionRepository{db: s.db} }

func (s *gormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate приводит ошибки GORM к сентинелам пакета
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
