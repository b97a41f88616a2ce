package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fanbase_backend/internal/config"
	"fanbase_backend/internal/gateway"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// In-memory Store: та же семантика, что у Postgres-индексов
// ============================================================================

type fakeStore struct {
	mu    sync.Mutex
	users map[string]models.User
	plans map[string]models.Plan
	trxs  map[string]models.Transaction
	subs  map[string]models.Subscription

	// Хук перед созданием подписки: для симуляции конкурентного дубля
	beforeCreateSub func(f *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]models.User),
		plans: make(map[string]models.Plan),
		trxs:  make(map[string]models.Transaction),
		subs:  make(map[string]models.Subscription),
	}
}

func (f *fakeStore) Users() repositories.UserRepository                 { return &fakeUsers{f} }
func (f *fakeStore) Plans() repositories.PlanRepository                 { return &fakePlans{f} }
func (f *fakeStore) Posts() repositories.PostRepository                 { return nil }
func (f *fakeStore) Transactions() repositories.TransactionRepository   { return &fakeTrxs{f} }
func (f *fakeStore) Subscriptions() repositories.SubscriptionRepository { return &fakeSubs{f} }

func (f *fakeStore) Atomic(ctx context.Context, fn func(repositories.Store) error) error {
	return fn(f)
}

type fakeUsers struct{ f *fakeStore }

func (r *fakeUsers) Create(ctx context.Context, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.f.users[user.ID] = *user
	return nil
}

func (r *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUsers) FindCreators(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUsers) Update(ctx context.Context, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.users[user.ID] = *user
	return nil
}

type fakePlans struct{ f *fakeStore }

func (r *fakePlans) Create(ctx context.Context, plan *models.Plan) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	r.f.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlans) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	return &p, nil
}

func (r *fakePlans) FindByCreator(ctx context.Context, creatorID string, activeOnly bool) ([]models.Plan, error) {
	return nil, nil
}

func (r *fakePlans) Update(ctx context.Context, plan *models.Plan) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlans) Deactivate(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.plans[id]
	if !ok {
		return repositories.ErrPlanNotFound
	}
	p.IsActive = false
	r.f.plans[id] = p
	return nil
}

type fakeTrxs struct{ f *fakeStore }

func (r *fakeTrxs) Create(ctx context.Context, trx *models.Transaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if trx.ID == "" {
		trx.ID = uuid.NewString()
	}
	for _, t := range r.f.trxs {
		if t.OrderID == trx.OrderID {
			return repositories.ErrDuplicate
		}
	}
	r.f.trxs[trx.ID] = *trx
	return nil
}

func (r *fakeTrxs) FindByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, t := range r.f.trxs {
		if t.OrderID == orderID {
			t := t
			// Preload связей, как делает реальный репозиторий
			t.User = r.f.users[t.UserID]
			t.Creator = r.f.users[t.CreatorID]
			t.Plan = r.f.plans[t.PlanID]
			return &t, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakeTrxs) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.trxs[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return &t, nil
}

func (r *fakeTrxs) FindByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Transaction
	for _, t := range r.f.trxs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTrxs) Update(ctx context.Context, trx *models.Transaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.trxs[trx.ID]; !ok {
		return repositories.ErrTransactionNotFound
	}
	stored := *trx
	stored.User = models.User{}
	stored.Creator = models.User{}
	stored.Plan = models.Plan{}
	r.f.trxs[trx.ID] = stored
	return nil
}

type fakeSubs struct{ f *fakeStore }

// Create повторяет поведение уникальных индексов базы:
// не более одной подписки на транзакцию, не более одной
// active-подписки на пару (user, creator).
func (r *fakeSubs) Create(ctx context.Context, sub *models.Subscription) error {
	if r.f.beforeCreateSub != nil {
		hook := r.f.beforeCreateSub
		r.f.beforeCreateSub = nil
		hook(r.f)
	}

	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.subs {
		if s.TransactionID == sub.TransactionID {
			return repositories.ErrDuplicate
		}
		if s.Status == models.SubscriptionStatusActive &&
			sub.Status == models.SubscriptionStatusActive &&
			s.UserID == sub.UserID && s.CreatorID == sub.CreatorID {
			return repositories.ErrDuplicate
		}
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	r.f.subs[sub.ID] = *sub
	return nil
}

func (r *fakeSubs) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.subs[id]
	if !ok {
		return nil, repositories.ErrSubscriptionNotFound
	}
	return &s, nil
}

func (r *fakeSubs) FindByTransactionID(ctx context.Context, transactionID string) (*models.Subscription, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.subs {
		if s.TransactionID == transactionID {
			s := s
			return &s, nil
		}
	}
	return nil, repositories.ErrSubscriptionNotFound
}

func (r *fakeSubs) FindActiveByUserAndCreator(ctx context.Context, userID, creatorID string) (*models.Subscription, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.subs {
		if s.UserID == userID && s.CreatorID == creatorID && s.Status == models.SubscriptionStatusActive {
			s := s
			return &s, nil
		}
	}
	return nil, repositories.ErrSubscriptionNotFound
}

func (r *fakeSubs) FindByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Subscription
	for _, s := range r.f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubs) HasActive(ctx context.Context, userID, creatorID string) (bool, error) {
	_, err := r.FindActiveByUserAndCreator(ctx, userID, creatorID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeSubs) CountActiveByCreator(ctx context.Context, creatorID string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, s := range r.f.subs {
		if s.CreatorID == creatorID && s.Status == models.SubscriptionStatusActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubs) Cancel(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.subs[id]
	if !ok || s.Status != models.SubscriptionStatusActive {
		return repositories.ErrSubscriptionNotFound
	}
	now := time.Now()
	s.Status = models.SubscriptionStatusCancelled
	s.CancelledAt = &now
	r.f.subs[id] = s
	return nil
}

func (r *fakeSubs) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for id, s := range r.f.subs {
		if s.Status == models.SubscriptionStatusActive && s.EndDate.Before(now) {
			s.Status = models.SubscriptionStatusExpired
			r.f.subs[id] = s
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Фейковый шлюз
// ============================================================================

type fakeGateway struct {
	chargeResp *gateway.ChargeResponse
	chargeErr  error
	statusResp *gateway.StatusResponse
	statusErr  error
}

func (g *fakeGateway) CreateTransaction(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	if g.chargeResp != nil {
		return g.chargeResp, nil
	}
	return &gateway.ChargeResponse{Token: "snap-token", RedirectURL: "https://pay.test/" + req.OrderID}, nil
}

func (g *fakeGateway) GetStatus(ctx context.Context, orderID string) (*gateway.StatusResponse, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusResp, nil
}

func (g *fakeGateway) Mode() config.GatewayMode { return config.GatewayModeSandbox }

// ============================================================================
// Сборка окружения
// ============================================================================

const testServerKey = "test-server-key"

type paymentEnv struct {
	store   *fakeStore
	gw      *fakeGateway
	svc     PaymentService
	payer   *models.User
	creator *models.User
	plan    *models.Plan
	trx     *models.Transaction
}

func newPaymentEnv(t *testing.T, serverKey string) *paymentEnv {
	t.Helper()
	ctx := context.Background()
	store := newFakeStore()

	payer := &models.User{Name: "Payer", Email: "payer@test.dev", Role: models.UserRoleUser, Status: models.UserStatusActive}
	creator := &models.User{Name: "Creator", DisplayName: "The Creator", Email: "creator@test.dev", Role: models.UserRoleCreator, Status: models.UserStatusActive}
	require.NoError(t, store.Users().Create(ctx, payer))
	require.NoError(t, store.Users().Create(ctx, creator))

	plan := &models.Plan{
		CreatorID: creator.ID,
		Name:      "Gold",
		Price:     100000,
		Currency:  "IDR",
		Interval:  models.PlanIntervalMonthly,
		IsActive:  true,
	}
	require.NoError(t, store.Plans().Create(ctx, plan))

	trx := &models.Transaction{
		OrderID:   "ORDER-test-1",
		UserID:    payer.ID,
		CreatorID: creator.ID,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Status:    models.TransactionStatusPending,
	}
	require.NoError(t, store.Transactions().Create(ctx, trx))

	cfg := &config.Config{}
	cfg.Midtrans.Mode = config.GatewayModeSandbox
	cfg.Midtrans.ServerKey = serverKey

	gw := &fakeGateway{}
	svc := NewPaymentService(store, gw, cfg, nil)

	return &paymentEnv{store: store, gw: gw, svc: svc, payer: payer, creator: creator, plan: plan, trx: trx}
}

func signedNotification(env *paymentEnv, status string) *models.GatewayNotification {
	n := &models.GatewayNotification{
		OrderID:           env.trx.OrderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       "100000.00",
		FraudStatus:       "accept",
		PaymentType:       "qris",
		SettlementTime:    "2024-02-01 12:00:00",
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
	return n
}

// ============================================================================
// Push-путь
// ============================================================================

func TestHandleNotification_SettlementProvisionsSubscription(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	ack, err := env.svc.HandleNotification(ctx, signedNotification(env, "settlement"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, ack.Status)
	assert.Equal(t, env.trx.OrderID, ack.OrderID)

	trx, err := env.store.Transactions().FindByOrderID(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, trx.Status)
	require.NotNil(t, trx.PaymentMethod)
	assert.Equal(t, "qris", *trx.PaymentMethod)
	require.NotNil(t, trx.PaymentDate)
	assert.NotEmpty(t, trx.RawPayload)

	sub, err := env.store.Subscriptions().FindByTransactionID(ctx, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, env.payer.ID, sub.UserID)
	assert.Equal(t, env.creator.ID, sub.CreatorID)
	assert.Equal(t, 100000.0, sub.Amount)
	// monthly: конец периода через календарный месяц
	assert.Equal(t, PeriodEnd(sub.StartDate, models.PlanIntervalMonthly), sub.EndDate)
}

func TestHandleNotification_ReplayIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	n := signedNotification(env, "settlement")

	_, err := env.svc.HandleNotification(ctx, n)
	require.NoError(t, err)

	// Повтор того же уведомления: снова 2xx, вторая подписка не создается
	ack, err := env.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, ack.Status)

	assert.Len(t, env.store.subs, 1)
}

func TestHandleNotification_InvalidSignatureRejectedBeforeMutation(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	n := signedNotification(env, "settlement")
	n.SignatureKey = "forged"

	_, err := env.svc.HandleNotification(ctx, n)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeSignatureInvalid, appErr.Code)
	assert.Equal(t, 403, appErr.HTTPCode)

	// Состояние нетронуто: транзакция pending, подписок нет
	trx, err := env.store.Transactions().FindByOrderID(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, trx.Status)
	assert.Nil(t, trx.PaymentDate)
	assert.Empty(t, env.store.subs)
}

func TestHandleNotification_UnknownOrderRejected(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	n := &models.GatewayNotification{
		OrderID:           "ORDER-nonexistent",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "100000.00",
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)

	_, err := env.svc.HandleNotification(ctx, n)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)

	// Транзакции из вебхуков не создаются
	assert.Len(t, env.store.trxs, 1)
	assert.Empty(t, env.store.subs)
}

func TestHandleNotification_MissingRequiredFields(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)

	_, err := env.svc.HandleNotification(context.Background(), &models.GatewayNotification{OrderID: "ORDER-test-1"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestHandleNotification_FraudHoldSkipsProvisioning(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	n := signedNotification(env, "capture")
	n.FraudStatus = "challenge"

	ack, err := env.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCapture, ack.Status)

	// Статус записан, но подписка не выдана
	trx, _ := env.store.Transactions().FindByOrderID(ctx, env.trx.OrderID)
	assert.Equal(t, models.TransactionStatusCapture, trx.Status)
	assert.Empty(t, env.store.subs)
}

func TestHandleNotification_FailureStatusNoProvisioning(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	for _, status := range []string{"deny", "cancel", "expire"} {
		n := signedNotification(env, status)

		ack, err := env.svc.HandleNotification(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatus(status), ack.Status)
	}

	assert.Empty(t, env.store.subs)
}

func TestHandleNotification_LenientModeWithoutServerKey(t *testing.T) {
	t.Parallel()
	// Ключ не сконфигурирован: проверка подписи пропускается (громко),
	// уведомление обрабатывается
	env := newPaymentEnv(t, "")
	ctx := context.Background()

	n := signedNotification(env, "settlement")
	n.SignatureKey = ""

	ack, err := env.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, ack.Status)
	assert.Len(t, env.store.subs, 1)
}

func TestHandleNotification_GrossAmountIsAuthoritative(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	n := signedNotification(env, "settlement")
	n.GrossAmount = "150000.00"
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)

	_, err := env.svc.HandleNotification(ctx, n)
	require.NoError(t, err)

	sub, err := env.store.Subscriptions().FindByTransactionID(ctx, env.trx.ID)
	require.NoError(t, err)
	// Списано шлюзом, а не прайс плана
	assert.Equal(t, 150000.0, sub.Amount)
}

func TestHandleNotification_ExistingActiveSubscriptionReused(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	// Активная подписка на того же создателя из более ранней транзакции
	existing := &models.Subscription{
		UserID:        env.payer.ID,
		CreatorID:     env.creator.ID,
		PlanID:        env.plan.ID,
		TransactionID: uuid.NewString(),
		Status:        models.SubscriptionStatusActive,
		StartDate:     time.Now().AddDate(0, 0, -5),
		EndDate:       time.Now().AddDate(0, 0, 25),
		Amount:        100000,
	}
	require.NoError(t, env.store.Subscriptions().Create(ctx, existing))

	_, err := env.svc.HandleNotification(ctx, signedNotification(env, "settlement"))
	require.NoError(t, err)

	// Вторая active-подписка на пару (user, creator) не появилась
	assert.Len(t, env.store.subs, 1)
}

func TestHandleNotification_ConcurrentDuplicateLosesRaceGracefully(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	// Конкурент вставляет подписку между check и create
	env.store.beforeCreateSub = func(f *fakeStore) {
		winner := models.Subscription{
			BaseModel:     models.BaseModel{ID: uuid.NewString()},
			UserID:        env.payer.ID,
			CreatorID:     env.creator.ID,
			PlanID:        env.plan.ID,
			TransactionID: env.trx.ID,
			Status:        models.SubscriptionStatusActive,
			StartDate:     time.Now(),
			EndDate:       time.Now().AddDate(0, 1, 0),
			Amount:        100000,
		}
		f.mu.Lock()
		f.subs[winner.ID] = winner
		f.mu.Unlock()
	}

	// Проигравший дубль - тоже успех: 2xx и ровно одна подписка
	ack, err := env.svc.HandleNotification(ctx, signedNotification(env, "settlement"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, ack.Status)
	assert.Len(t, env.store.subs, 1)
}

func TestHandleNotification_ParallelDuplicateDeliveries(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	// Шлюз ретраит агрессивно: одно settlement-уведомление может
	// прилететь несколькими параллельными доставками
	const deliveries = 8
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.HandleNotification(ctx, signedNotification(env, "settlement"))
		}(i)
	}
	wg.Wait()

	// Каждая доставка получает 2xx, подписка ровно одна
	for _, err := range errs {
		require.NoError(t, err)
	}
	trx, err := env.store.Transactions().FindByOrderID(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, trx.Status)
	assert.Len(t, env.store.subs, 1)
}

// ============================================================================
// Checkout
// ============================================================================

func TestCheckout_CreatesPendingTransactionAndCharge(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	resp, err := env.svc.Checkout(ctx, env.payer.ID, &models.CheckoutRequest{PlanID: env.plan.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "snap-token", resp.Token)
	assert.Equal(t, env.plan.Price, resp.Amount)

	trx, err := env.store.Transactions().FindByOrderID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, trx.Status)
}

func TestCheckout_InactivePlanRejected(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	require.NoError(t, env.store.Plans().Deactivate(ctx, env.plan.ID))

	_, err := env.svc.Checkout(ctx, env.payer.ID, &models.CheckoutRequest{PlanID: env.plan.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPlanInactive)
}

func TestCheckout_OwnPlanRejected(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)

	_, err := env.svc.Checkout(context.Background(), env.creator.ID, &models.CheckoutRequest{PlanID: env.plan.ID})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestCheckout_GatewayFailureLeavesPendingTransaction(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	env.gw.chargeErr = context.DeadlineExceeded

	_, err := env.svc.Checkout(ctx, env.payer.ID, &models.CheckoutRequest{PlanID: env.plan.ID})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeGatewayError, appErr.Code)

	// Транзакция создана и осталась pending: seed + новая
	assert.Len(t, env.store.trxs, 2)
}

// ============================================================================
// Pull-путь
// ============================================================================

func TestCheckStatus_ReconcilesWhenGatewayDisagrees(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	env.gw.statusResp = &gateway.StatusResponse{
		OrderID:           env.trx.OrderID,
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		PaymentType:       "gopay",
		GrossAmount:       "100000.00",
		SettlementTime:    "2024-02-01 12:00:00",
	}

	resp, err := env.svc.CheckStatus(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusSettlement, resp.Status)
	assert.True(t, resp.SubscriptionCreated)
	assert.NotEmpty(t, resp.SubscriptionID)

	// Тот же reconcile, что и на push-пути
	sub, err := env.store.Subscriptions().FindByTransactionID(ctx, env.trx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestCheckStatus_GatewayDownServesStoredState(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	env.gw.statusErr = context.DeadlineExceeded

	resp, err := env.svc.CheckStatus(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)
	assert.False(t, resp.SubscriptionCreated)
	assert.Empty(t, env.store.subs)
}

func TestCheckStatus_NoChangeNoWrite(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)
	ctx := context.Background()

	env.gw.statusResp = &gateway.StatusResponse{
		OrderID:           env.trx.OrderID,
		TransactionStatus: "pending",
	}

	resp, err := env.svc.CheckStatus(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)

	// Статусы совпали: транзакция не перезаписывалась
	trx, err := env.store.Transactions().FindByOrderID(ctx, env.trx.OrderID)
	require.NoError(t, err)
	assert.Empty(t, trx.RawPayload)
	assert.Nil(t, trx.PaymentDate)
}

func TestCheckStatus_UnknownOrder(t *testing.T) {
	t.Parallel()
	env := newPaymentEnv(t, testServerKey)

	_, err := env.svc.CheckStatus(context.Background(), "ORDER-missing")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

// ============================================================================
// parseGatewayTime
// ============================================================================

func TestParseGatewayTime(t *testing.T) {
	t.Parallel()

	got := parseGatewayTime("2024-02-01 12:00:00", "2024-02-01 11:59:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC), *got)

	// settlement_time отсутствует - берем transaction_time
	got = parseGatewayTime("", "2024-02-01 11:59:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.February, 1, 11, 59, 0, 0, time.UTC), *got)

	// Времени нет вовсе - nil, прежний PaymentDate не перезаписывается
	assert.Nil(t, parseGatewayTime("", ""))
	assert.Nil(t, parseGatewayTime("garbage", "also-garbage"))
}
