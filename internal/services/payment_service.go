package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"fanbase_backend/internal/config"
	"fanbase_backend/internal/gateway"
	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/mailer"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Формат времени в уведомлениях Midtrans
const gatewayTimeLayout = "2006-01-02 15:04:05"

type PaymentService interface {
	// Checkout создает pending-транзакцию и платеж в шлюзе
	Checkout(ctx context.Context, userID string, req *models.CheckoutRequest) (*models.CheckoutResponse, error)

	// HandleNotification - push-путь: вебхук шлюза
	HandleNotification(ctx context.Context, payload *models.GatewayNotification) (*models.NotificationAck, error)

	// CheckStatus - pull-путь: клиентский поллинг статуса
	CheckStatus(ctx context.Context, orderID string) (*models.TransactionStatusResponse, error)

	History(ctx context.Context, userID string) ([]models.Transaction, error)
}

type paymentService struct {
	store repositories.Store
	gw    gateway.Client
	cfg   *config.Config
	mail  *mailer.Mailer // может быть nil (письма отключены)
}

func NewPaymentService(store repositories.Store, gw gateway.Client, cfg *config.Config, mail *mailer.Mailer) PaymentService {
	return &paymentService{store: store, gw: gw, cfg: cfg, mail: mail}
}

// ============================================================================
// Checkout
// ============================================================================

func (s *paymentService) Checkout(ctx context.Context, userID string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	plan, err := s.store.Plans().FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrNotFound(err, "plan", "Plan not found")
		}
		return nil, apperrors.StorageError(err)
	}
	if !plan.IsActive {
		return nil, apperrors.ErrPlanInactive
	}
	if plan.CreatorID == userID {
		return nil, apperrors.ErrInvalidOperation("payment", "Cannot subscribe to your own plan")
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "user", "User not found")
		}
		return nil, apperrors.StorageError(err)
	}

	// OrderID назначается один раз и больше никогда не меняется:
	// это ключ сверки всех последующих уведомлений шлюза.
	trx := &models.Transaction{
		OrderID:   "ORDER-" + uuid.NewString(),
		UserID:    user.ID,
		CreatorID: plan.CreatorID,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Status:    models.TransactionStatusPending,
	}
	if err := s.store.Transactions().Create(ctx, trx); err != nil {
		return nil, apperrors.StorageError(err)
	}

	charge, err := s.gw.CreateTransaction(ctx, &gateway.ChargeRequest{
		OrderID:       trx.OrderID,
		GrossAmount:   trx.Amount,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		ItemName:      plan.Name,
	})
	if err != nil {
		// Транзакция остается pending; шлюз про нее не знает,
		// уведомлений по ней не будет
		return nil, apperrors.GatewayError(err)
	}

	logger.CtxInfo(ctx, "checkout created", "order_id", trx.OrderID, "plan_id", plan.ID, "amount", trx.Amount)

	return &models.CheckoutResponse{
		TransactionID: trx.ID,
		OrderID:       trx.OrderID,
		Amount:        trx.Amount,
		Token:         charge.Token,
		RedirectURL:   charge.RedirectURL,
	}, nil
}

// ============================================================================
// Push-путь: вебхук
// ============================================================================

func (s *paymentService) HandleNotification(ctx context.Context, p *models.GatewayNotification) (*models.NotificationAck, error) {
	// Шаг 1: обязательные поля. Обычно уже отловлено валидатором на
	// границе, но сервис не полагается на это.
	if p.OrderID == "" || p.TransactionStatus == "" {
		return nil, apperrors.ValidationError(map[string]string{
			"order_id":           "required",
			"transaction_status": "required",
		})
	}

	// Шаг 2: подпись. Единственная защита от поддельных подтверждений.
	serverKey := s.cfg.Midtrans.ServerKey
	switch {
	case serverKey != "" && p.SignatureKey != "":
		if !gateway.VerifySignature(p.OrderID, p.StatusCode, p.GrossAmount, serverKey, p.SignatureKey) {
			logger.SecurityLog("webhook_signature_mismatch", "order_id", p.OrderID)
			return nil, apperrors.NewSignatureError(p.OrderID)
		}
	case serverKey == "":
		// Lenient-режим только для sandbox/disabled без ключа.
		// Пропуск проверки всегда громкий, никогда не молчаливый.
		logger.CtxWarn(ctx, "⚠️  webhook signature verification SKIPPED: no server key configured",
			"order_id", p.OrderID, "gateway_mode", string(s.cfg.Midtrans.Mode))
	}

	raw, _ := json.Marshal(p)

	var ack *models.NotificationAck
	var created bool
	var sub *models.Subscription
	var payer *models.User

	// Шаги 3-7: одна атомарная единица работы. Обновление транзакции
	// и создание подписки наблюдаемы только вместе. Откат безопасен:
	// шлюз повторит доставку, обработка идемпотентна.
	err := s.store.Atomic(ctx, func(st repositories.Store) error {
		trx, err := st.Transactions().FindByOrderID(ctx, p.OrderID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				// Вебхук по неизвестному заказу: логируем и отклоняем,
				// транзакции из вебхуков не создаются
				logger.CtxWarn(ctx, "webhook for unknown order rejected", "order_id", p.OrderID)
				return apperrors.ErrNotFound(err, "payment", "Unknown order id")
			}
			return apperrors.StorageError(err)
		}
		payer = &trx.User

		created, sub, err = s.reconcile(ctx, st, trx, reconcileInput{
			Status:      models.TransactionStatus(p.TransactionStatus),
			FraudStatus: p.FraudStatus,
			PaymentType: p.PaymentType,
			GrossAmount: p.GrossAmount,
			PaidAt:      parseGatewayTime(p.SettlementTime, p.TransactionTime),
			Raw:         raw,
		})
		if err != nil {
			return err
		}

		ack = &models.NotificationAck{
			TransactionID: trx.ID,
			OrderID:       trx.OrderID,
			Status:        trx.Status,
			Message:       "notification processed",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Квитанция - после коммита и best-effort
	if created && s.mail != nil && payer != nil {
		go s.mail.SendPaymentReceipt(payer, sub, ack.OrderID)
	}

	return ack, nil
}

// ============================================================================
// Pull-путь: поллинг статуса
// ============================================================================

func (s *paymentService) CheckStatus(ctx context.Context, orderID string) (*models.TransactionStatusResponse, error) {
	trx, err := s.store.Transactions().FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrNotFound(err, "payment", "Transaction not found")
		}
		return nil, apperrors.StorageError(err)
	}

	// Pull-модель дополняет push: опрашиваем шлюз и, если статус
	// разошелся, прогоняем ту же reconcile, что и вебхук, в той же
	// атомарной единице работы.
	qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	remote, err := s.gw.GetStatus(qctx, orderID)
	if err != nil {
		// Шлюз недоступен: отдаем последнее известное состояние,
		// транзакцию не трогаем
		logger.CtxWarn(ctx, "gateway status query failed, serving stored status",
			"order_id", orderID, "error", err)
	} else if models.TransactionStatus(remote.TransactionStatus) != trx.Status {
		raw, _ := json.Marshal(remote)
		err = s.store.Atomic(ctx, func(st repositories.Store) error {
			fresh, err := st.Transactions().FindByOrderID(ctx, orderID)
			if err != nil {
				return apperrors.StorageError(err)
			}
			_, _, err = s.reconcile(ctx, st, fresh, reconcileInput{
				Status:      models.TransactionStatus(remote.TransactionStatus),
				FraudStatus: remote.FraudStatus,
				PaymentType: remote.PaymentType,
				GrossAmount: remote.GrossAmount,
				PaidAt:      parseGatewayTime(remote.SettlementTime, remote.TransactionTime),
				Raw:         raw,
			})
			if err == nil {
				trx = fresh
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	resp := &models.TransactionStatusResponse{
		ID:           trx.ID,
		OrderID:      trx.OrderID,
		Amount:       trx.Amount,
		Status:       trx.Status,
		CreatorID:    trx.CreatorID,
		CreatorName:  trx.Creator.DisplayName,
		PlanName:     trx.Plan.Name,
		PlanInterval: trx.Plan.Interval,
		UserID:       trx.UserID,
		CreatedAt:    trx.CreatedAt,
		PaymentDate:  trx.PaymentDate,
	}

	if sub, err := s.store.Subscriptions().FindByTransactionID(ctx, trx.ID); err == nil {
		resp.SubscriptionCreated = true
		resp.SubscriptionID = sub.ID
	}

	return resp, nil
}

func (s *paymentService) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	trxs, err := s.store.Transactions().FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return trxs, nil
}

// ============================================================================
// Reconcile + Provision: общая сердцевина push- и pull-пути
// ============================================================================

type reconcileInput struct {
	Status      models.TransactionStatus
	FraudStatus string
	PaymentType string
	GrossAmount string
	PaidAt      *time.Time
	Raw         datatypes.JSON
}

// reconcile применяет сообщенный шлюзом статус к транзакции.
// Вызывается ТОЛЬКО внутри Atomic.
//
// Статус, способ оплаты, дата оплаты и аудит-копия перезаписываются
// безусловно, даже если статус не изменился: повтор того же
// уведомления - no-op во всем наблюдаемом, кроме аудита.
func (s *paymentService) reconcile(ctx context.Context, st repositories.Store, trx *models.Transaction, in reconcileInput) (bool, *models.Subscription, error) {
	if !in.Status.Known() {
		logger.CtxWarn(ctx, "gateway reported unrecognized transaction status",
			"order_id", trx.OrderID, "status", string(in.Status))
	}

	trx.Status = in.Status
	if in.PaymentType != "" {
		pm := in.PaymentType
		trx.PaymentMethod = &pm
	}
	if in.PaidAt != nil {
		trx.PaymentDate = in.PaidAt
	}
	if len(in.Raw) > 0 {
		trx.RawPayload = in.Raw
	}

	if err := st.Transactions().Update(ctx, trx); err != nil {
		return false, nil, apperrors.StorageError(err)
	}

	if !in.Status.IsSuccess() {
		return false, nil, nil
	}

	// Fraud-гейт: оплата прошла, но оценка мошенничества не "accept" -
	// статус обновлен, подписка не создается, запрос не проваливаем
	if in.FraudStatus != string(models.FraudStatusAccept) {
		logger.CtxWarn(ctx, "successful payment held by fraud assessment, provisioning skipped",
			"order_id", trx.OrderID, "fraud_status", in.FraudStatus)
		return false, nil, nil
	}

	return s.provision(ctx, st, trx, in.GrossAmount)
}

// provision создает подписку ровно один раз на успешную транзакцию.
//
// Два application-уровневых чека (по транзакции и по активной паре
// user+creator) закрывают обычные повторы; уникальные индексы базы -
// финальный арбитр при гонке конкурентных дублей.
func (s *paymentService) provision(ctx context.Context, st repositories.Store, trx *models.Transaction, grossAmount string) (bool, *models.Subscription, error) {
	// Идемпотентный short-circuit: подписка уже привязана к транзакции
	if sub, err := st.Subscriptions().FindByTransactionID(ctx, trx.ID); err == nil {
		return false, sub, nil
	} else if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return false, nil, apperrors.StorageError(err)
	}

	// Уже есть активная подписка на этого создателя - вторую не создаем
	if sub, err := st.Subscriptions().FindActiveByUserAndCreator(ctx, trx.UserID, trx.CreatorID); err == nil {
		logger.CtxInfo(ctx, "active subscription already exists, reusing",
			"order_id", trx.OrderID, "subscription_id", sub.ID)
		return false, sub, nil
	} else if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return false, nil, apperrors.StorageError(err)
	}

	// Интервал берем из плана; если план не нашелся, действует
	// защитный дефолт PeriodEnd (+30 дней)
	var interval models.PlanInterval
	if plan, err := st.Plans().FindByID(ctx, trx.PlanID); err == nil {
		interval = plan.Interval
	}

	// Сумма шлюза авторитетна: фактически списано может отличаться
	// от прайса плана
	amount := trx.Amount
	if v, err := strconv.ParseFloat(grossAmount, 64); err == nil && v > 0 {
		amount = v
	}

	start := time.Now()
	sub := &models.Subscription{
		UserID:        trx.UserID,
		CreatorID:     trx.CreatorID,
		PlanID:        trx.PlanID,
		TransactionID: trx.ID,
		Status:        models.SubscriptionStatusActive,
		StartDate:     start,
		EndDate:       PeriodEnd(start, interval),
		Amount:        amount,
		AutoRenew:     true,
	}

	// Create в savepoint-е: при нарушении уникального индекса внешняя
	// единица работы остается живой и мы можем перечитать победителя
	err := st.Atomic(ctx, func(inner repositories.Store) error {
		return inner.Subscriptions().Create(ctx, sub)
	})
	if err == nil {
		logger.CtxInfo(ctx, "subscription provisioned",
			"order_id", trx.OrderID, "subscription_id", sub.ID, "end_date", sub.EndDate)
		return true, sub, nil
	}
	if !errors.Is(err, repositories.ErrDuplicate) {
		return false, nil, apperrors.StorageError(err)
	}

	// ProvisioningConflict: конкурирующий дубль выиграл гонку.
	// Это успех, а не ошибка - возвращаем существующую строку.
	logger.CtxInfo(ctx, "provisioning lost race to concurrent duplicate, reusing existing row",
		"order_id", trx.OrderID)
	if sub, ferr := st.Subscriptions().FindByTransactionID(ctx, trx.ID); ferr == nil {
		return false, sub, nil
	}
	if sub, ferr := st.Subscriptions().FindActiveByUserAndCreator(ctx, trx.UserID, trx.CreatorID); ferr == nil {
		return false, sub, nil
	}
	return false, nil, apperrors.ErrConflict(err, "subscription", "Provisioning race could not be resolved")
}

// parseGatewayTime берет settlement_time, при его отсутствии
// transaction_time. nil - времени в уведомлении нет, прежнее
// значение PaymentDate не перезаписывается.
func parseGatewayTime(settlementTime, transactionTime string) *time.Time {
	for _, v := range []string{settlementTime, transactionTime} {
		if v == "" {
			continue
		}
		if t, err := time.Parse(gatewayTimeLayout, v); err == nil {
			return &t
		}
	}
	return nil
}
