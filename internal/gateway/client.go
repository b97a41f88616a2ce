package gateway

import (
	"context"
	"errors"
	"fmt"

	"fanbase_backend/internal/config"
	"fanbase_backend/internal/logger"
)

var ErrGatewayDisabled = errors.New("gateway is disabled")

// ChargeRequest - запрос на создание платежа в шлюзе
type ChargeRequest struct {
	OrderID       string
	GrossAmount   float64
	CustomerName  string
	CustomerEmail string
	ItemName      string
}

// ChargeResponse - Snap-токен и ссылка на страницу оплаты
type ChargeResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// StatusResponse - ответ шлюза на запрос статуса транзакции (pull-модель)
type StatusResponse struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	StatusCode        string `json:"status_code"`
	TransactionTime   string `json:"transaction_time"`
	SettlementTime    string `json:"settlement_time"`
	SignatureKey      string `json:"signature_key"`
}

// Client - интерфейс платежного шлюза. Внедряется явно:
// в тестах подменяется фейком без манипуляций с окружением.
type Client interface {
	CreateTransaction(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
	GetStatus(ctx context.Context, orderID string) (*StatusResponse, error)
	Mode() config.GatewayMode
}

// NewClient выбирает реализацию по явному режиму из конфигурации.
// Выбор всегда логируется: режим шлюза меняет семантику доверия,
// молчаливая подмена недопустима.
func NewClient(cfg *config.Config) (Client, error) {
	mode := cfg.Midtrans.Mode
	switch mode {
	case config.GatewayModeLive, config.GatewayModeSandbox:
		logger.Info("Payment gateway initialized", "provider", "midtrans", "mode", string(mode))
		return newMidtransClient(cfg), nil
	case config.GatewayModeDisabled:
		logger.Warn("⚠️  Payment gateway is DISABLED: using mock client, payments are NOT real",
			"mode", string(mode))
		return newMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", mode)
	}
}
