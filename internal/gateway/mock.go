package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fanbase_backend/internal/config"
	"fanbase_backend/internal/logger"
)

// mockClient - детерминированный шлюз для режима disabled.
// Любой checkout "оплачивается" мгновенно: GetStatus по известному
// заказу отвечает settlement/accept. Используется только в локальной
// разработке, его выбор логируется при старте.
type mockClient struct {
	mu     sync.Mutex
	orders map[string]float64
}

func newMockClient() *mockClient {
	return &mockClient{orders: make(map[string]float64)}
}

func (c *mockClient) Mode() config.GatewayMode {
	return config.GatewayModeDisabled
}

func (c *mockClient) CreateTransaction(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	c.mu.Lock()
	c.orders[req.OrderID] = req.GrossAmount
	c.mu.Unlock()

	logger.CtxWarn(ctx, "mock gateway: charge created, payment is NOT real", "order_id", req.OrderID)

	return &ChargeResponse{
		Token:       "mock-token-" + req.OrderID,
		RedirectURL: "https://mock.gateway.local/pay/" + req.OrderID,
	}, nil
}

func (c *mockClient) GetStatus(ctx context.Context, orderID string) (*StatusResponse, error) {
	c.mu.Lock()
	amount, ok := c.orders[orderID]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("mock gateway: unknown order %s", orderID)
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	return &StatusResponse{
		OrderID:           orderID,
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		PaymentType:       "mock",
		GrossAmount:       fmt.Sprintf("%.2f", amount),
		StatusCode:        "200",
		TransactionTime:   now,
		SettlementTime:    now,
	}, nil
}
