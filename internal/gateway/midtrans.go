package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fanbase_backend/internal/config"
)

const (
	snapBaseLive    = "https://app.midtrans.com"
	snapBaseSandbox = "https://app.sandbox.midtrans.com"
	coreBaseLive    = "https://api.midtrans.com"
	coreBaseSandbox = "https://api.sandbox.midtrans.com"

	// Запросы к шлюзу всегда с ограниченным таймаутом:
	// зависший poll не должен держать обработчик запроса.
	requestTimeout = 10 * time.Second
)

// midtransClient - HTTP-клиент Snap API (checkout) и Core API (статусы)
type midtransClient struct {
	serverKey string
	snapBase  string
	coreBase  string
	mode      config.GatewayMode
	http      *http.Client
}

func newMidtransClient(cfg *config.Config) *midtransClient {
	snapBase := snapBaseSandbox
	coreBase := coreBaseSandbox
	if cfg.Midtrans.Mode == config.GatewayModeLive {
		snapBase = snapBaseLive
		coreBase = coreBaseLive
	}

	return &midtransClient{
		serverKey: cfg.Midtrans.ServerKey,
		snapBase:  snapBase,
		coreBase:  coreBase,
		mode:      cfg.Midtrans.Mode,
		http:      &http.Client{Timeout: requestTimeout},
	}
}

func (c *midtransClient) Mode() config.GatewayMode {
	return c.mode
}

// CreateTransaction создает Snap-транзакцию и возвращает токен
// и redirect_url страницы оплаты.
func (c *midtransClient) CreateTransaction(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	body := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     req.OrderID,
			"gross_amount": req.GrossAmount,
		},
		"item_details": []map[string]interface{}{
			{
				"id":       req.OrderID,
				"name":     req.ItemName,
				"price":    req.GrossAmount,
				"quantity": 1,
			},
		},
		"customer_details": map[string]interface{}{
			"first_name": req.CustomerName,
			"email":      req.CustomerEmail,
		},
	}

	var resp ChargeResponse
	if err := c.do(ctx, http.MethodPost, c.snapBase+"/snap/v1/transactions", body, &resp); err != nil {
		return nil, fmt.Errorf("midtrans snap charge: %w", err)
	}
	return &resp, nil
}

// GetStatus запрашивает текущий статус транзакции у Core API
func (c *midtransClient) GetStatus(ctx context.Context, orderID string) (*StatusResponse, error) {
	var resp StatusResponse
	url := fmt.Sprintf("%s/v2/%s/status", c.coreBase, orderID)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("midtrans status query: %w", err)
	}
	return &resp, nil
}

func (c *midtransClient) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	// Basic auth: server key как username, пароль пустой
	req.SetBasicAuth(c.serverKey, "")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("gateway returned %d: %s", res.StatusCode, string(raw))
	}

	return json.NewDecoder(res.Body).Decode(out)
}
