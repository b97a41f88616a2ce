package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanbase_backend/internal/auth"
	"fanbase_backend/internal/config"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/validator"
	"fanbase_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePaymentService - управляемая подмена сервиса для проверки
// маппинга ошибок сервиса на HTTP-коды
type fakePaymentService struct {
	checkoutResp *models.CheckoutResponse
	checkoutErr  error
	ack          *models.NotificationAck
	notifErr     error
	statusResp   *models.TransactionStatusResponse
	statusErr    error
	history      []models.Transaction
	historyErr   error

	lastNotification *models.GatewayNotification
}

func (f *fakePaymentService) Checkout(ctx context.Context, userID string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	return f.checkoutResp, f.checkoutErr
}

func (f *fakePaymentService) HandleNotification(ctx context.Context, p *models.GatewayNotification) (*models.NotificationAck, error) {
	f.lastNotification = p
	return f.ack, f.notifErr
}

func (f *fakePaymentService) CheckStatus(ctx context.Context, orderID string) (*models.TransactionStatusResponse, error) {
	return f.statusResp, f.statusErr
}

func (f *fakePaymentService) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return f.history, f.historyErr
}

func setupPaymentRouter(t *testing.T, svc *fakePaymentService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// JWT-конфиг для AuthMiddleware
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Midtrans.Mode = config.GatewayModeDisabled
	config.AppConfig = cfg

	base := NewBaseHandler(validator.New())
	handler := NewPaymentHandler(base, svc)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(&models.User{
		BaseModel: models.BaseModel{ID: userID},
		Role:      models.UserRoleUser,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Вебхук
// ============================================================================

func TestNotificationEndpoint_Success(t *testing.T) {
	svc := &fakePaymentService{
		ack: &models.NotificationAck{
			TransactionID: "trx-1",
			OrderID:       "ORDER-1",
			Status:        models.TransactionStatusSettlement,
			Message:       "notification processed",
		},
	}
	router := setupPaymentRouter(t, svc)

	// Без Authorization: вебхук - публичный эндпоинт
	w := doJSON(router, "POST", "/api/v1/payments/notification", "", map[string]string{
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "100000.00",
		"signature_key":      "abc",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":"ORDER-1"`)
	require.NotNil(t, svc.lastNotification)
	assert.Equal(t, "ORDER-1", svc.lastNotification.OrderID)
}

func TestNotificationEndpoint_MissingRequiredFieldsIs400(t *testing.T) {
	svc := &fakePaymentService{}
	router := setupPaymentRouter(t, svc)

	// Нет transaction_status - отлавливает валидатор на границе
	w := doJSON(router, "POST", "/api/v1/payments/notification", "", map[string]string{
		"order_id": "ORDER-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// До сервиса запрос не дошел
	assert.Nil(t, svc.lastNotification)
}

func TestNotificationEndpoint_SignatureMismatchIs403(t *testing.T) {
	svc := &fakePaymentService{notifErr: apperrors.NewSignatureError("ORDER-1")}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "POST", "/api/v1/payments/notification", "", map[string]string{
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
		"signature_key":      "forged",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "SIGNATURE_INVALID")
}

func TestNotificationEndpoint_StorageFailureIs500(t *testing.T) {
	// 5xx сигналит шлюзу повторить доставку
	svc := &fakePaymentService{notifErr: apperrors.StorageError(context.DeadlineExceeded)}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "POST", "/api/v1/payments/notification", "", map[string]string{
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNotificationEndpoint_UnknownOrderIs404(t *testing.T) {
	svc := &fakePaymentService{
		notifErr: apperrors.ErrNotFound(nil, "payment", "Unknown order id"),
	}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "POST", "/api/v1/payments/notification", "", map[string]string{
		"order_id":           "ORDER-unknown",
		"transaction_status": "settlement",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============================================================================
// Checkout / Status / History
// ============================================================================

func TestCheckoutEndpoint_RequiresAuth(t *testing.T) {
	router := setupPaymentRouter(t, &fakePaymentService{})

	w := doJSON(router, "POST", "/api/v1/payments/checkout", "", map[string]string{
		"planId": "3c2f4f9e-0a65-4a4c-a38d-111111111111",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutEndpoint_Success(t *testing.T) {
	svc := &fakePaymentService{
		checkoutResp: &models.CheckoutResponse{
			TransactionID: "trx-1",
			OrderID:       "ORDER-1",
			Amount:        100000,
			Token:         "snap-token",
			RedirectURL:   "https://pay.test/ORDER-1",
		},
	}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "POST", "/api/v1/payments/checkout", bearerFor(t, "user-1"), map[string]string{
		"planId": "3c2f4f9e-0a65-4a4c-a38d-111111111111",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "snap-token")
}

func TestCheckoutEndpoint_InvalidPlanIDIs400(t *testing.T) {
	router := setupPaymentRouter(t, &fakePaymentService{})

	w := doJSON(router, "POST", "/api/v1/payments/checkout", bearerFor(t, "user-1"), map[string]string{
		"planId": "not-a-uuid",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusEndpoint_OwnTransaction(t *testing.T) {
	svc := &fakePaymentService{
		statusResp: &models.TransactionStatusResponse{
			ID:        "trx-1",
			OrderID:   "ORDER-1",
			Status:    models.TransactionStatusSettlement,
			UserID:    "user-1",
			CreatedAt: time.Now(),
		},
	}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "GET", "/api/v1/payments/status/ORDER-1", bearerFor(t, "user-1"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"settlement"`)
}

func TestStatusEndpoint_ForeignTransactionIs404(t *testing.T) {
	svc := &fakePaymentService{
		statusResp: &models.TransactionStatusResponse{
			ID:      "trx-1",
			OrderID: "ORDER-1",
			UserID:  "someone-else",
		},
	}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "GET", "/api/v1/payments/status/ORDER-1", bearerFor(t, "user-1"), nil)

	// Чужая транзакция неотличима от несуществующей
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &fakePaymentService{
		history: []models.Transaction{
			{OrderID: "ORDER-1", Status: models.TransactionStatusSettlement},
		},
	}
	router := setupPaymentRouter(t, svc)

	w := doJSON(router, "GET", "/api/v1/payments/history", bearerFor(t, "user-1"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER-1")
}
