package handlers

import (
	"net/http"

	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/middleware"
	"fanbase_backend/internal/models"
	"fanbase_backend/internal/services"
	"fanbase_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

// RegisterRoutes регистрирует платежные маршруты.
//
// /payments/notification - публичный: шлюз не умеет наши JWT.
// Аутентичность вебхука доказывает подпись в теле, а не заголовок.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/notification", h.HandleNotification)

	payments := rg.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("/checkout", h.Checkout)
		payments.GET("/status/:orderId", h.CheckStatus)
		payments.GET("/history", h.History)
	}
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// HandleNotification - вебхук шлюза.
//
// Контракт по кодам ответа:
//   - 2xx: уведомление обработано, шлюз забывает о нем
//   - 4xx: уведомление отвергнуто (подпись, неизвестный заказ) -
//     повтор не поможет, шлюз не ретраит
//   - 5xx: транзиентный сбой - шлюз повторит доставку
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	var payload models.GatewayNotification
	if !h.BindAndValidate_JSON(c, &payload) {
		return
	}

	logger.CtxInfo(c.Request.Context(), "Gateway notification received",
		"order_id", payload.OrderID,
		"transaction_status", payload.TransactionStatus,
	)

	ack, err := h.paymentService.HandleNotification(c.Request.Context(), &payload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ack)
}

func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.paymentService.CheckStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// Чужие транзакции не показываем, но и не выдаем их существование
	if resp.UserID != userID {
		h.HandleServiceError(c, apperrors.New(apperrors.CodeNotFound, "transaction", "Transaction not found", http.StatusNotFound))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	transactions, err := h.paymentService.History(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
