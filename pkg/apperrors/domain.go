package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для доменных ошибок платежей и подписок.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (оборачивание ошибок репозитория / шлюза)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// StorageError - транзиентная ошибка персистентности (500).
// Шлюз, получив 5xx, повторит доставку вебхука.
func StorageError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "storage", "Storage operation failed", http.StatusInternalServerError)
}

// GatewayError - ошибка обращения к платежному шлюзу (502)
func GatewayError(err error) *AppError {
	return Wrap(err, CodeGatewayError, "payment", "Payment gateway request failed", http.StatusBadGateway)
}

// =========================================================================
// Фабричные ФУНКЦИИ (создание новых ошибок)
// =========================================================================

// NewSignatureError - подпись вебхука не совпала (403).
// Единственная защита от поддельных подтверждений оплаты,
// поэтому всегда логируется как security event.
func NewSignatureError(orderID string) *AppError {
	return New(CodeSignatureInvalid, "payment", "Webhook signature mismatch", http.StatusForbidden).
		WithDetails(map[string]string{"order_id": orderID})
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (частые, статичные ошибки)
// =========================================================================

// ErrInvalidUserRole - операция не предусмотрена для роли пользователя
var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

// ErrSubscriptionNotActive - попытка отменить неактивную подписку
var ErrSubscriptionNotActive = New(
	CodeInvalidStatus,
	"subscription",
	"Subscription is not active",
	http.StatusConflict,
)

// ErrPlanInactive - план снят с продажи, оформить подписку нельзя
var ErrPlanInactive = New(
	CodeInvalidOperation,
	"plan",
	"Plan is not available for purchase",
	http.StatusBadRequest,
)
