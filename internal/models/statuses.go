package models

type UserRole string
type UserStatus string
type TransactionStatus string
type SubscriptionStatus string
type PlanInterval string
type FraudStatus string

const (
	UserRoleUser    UserRole = "user"
	UserRoleCreator UserRole = "creator"
	UserRoleAdmin   UserRole = "admin"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	// Статусы транзакции - словарь шлюза, храним как есть.
	// capture и settlement - два написания "оплачено" у Midtrans.
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusCapture    TransactionStatus = "capture"
	TransactionStatusSettlement TransactionStatus = "settlement"
	TransactionStatusDeny       TransactionStatus = "deny"
	TransactionStatusCancel     TransactionStatus = "cancel"
	TransactionStatusExpire     TransactionStatus = "expire"

	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	PlanIntervalMonthly PlanInterval = "monthly"
	PlanIntervalYearly  PlanInterval = "yearly"

	FraudStatusAccept FraudStatus = "accept"
)

// IsSuccess сообщает, является ли статус терминально-успешным.
func (s TransactionStatus) IsSuccess() bool {
	return s == TransactionStatusCapture || s == TransactionStatusSettlement
}

// IsFailure сообщает, является ли статус терминально-неуспешным.
func (s TransactionStatus) IsFailure() bool {
	return s == TransactionStatusDeny || s == TransactionStatusCancel || s == TransactionStatusExpire
}

// Known сообщает, входит ли статус в словарь шлюза.
func (s TransactionStatus) Known() bool {
	return s == TransactionStatusPending || s.IsSuccess() || s.IsFailure()
}
