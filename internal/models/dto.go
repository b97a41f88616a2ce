package models

import "time"

// ============================================================================
// Auth
// ============================================================================

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// ============================================================================
// Creators / Plans / Posts
// ============================================================================

type BecomeCreatorRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=100"`
	Bio         string `json:"bio" validate:"max=2000"`
}

type CreatePlanRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Interval    string  `json:"interval" validate:"required,is-plan-interval"`
}

type UpdatePlanRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Interval    *string  `json:"interval,omitempty" validate:"omitempty,is-plan-interval"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type CreatePostRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content" validate:"required"`
	IsPremium bool   `json:"isPremium"`
}

type UpdatePostRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content   *string `json:"content,omitempty"`
	IsPremium *bool   `json:"isPremium,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// PostView - пост глазами конкретного зрителя. У premium-постов без
// активной подписки Content пустой, Locked=true.
type PostView struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creatorId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	IsPremium    bool      `json:"isPremium"`
	Locked       bool      `json:"locked"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreatorView struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	Bio             string `json:"bio"`
	AvatarURL       string `json:"avatarUrl"`
	SubscriberCount int64  `json:"subscriberCount"`
	Plans           []Plan `json:"plans,omitempty"`
}

// ============================================================================
// Payments
// ============================================================================

type CheckoutRequest struct {
	PlanID string `json:"planId" validate:"required,uuid4"`
}

type CheckoutResponse struct {
	TransactionID string  `json:"transactionId"`
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	Token         string  `json:"token"`
	RedirectURL   string  `json:"redirectUrl"`
}

// GatewayNotification - типизированное тело вебхука Midtrans.
// Валидируется на границе до использования любого поля:
// обязательны только order_id и transaction_status, остальное -
// словарь шлюза, который мы переносим в аудит как есть.
type GatewayNotification struct {
	OrderID           string `json:"order_id" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	SettlementTime    string `json:"settlement_time"`
	SignatureKey      string `json:"signature_key"`
}

// NotificationAck - ответ шлюзу после успешного коммита
type NotificationAck struct {
	TransactionID string            `json:"transaction_id"`
	OrderID       string            `json:"order_id"`
	Status        TransactionStatus `json:"status"`
	Message       string            `json:"message"`
}

// TransactionStatusResponse - клиентский ответ GET /payments/status/:orderId
type TransactionStatusResponse struct {
	ID                  string            `json:"id"`
	OrderID             string            `json:"orderId"`
	Amount              float64           `json:"amount"`
	Status              TransactionStatus `json:"status"`
	CreatorID           string            `json:"creatorId"`
	CreatorName         string            `json:"creatorName"`
	PlanName            string            `json:"planName"`
	PlanInterval        PlanInterval      `json:"planInterval"`
	UserID              string            `json:"userId"`
	SubscriptionCreated bool              `json:"subscriptionCreated"`
	SubscriptionID      string            `json:"subscriptionId,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	PaymentDate         *time.Time        `json:"paymentDate,omitempty"`
}
