package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	CreatorHandler      *CreatorHandler
	PlanHandler         *PlanHandler
	PostHandler         *PostHandler
	SubscriptionHandler *SubscriptionHandler
	PaymentHandler      *PaymentHandler
}
