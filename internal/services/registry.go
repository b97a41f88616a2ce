package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	CreatorService      CreatorService
	PlanService         PlanService
	PostService         PostService
	SubscriptionService SubscriptionService
	PaymentService      PaymentService
}
