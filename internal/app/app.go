package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanbase_backend/database"
	"fanbase_backend/internal/config"
	"fanbase_backend/internal/gateway"
	"fanbase_backend/internal/handlers"
	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/mailer"
	"fanbase_backend/internal/middleware"
	"fanbase_backend/internal/repositories"
	"fanbase_backend/internal/routes"
	"fanbase_backend/internal/services"
	"fanbase_backend/internal/validator"
	"fanbase_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		// TranslateError превращает ошибки драйвера в gorm.ErrDuplicatedKey
		// и подобные; на этом стоит идемпотентность provisioning
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("AutoMigrate failed", "error", err)
	}

	ginRouter, store := SetupRouter(cfg, gormDB)

	// Фоновая зачистка истекших подписок
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers.NewSubscriptionWorker(store).Start(workerCtx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    address,
		Handler: ginRouter,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	// Graceful shutdown: даем in-flight вебхукам докоммитить
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	stopWorkers()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, repositories.Store) {
	store := repositories.NewStore(gormDB)

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, store)

	// 2. Инициализируем хэндлеры
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := initializeHandlers(baseHandler, serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers, baseHandler)

	return ginRouter, store
}

func initializeServices(cfg *config.Config, store repositories.Store) *services.ServiceContainer {
	gatewayClient, err := gateway.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway client", "error", err)
	}

	mail := mailer.NewMailer(cfg)

	authService := services.NewAuthService(store)
	creatorService := services.NewCreatorService(store)
	planService := services.NewPlanService(store)
	subscriptionService := services.NewSubscriptionService(store)
	postService := services.NewPostService(store, subscriptionService)
	paymentService := services.NewPaymentService(store, gatewayClient, cfg, mail)

	return &services.ServiceContainer{
		AuthService:         authService,
		CreatorService:      creatorService,
		PlanService:         planService,
		PostService:         postService,
		SubscriptionService: subscriptionService,
		PaymentService:      paymentService,
	}
}

func initializeHandlers(baseHandler *handlers.BaseHandler, services *services.ServiceContainer) *handlers.AppHandlers {
	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		CreatorHandler:      handlers.NewCreatorHandler(baseHandler, services.CreatorService, services.PlanService),
		PlanHandler:         handlers.NewPlanHandler(baseHandler, services.PlanService),
		PostHandler:         handlers.NewPostHandler(baseHandler, services.PostService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, services.PaymentService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
