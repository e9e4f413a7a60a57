package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"restopos/internal/analytics"
	"restopos/internal/caching"
	"restopos/internal/config"
	"restopos/internal/handlers"
	"restopos/internal/jobs"
	"restopos/internal/jobs/background"
	"restopos/internal/middleware"
	"restopos/internal/models"
	"restopos/internal/repositories"
	"restopos/internal/services"
	"restopos/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	tx := repositories.NewTransactor(pool)
	userRepo := repositories.NewUserRepo(pool)
	tableRepo := repositories.NewTableRepo(pool)
	menuRepo := repositories.NewMenuItemRepo(pool)
	recipeRepo := repositories.NewRecipeRepo(pool)
	ingredientRepo := repositories.NewIngredientRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	lineRepo := repositories.NewOrderLineRepo(pool)
	scheduleRepo := repositories.NewScheduleRepo(pool)
	reportRepo := repositories.NewReportRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	defer func() { _ = cacheSvc.Close() }()

	imageStore, err := services.NewMinioImageStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL, cfg.MinIO.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize image store", zap.Error(err))
	}
	if err := imageStore.EnsureBucket(ctx); err != nil {
		logger.Warn("image bucket unavailable, uploads will fail until it is reachable",
			zap.String("bucket", cfg.MinIO.Bucket), zap.Error(err))
	}

	// Services
	availabilitySvc := services.NewAvailabilityService(tx, menuRepo, recipeRepo, cacheSvc, logger)
	orderSvc := services.NewOrderService(tx, orderRepo, lineRepo, tableRepo, menuRepo, recipeRepo, ingredientRepo,
		availabilitySvc, cacheSvc, cfg.Inventory.StockPolicy, logger)
	inventorySvc := services.NewInventoryService(tx, ingredientRepo, recipeRepo, availabilitySvc, cacheSvc, logger)
	menuSvc := services.NewMenuService(tx, menuRepo, recipeRepo, ingredientRepo, availabilitySvc, imageStore,
		cacheSvc, cfg.Cache.MenuTTL, logger)
	tableSvc := services.NewTableService(tx, tableRepo, orderRepo, logger)
	authSvc := services.NewAuthService(userRepo, cacheSvc, cfg.Auth.Secret, services.AuthOptions{
		TokenTTL:         cfg.Auth.TokenTTL,
		LoginMaxAttempts: cfg.Auth.LoginMaxAttempts,
		LoginWindow:      cfg.Auth.LoginWindow,
	}, logger)
	scheduleSvc := services.NewScheduleService(scheduleRepo)
	notificationSvc := services.NewNotificationService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	defer func() { _ = notificationSvc.Close() }()
	auditLogsSvc := services.NewAuditLogsService(auditLogsRepo)
	analyticsSvc := analytics.NewAnalyticsService(reportRepo, cacheSvc, cfg.Cache.ReportTTL, logger)

	if cfg.Auth.BootstrapEmail != "" {
		if _, err := authSvc.EnsureUser(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword, models.RoleManager); err != nil {
			logger.Fatal("failed to create bootstrap manager", zap.Error(err))
		}
		logger.Info("bootstrap manager ready", zap.String("email", cfg.Auth.BootstrapEmail))
	}

	var jwks *keyfunc.JWKS
	if cfg.Auth.JWKSURL != "" {
		jwks, err = middleware.NewJWKS(cfg.Auth.JWKSURL, logger)
		if err != nil {
			logger.Fatal("failed to load JWKS", zap.String("url", cfg.Auth.JWKSURL), zap.Error(err))
		}
		defer jwks.EndBackground()
	}

	// Background jobs
	scheduler, err := background.NewJobScheduler(
		jobs.NewInventoryAlertService(inventorySvc, notificationSvc, logger),
		jobs.NewAnalyticsRefreshService(analyticsSvc, logger),
		cfg.Inventory.LowStockInterval,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	tableHandlers := handlers.NewTableHandlers(tableSvc)
	menuHandlers := handlers.NewMenuHandlers(menuSvc)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	scheduleHandlers := handlers.NewScheduleHandlers(scheduleSvc)
	reportHandlers := handlers.NewReportHandlers(analyticsSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	auditHandlers := handlers.NewAuditHandlers(auditLogsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, imageStore, version)

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	v1.GET("/menu", menuHandlers.ListMenu)

	auditMiddleware := middleware.NewAuditMiddleware(logger, auditLogsSvc)
	protected := v1.Group("")
	protected.Use(middleware.Authenticate(cfg.Auth.Secret, jwks))
	protected.Use(auditMiddleware.AuditRequest())

	manager := middleware.RequireRole(models.RoleManager)
	staff := middleware.Staff()
	floor := middleware.RequireRole(models.RoleWaiter, models.RoleManager)

	protected.GET("/auth/me", authHandlers.Me)
	protected.POST("/users", authHandlers.CreateUser, manager)

	// Tables
	protected.GET("/tables", tableHandlers.ListTables, staff)
	protected.GET("/tables/:id", tableHandlers.GetTable, staff)
	protected.POST("/tables", tableHandlers.CreateTable, manager)
	protected.PATCH("/tables/:id", tableHandlers.UpdateTable, manager)
	protected.DELETE("/tables/:id", tableHandlers.DeleteTable, manager)
	protected.POST("/tables/:number/sit", tableHandlers.Sit)
	protected.POST("/tables/leave", tableHandlers.Leave)

	// Menu
	protected.GET("/menu/all", menuHandlers.ListAllMenuItems, staff)
	protected.GET("/menu/:id", menuHandlers.GetMenuItem)
	protected.POST("/menu", menuHandlers.CreateMenuItem, manager)
	protected.PATCH("/menu/:id", menuHandlers.UpdateMenuItem, manager)
	protected.DELETE("/menu/:id", menuHandlers.DeleteMenuItem, manager)
	protected.GET("/menu/:id/recipe", menuHandlers.GetRecipe, staff)
	protected.PUT("/menu/:id/recipe", menuHandlers.SetRecipe, manager)
	protected.POST("/menu/:id/image", menuHandlers.UploadImage, manager)

	// Inventory
	protected.GET("/inventory", inventoryHandlers.ListIngredients, staff)
	protected.GET("/inventory/low-stock", inventoryHandlers.ListLowStock, staff)
	protected.GET("/inventory/alerts", notificationHandlers.RecentAlerts, manager)
	protected.GET("/inventory/:id", inventoryHandlers.GetIngredient, staff)
	protected.POST("/inventory", inventoryHandlers.CreateIngredient, manager)
	protected.PATCH("/inventory/:id", inventoryHandlers.UpdateIngredient, manager)
	protected.POST("/inventory/:id/restock", inventoryHandlers.Restock, manager)
	protected.DELETE("/inventory/:id", inventoryHandlers.DeleteIngredient, manager)

	// Orders
	protected.POST("/orders", orderHandlers.PlaceOrder)
	protected.GET("/orders/mine", orderHandlers.ListMyOrders)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.PATCH("/orders/:id/lines/:lineId", orderHandlers.UpdateOrderLine)
	protected.POST("/orders/:id/advance", orderHandlers.AdvanceOrder, staff)
	protected.POST("/orders/:id/payment", orderHandlers.RecordPayment, floor)
	protected.GET("/kitchen/queue", orderHandlers.KitchenQueue, staff)

	// Reports
	reports := protected.Group("/reports", manager)
	reports.GET("/summary", reportHandlers.Summary)
	reports.GET("/popular-items", reportHandlers.PopularItems)
	reports.GET("/payment-summary", reportHandlers.PaymentSummary)
	reports.GET("/daily-summary", reportHandlers.DailySummary)
	reports.GET("/daily-summary.pdf", reportHandlers.DailySummaryPDF)

	protected.GET("/audit-logs", auditHandlers.ListAuditLogs, manager)

	// Schedules
	protected.POST("/schedules", scheduleHandlers.CreateSchedule, manager)
	protected.GET("/schedules", scheduleHandlers.ListSchedules, manager)
	protected.GET("/schedules/me", scheduleHandlers.ListMySchedules, staff)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("restopos server starting",
			zap.String("version", version),
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Env),
			zap.String("stock_policy", string(cfg.Inventory.StockPolicy)))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("job scheduler shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	if cfg.Server.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.Server.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
		}
		zc.Level = level
	}
	return zc.Build()
}
