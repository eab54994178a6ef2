// Package main provides the main entry point for the Kaitkan storefront API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/kaitkan/kaitkan-api/app/handlers"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	"github.com/kaitkan/kaitkan-api/app/router"
	"github.com/kaitkan/kaitkan-api/app/scheduler"
	"github.com/kaitkan/kaitkan-api/app/services"
	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
	"github.com/kaitkan/kaitkan-api/config"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Kaitkan API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to stdout, a rotating file, or both
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.Output == "" {
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(fileWriter)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// runMigrations keeps the schema aligned with the model definitions
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Theme{},
		&models.Catalog{},
		&models.LinkGroup{},
		&models.Link{},
		&models.Product{},
		&models.OTPCode{},
		&models.PageView{},
		&models.LinkClick{},
		&models.Click{},
	)
}

// seedThemes inserts the built-in theme palettes on first boot
func seedThemes(themeRepo repository.ThemeRepository) error {
	ctx := context.Background()

	existing, err := themeRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	themes := []*models.Theme{
		{
			Name:            "Nusantara",
			BackgroundColor: "#f7fee7",
			TextColor:       "#071a0f",
			ButtonColor:     "#16a34a",
			ButtonTextColor: "#ffffff",
			IsDefault:       true,
		},
		{
			Name:            "Laut Biru",
			BackgroundColor: "#eff6ff",
			TextColor:       "#0b1220",
			ButtonColor:     "#2563eb",
			ButtonTextColor: "#ffffff",
		},
		{
			Name:            "Kopi Susu",
			BackgroundColor: "#fffbeb",
			TextColor:       "#211708",
			ButtonColor:     "#a16207",
			ButtonTextColor: "#ffffff",
		},
	}

	for _, theme := range themes {
		if err := themeRepo.Save(ctx, theme); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d default themes", len(themes))
	return nil
}

// initializeCache initializes the cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		DB:          cfg.RedisDB,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return rc, nil
}

// initializeSMSService selects the WhatsApp gateway client based on configuration
func initializeSMSService(cfg *config.ProductionConfig) services.SMSService {
	if cfg.SMS.UseMock {
		return services.NewMockSMSService()
	}
	return services.NewSMSService(&cfg.SMS)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var cacheService services.CacheService
	if rc != nil {
		cacheService = services.NewRedisCacheService(rc, cfg.Cache.KeyPrefix)
		cacheMonitor := scheduler.NewCacheMonitor(cacheService, log.Default(), time.Minute)
		stopFuncs = append(stopFuncs, cacheMonitor.Start(context.Background()))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	} else {
		cacheService = services.NewNoopCacheService()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	themeRepo := repository.NewThemeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	linkGroupRepo := repository.NewLinkGroupRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	productRepo := repository.NewProductRepository(db)
	otpRepo := repository.NewOTPCodeRepository(db)
	pageViewRepo := repository.NewPageViewRepository(db)
	linkClickRepo := repository.NewLinkClickRepository(db)
	clickRepo := repository.NewClickRepository(db)

	if err := seedThemes(themeRepo); err != nil {
		return nil, fmt.Errorf("failed to seed themes: %w", err)
	}

	// Initialize services
	tokenService, err := services.NewTokenService(cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	smsService := initializeSMSService(cfg)
	imageService := services.NewImageService(cfg.Storage.BaseDir)

	// Initialize business flows
	catalogFlow := businessflow.NewCatalogFlow(catalogRepo, linkGroupRepo, linkRepo, productRepo, cacheService, cfg.Cache.CatalogTTL)
	otpFlow := businessflow.NewOTPFlow(otpRepo, smsService)
	authFlow := businessflow.NewAuthFlow(userRepo, catalogRepo, themeRepo, otpRepo, tokenService, db, cfg.Security.BcryptCost, int(cfg.JWT.AccessTokenTTL.Seconds()))
	profileFlow := businessflow.NewProfileFlow(userRepo, catalogRepo, themeRepo, imageService, catalogFlow, db, cfg.Storage.AvatarMaxDim)
	linkFlow := businessflow.NewLinkFlow(catalogRepo, linkRepo, linkGroupRepo, imageService, catalogFlow, cfg.Storage.ThumbMaxDim)
	linkGroupFlow := businessflow.NewLinkGroupFlow(catalogRepo, linkGroupRepo, linkRepo, catalogFlow)
	productFlow := businessflow.NewProductFlow(catalogRepo, productRepo, imageService, catalogFlow, cfg.Storage.ImageMaxDim)
	analyticsFlow := businessflow.NewAnalyticsFlow(catalogRepo, linkRepo, productRepo, pageViewRepo, linkClickRepo, clickRepo, cfg.Analytics.IPHashSecret)
	exportFlow := businessflow.NewAnalyticsExportFlow(analyticsFlow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(otpFlow, authFlow)
	publicHandler := handlers.NewPublicHandler(catalogFlow, analyticsFlow)
	profileHandler := handlers.NewProfileHandler(profileFlow)
	linkHandler := handlers.NewLinkHandler(linkFlow)
	linkGroupHandler := handlers.NewLinkGroupHandler(linkGroupFlow)
	productHandler := handlers.NewProductHandler(productFlow)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsFlow, exportFlow)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authHandler,
		publicHandler,
		profileHandler,
		linkHandler,
		linkGroupHandler,
		productHandler,
		analyticsHandler,
		authMiddleware,
	)

	// Start the OTP retention cleanup worker
	otpCleanup := scheduler.NewOTPCleanupScheduler(otpFlow, log.Default(), time.Hour)
	stopFuncs = append(stopFuncs, otpCleanup.Start(context.Background()))

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
