// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/handlers"
	"github.com/kaitkan/kaitkan-api/app/middleware"
	"github.com/kaitkan/kaitkan-api/config"
	"github.com/kaitkan/kaitkan-api/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.ProductionConfig
	authHandler      handlers.AuthHandlerInterface
	publicHandler    handlers.PublicHandlerInterface
	profileHandler   handlers.ProfileHandlerInterface
	linkHandler      handlers.LinkHandlerInterface
	linkGroupHandler handlers.LinkGroupHandlerInterface
	productHandler   handlers.ProductHandlerInterface
	analyticsHandler handlers.AnalyticsHandlerInterface
	authMiddleware   *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	authHandler handlers.AuthHandlerInterface,
	publicHandler handlers.PublicHandlerInterface,
	profileHandler handlers.ProfileHandlerInterface,
	linkHandler handlers.LinkHandlerInterface,
	linkGroupHandler handlers.LinkGroupHandlerInterface,
	productHandler handlers.ProductHandlerInterface,
	analyticsHandler handlers.AnalyticsHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Kaitkan API",
		ServerHeader: "Kaitkan",
		ErrorHandler: newErrorHandler(cfg.Analytics.Debug),
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		authHandler:      authHandler,
		publicHandler:    publicHandler,
		profileHandler:   profileHandler,
		linkHandler:      linkHandler,
		linkGroupHandler: linkGroupHandler,
		productHandler:   productHandler,
		analyticsHandler: analyticsHandler,
		authMiddleware:   authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Uploaded avatars and product images
	r.app.Use("/uploads", static.New(r.cfg.Storage.BaseDir))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.authHandler.Health)

	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Public storefront and tracking endpoints
	api.Get("/c/:username", r.publicHandler.GetCatalog)
	api.Post("/analytics/visit", r.publicHandler.RecordVisit)
	api.Post("/clicks/link/:id", r.publicHandler.RecordLinkClick)
	api.Post("/clicks/:productId", r.publicHandler.RecordProductClick)

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.AuthRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/send-otp", r.authHandler.SendOTP)
	auth.Post("/verify-otp", r.authHandler.VerifyOTP)
	auth.Post("/login", r.authHandler.Login)
	auth.Post("/login-pin", r.authHandler.LoginWithPIN)
	auth.Post("/reset-pin", r.authHandler.ResetPIN)

	// Protected routes
	authenticate := r.authMiddleware.Authenticate()

	auth.Post("/logout", r.authHandler.Logout, authenticate)
	auth.Get("/user", r.authHandler.GetUser, authenticate)
	auth.Post("/set-pin", r.authHandler.SetPIN, authenticate)

	profile := api.Group("/profile", authenticate)
	profile.Get("/", r.profileHandler.GetProfile)
	profile.Put("/", r.profileHandler.UpdateProfile)
	profile.Post("/onboarding", r.profileHandler.CompleteOnboarding)
	profile.Post("/avatar", r.profileHandler.UploadAvatar)

	api.Get("/themes", r.profileHandler.ListThemes, authenticate)

	links := api.Group("/links", authenticate)
	links.Get("/", r.linkHandler.List)
	links.Post("/", r.linkHandler.Create)
	links.Post("/reorder", r.linkHandler.Reorder)
	links.Post("/:id/thumbnail", r.linkHandler.UploadThumbnail)
	links.Put("/:id", r.linkHandler.Update)
	links.Delete("/:id", r.linkHandler.Delete)

	linkGroups := api.Group("/link-groups", authenticate)
	linkGroups.Get("/", r.linkGroupHandler.List)
	linkGroups.Post("/", r.linkGroupHandler.Create)
	linkGroups.Put("/:id", r.linkGroupHandler.Update)
	linkGroups.Delete("/:id", r.linkGroupHandler.Delete)

	products := api.Group("/products", authenticate)
	products.Get("/", r.productHandler.List)
	products.Post("/", r.productHandler.Create)
	products.Post("/reorder", r.productHandler.Reorder)
	products.Put("/:id", r.productHandler.Update)
	products.Delete("/:id", r.productHandler.Delete)
	products.Post("/:id/image", r.productHandler.UploadImage)

	analytics := api.Group("/analytics", authenticate)
	analytics.Get("/summary", r.analyticsHandler.Summary)
	analytics.Get("/top-links", r.analyticsHandler.TopLinks)
	analytics.Get("/top-products", r.analyticsHandler.TopProducts)
	analytics.Get("/export-xlsx", r.analyticsHandler.ExportXLSX)
	analytics.Get("/export/:report", r.analyticsHandler.ExportCSV)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	// Prometheus request metrics
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Structured access log
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// newErrorHandler builds the global error handler. The underlying error is
// only echoed back when the debug flag is set.
func newErrorHandler(debug bool) func(fiber.Ctx, error) error {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		log.Printf("Error %d: %v", code, err)

		details := fiber.Map{
			"timestamp":  utils.UTCNow().Unix(),
			"request_id": c.Locals("requestid"),
		}
		if debug {
			details["error"] = err.Error()
		}

		return c.Status(code).JSON(dto.APIResponse{
			Success: false,
			Message: "An internal server error occurred",
			Error: dto.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Details: details,
			},
		})
	}
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
