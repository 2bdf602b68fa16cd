package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/config"
	"github.com/dafibh/osdesk/osdesk-backend/internal/handler"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/dafibh/osdesk/osdesk-backend/internal/middleware"
	"github.com/dafibh/osdesk/osdesk-backend/internal/repository/postgres"
	"github.com/dafibh/osdesk/osdesk-backend/internal/repository/storage"
	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/dafibh/osdesk/osdesk-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title osdesk API
// @version 1.0
// @description Personal web desktop backend: desktop state, OS names, icons and live updates.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	desktopRepo := postgres.NewDesktopRepository(pool)

	// Icon storage is optional
	var iconStorage storage.IconRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3IconRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize icon storage")
		}
		iconStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Icon storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, custom icon uploads are disabled")
	}

	// WebSocket hub
	hub := websocket.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, desktopRepo)
	desktopService := service.NewDesktopService(userRepo, desktopRepo, appMetrics)
	desktopService.SetEventPublisher(hub)
	osNameService := service.NewOSNameService(userRepo, appMetrics)
	iconService := service.NewIconService(iconStorage, userRepo, cfg.PublicBaseURL)
	faviconService := service.NewFaviconService(cfg.FaviconTimeout)

	// Background state audit
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var auditWorker *service.StateAuditWorker
	if cfg.StateAuditInterval > 0 {
		auditConfig := service.DefaultStateAuditWorkerConfig()
		auditConfig.Interval = cfg.StateAuditInterval
		auditWorker = service.NewStateAuditWorker(desktopRepo, appMetrics, log.Logger, auditConfig)
		auditWorker.Start(workerCtx)
	}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	osNameLimiter := middleware.NewRateLimiterWithConfig(cfg.OSNameRateLimit, cfg.OSNameRateBurst)
	defer osNameLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Desktop:   handler.NewDesktopHandler(desktopService),
		OSName:    handler.NewOSNameHandler(osNameService),
		Icon:      handler.NewIconHandler(iconService),
		Favicon:   handler.NewFaviconHandler(faviconService),
		WebSocket: handler.NewWebSocketHandler(hub, wsValidator, desktopService, appMetrics, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Reject oversized bodies before they are read
	e.Use(echomiddleware.BodyLimit(handler.MaxRequestBodySize))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Request metrics
	e.Use(metrics.Middleware(appMetrics))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/metrics", metrics.Handler(registry))

	// API docs
	if !cfg.IsProduction() {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	e.GET("/openapi.json", handler.ServeOpenAPI3Spec)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, osNameLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if auditWorker != nil {
		auditWorker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Int("ws_clients", hub.TotalClientCount()).Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
