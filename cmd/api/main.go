package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestorloja/gestor-backend/internal/config"
	"github.com/gestorloja/gestor-backend/internal/handler"
	"github.com/gestorloja/gestor-backend/internal/messaging"
	"github.com/gestorloja/gestor-backend/internal/middleware"
	"github.com/gestorloja/gestor-backend/internal/repository/postgres"
	"github.com/gestorloja/gestor-backend/internal/repository/storage"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/websocket"
)

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

	// Run schema migrations
	if err := postgres.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize repositories
	clientRepo := postgres.NewClientRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)

	// WhatsApp sender: no-op unless a gateway is configured
	var sender messaging.Sender = messaging.NoOpSender{}
	if cfg.WhatsAppEnabled() {
		sender = messaging.NewWhatsAppClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIKey)
		log.Info().Str("endpoint", cfg.WhatsApp.APIURL).Msg("WhatsApp gateway configured")
	} else {
		log.Warn().Msg("WhatsApp gateway not configured, notifications disabled")
	}

	// Image storage: optional, product image endpoints fail cleanly without it
	var imageStorage storage.ImageRepository
	if cfg.S3Enabled() {
		s3Repo, err := storage.NewS3ImageRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize image storage")
		}
		imageStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Image storage configured")
	} else {
		log.Warn().Msg("Image storage not configured, product images disabled")
	}

	// WebSocket hub for live dashboard updates
	hub := websocket.NewHub()

	// Initialize services
	clientService := service.NewClientService(clientRepo, debtRepo)
	debtService := service.NewDebtService(pool, debtRepo, clientRepo, paymentRepo)
	saleService := service.NewSaleService(pool, saleRepo, debtRepo, clientRepo)
	paymentService := service.NewPaymentService(paymentRepo, debtRepo)
	productService := service.NewProductService(pool, productRepo, movementRepo)
	notificationService := service.NewNotificationService(sender, clientRepo)
	dashboardService := service.NewDashboardService(debtRepo, saleRepo, productRepo)
	imageService := service.NewImageService(imageStorage, productRepo)

	clientService.SetEventPublisher(hub)
	debtService.SetEventPublisher(hub)
	saleService.SetEventPublisher(hub)
	paymentService.SetEventPublisher(hub)
	productService.SetEventPublisher(hub)
	imageService.SetEventPublisher(hub)
	saleService.SetNotifier(notificationService)

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientService, debtService, saleService)
	debtHandler := handler.NewDebtHandler(debtService, paymentService)
	saleHandler := handler.NewSaleHandler(saleService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	productHandler := handler.NewProductHandler(productService, imageService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Rate limiter guards the notification endpoints
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

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
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Idempotency-Key"},
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

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, clientHandler, debtHandler, saleHandler, paymentHandler, productHandler, dashboardHandler, notificationHandler, wsHandler)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
