package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/config"
	"github.com/Numffy/jumping-park-app-sub000/internal/handlers"
	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/middleware"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Numffy/jumping-park-app-sub000/docs"
)

// @title           Jumping Park Kiosk API
// @version         1.0
// @description     Verificación de visitantes con código de un solo uso y emisión de consentimientos firmados para el ingreso de menores.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name otp
// @tag.description Códigos de verificación

// @tag.name consent
// @tag.description Emisión de consentimientos

// @tag.name admin
// @tag.description Verificación administrativa

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	// Initialize observability
	if err := observability.InitTracer(observability.TracerConfig{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		ServiceName: cfg.TracingServiceName,
		Environment: cfg.Environment,
		SampleRatio: cfg.TracingSampleRatio,
	}); err != nil {
		logging.Logger.Error("tracing unavailable, continuing without spans", zap.Error(err))
	}

	backends, err := openBackends(cfg, logging.Logger)
	if err != nil {
		logging.Logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	auditor := startAuditWorker(cfg, backends.audit, logging.Logger)
	publisher := newPublisher(cfg, logging.Logger)
	notifier, err := newNotifier(cfg, logging.Logger)
	if err != nil {
		logging.Logger.Fatal("failed to initialize notifier", zap.Error(err))
	}

	// Services
	identity := services.NewIdentityResolver(backends.visitors, backends.cache, logging.Logger)
	otpCfg := services.OtpConfig{TTL: cfg.OtpTTL, MaxAttempts: cfg.OtpMaxAttempts}
	issuer := services.NewOtpIssuer(identity, backends.otps, notifier, auditor, otpCfg, logging.Logger)
	validator := services.NewOtpValidator(identity, backends.otps, auditor, otpCfg, logging.Logger)
	orchestrator := services.NewConsentOrchestrator(services.ConsentDeps{
		Identity:  identity,
		Visitors:  backends.visitors,
		Consents:  backends.consents,
		Sequence:  backends.sequence,
		Blobs:     backends.blobs,
		Renderer:  newRenderer(cfg, logging.Logger),
		Notifier:  notifier,
		Publisher: publisher,
		Auditor:   auditor,
	}, services.ConsentConfig{
		PolicyVersion:     cfg.PolicyVersion,
		PhoneRegion:       cfg.DefaultPhoneRegion,
		PostCommitTimeout: cfg.PostCommitTimeout,
	}, logging.Logger)
	verifier := services.NewConsentVerifier(backends.consents, backends.blobs, auditor, logging.Logger)

	// Handlers
	otpHandlers := handlers.NewOtpHandlers(issuer, validator, logging.Logger)
	identityHandlers := handlers.NewIdentityHandlers(identity, logging.Logger)
	consentHandlers := handlers.NewConsentHandlers(orchestrator, verifier, logging.Logger)
	healthHandlers := handlers.NewHealthHandlers(backends.healthChecks, logging.Logger)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.New(corsConfig),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/health", healthHandlers.HealthCheck)

		v1.POST("/identity/check", identityHandlers.CheckIdentity)
		v1.POST("/otp/issue", otpHandlers.IssueOtp)
		v1.POST("/otp/validate", otpHandlers.ValidateOtp)
		v1.POST("/consent", consentHandlers.SubmitConsent)

		admin := v1.Group("/admin", middleware.RequireAdmin(cfg.AdminJWTSecret, cfg.AdminRole))
		{
			admin.GET("/consents/:id", consentHandlers.GetConsent)
			admin.GET("/signatures/*path", consentHandlers.GetSignature)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("storage_backend", cfg.StorageBackend),
			zap.String("otp_store", cfg.OtpStore),
			zap.String("blob_backend", cfg.BlobBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Drain queued audit entries and pending events before closing the stores
	auditor.Stop()
	if err := publisher.Close(); err != nil {
		logging.Logger.Error("failed to close event publisher", zap.Error(err))
	}
	config.CloseConnections(ctx)
	observability.ShutdownTracer(ctx)

	logging.Logger.Info("server exited gracefully")
}
