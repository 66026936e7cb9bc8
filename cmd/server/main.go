package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/handlers"
	"github.com/SAP-F-2025/lms-service/internal/jobs"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/observability"
	"github.com/SAP-F-2025/lms-service/internal/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cached"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/SAP-F-2025/lms-service/pkg"
	"github.com/gin-gonic/gin"
)

const (
	serviceName     = "lms-service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewDefaultLogger().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server terminated")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	slogger := utils.ToSlogLogger(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ===== INFRASTRUCTURE =====

	shutdownTracing, err := observability.InitTracing(context.Background(), logger, cfg.Tracing, serviceName, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}

	var (
		cacheService cache.CacheService
		limiter      middleware.Limiter
	)
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache and rate limiter", "error", err)
		cacheService = cache.NewMemoryCache()
		limiter = middleware.NewMemoryLimiter()
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
		limiter = middleware.NewRedisLimiter(redisClient)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	files, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		return err
	}

	repo := cached.NewRepository(postgres.NewRepository(db), cacheService, logger)
	collector := metrics.NewCollector()
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cacheService)

	// ===== SERVICES =====

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:               repo,
		CourseCache:        repo.CourseCache(),
		Cache:              cacheService,
		Tokens:             tokens,
		Publisher:          publisher,
		Mailer:             notify.NewMailer(cfg.Mail, notify.NewLogMailer(logger)),
		Gateway:            payment.NewGatewayClient(cfg.Payment),
		Files:              files,
		Collector:          collector,
		Validator:          validator.New(),
		Logger:             slogger,
		ContactDestination: cfg.Mail.ContactDestination,
		Currency:           cfg.Payment.Currency,
		MaxUploadBytes:     cfg.Storage.MaxUploadB,
		MaxMediaBytes:      cfg.Storage.MaxMediaB,
	})

	var verifier auth.TokenVerifier = tokens
	if cfg.AuthProvider == "casdoor" {
		verifier = auth.NewCasdoorVerifier(cfg.Casdoor, serviceManager.Auth())
		logger.Info("Using Casdoor token verification", "endpoint", cfg.Casdoor.Endpoint)
	}

	scheduler, err := jobs.NewScheduler(serviceManager.Analytics(), serviceManager.NotificationEvents(), logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	// ===== HTTP =====

	router := handlers.NewRouter(handlers.NewHandlerManager(serviceManager, logger), handlers.RouterOptions{
		Auth:            middleware.NewAuthMiddleware(verifier, logger),
		Limiter:         limiter,
		RateLimitMax:    cfg.RateLimit.MaxRequests,
		RateLimitWindow: cfg.RateLimit.Window,
		CORSOrigins:     cfg.CORSOrigins,
		Collector:       collector,
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logger.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
