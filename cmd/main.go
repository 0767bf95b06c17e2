package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/handler"
	"github.com/Payphone-Digital/bizsite/internal/jobs"
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	"github.com/Payphone-Digital/bizsite/internal/router"
	"github.com/Payphone-Digital/bizsite/internal/service"
	"github.com/Payphone-Digital/bizsite/pkg/database"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/mailer"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/Payphone-Digital/bizsite/pkg/ratelimit"
	"github.com/Payphone-Digital/bizsite/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run serves until a shutdown signal or a listener failure. Deferred cleanup
// runs in both cases before main decides the exit code.
func run() error {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.App.Environment == constants.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if config.JWT.AccessSecret == "" || config.JWT.RefreshSecret == "" {
		// Not fatal: protected routes answer 500 until the secrets are set.
		logger.GetLogger().Error("JWT secrets are not configured, authentication will fail")
	}

	db, err := database.NewPostgresDB(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db, config.Seed); err != nil {
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
	}

	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient, err = redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, falling back to in-memory rate limits", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	var sender mailer.Sender
	if config.Mail.Host != "" {
		sender, err = mailer.NewSMTPSender(config.Mail, appMetrics)
	} else {
		logger.GetLogger().Warn("SMTP_HOST not set, emails are logged instead of sent")
		sender, err = mailer.NewLogSender(config.Mail)
	}
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	productRepo := repository.NewProductRepository(db)
	enquiryRepo := repository.NewEnquiryRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	// Services
	hasher := service.NewBcryptHasher(0)
	tokens := service.NewTokenIssuer(service.TokenConfig{
		AccessSecret:  config.JWT.AccessSecret,
		RefreshSecret: config.JWT.RefreshSecret,
		AccessTTL:     config.JWT.AccessTTL,
		RefreshTTL:    config.JWT.RefreshTTL,
	})
	authService := service.NewAuthService(userRepo, tokens, hasher, appMetrics)
	resetService := service.NewPasswordResetService(userRepo, hasher, sender, appMetrics)
	userService := service.NewUserService(userRepo, hasher)
	contentService := service.NewContentService(contentRepo)
	productService := service.NewProductService(productRepo)
	enquiryService := service.NewEnquiryService(enquiryRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)

	// Handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, resetService, config.JWT),
		User:     handler.NewUserHandler(userService),
		Content:  handler.NewContentHandler(contentService),
		Product:  handler.NewProductHandler(productService),
		Enquiry:  handler.NewEnquiryHandler(enquiryService),
		Wishlist: handler.NewWishlistHandler(wishlistService),
		Health:   handler.NewHealthHandler(db, redisClient),
	}

	authMiddleware := middleware.NewAuthMiddleware(
		authService,
		middleware.DefaultExtractor(config.JWT.CookieName),
		appMetrics,
	)

	r := router.NewRouter(
		handlers,
		authMiddleware,
		newLimiters(config, redisClient),
		appMetrics,
		config,
	).SetupRoutes()

	scheduler, err := jobs.NewScheduler(config.Jobs, resetService)
	if err != nil {
		logger.GetLogger().Fatal("Failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	runErr := waitForShutdown(quit, serverErr)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)

	logger.GetLogger().Info("Server exited")
	return runErr
}

// waitForShutdown blocks until a signal arrives or the listener fails and
// returns the listener error, if any.
func waitForShutdown(quit <-chan os.Signal, serverErr <-chan error) error {
	select {
	case <-quit:
		logger.GetLogger().Info("Shutting down server...")
		return nil
	case err := <-serverErr:
		logger.GetLogger().Error("Server stopped unexpectedly", zap.Error(err))
		return err
	}
}

// newLimiters shares limits through Redis when it is connected and keeps
// them per process otherwise. A non-positive limit leaves that limiter off.
func newLimiters(config *configs.Config, redisClient *redis.Client) router.Limiters {
	window := time.Duration(config.RateLimit.Duration) * time.Second

	build := func(name, prefix string, limit int) ratelimit.Limiter {
		if limit <= 0 {
			logger.GetLogger().Warn("Rate limit disabled",
				zap.String("scope", name),
				zap.Int("limit", limit),
			)
			return nil
		}
		if redisClient != nil {
			return ratelimit.NewRedisLimiter(redisClient.Cmdable(), prefix, limit, window)
		}
		return ratelimit.NewMemoryLimiter(limit, window)
	}

	return router.Limiters{
		Global: build("global", constants.KeyRateLimitGlobal, config.RateLimit.Request),
		Auth:   build("auth", constants.KeyRateLimitAuth, config.RateLimit.AuthRequest),
	}
}
