package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/handlers"
	"github.com/referral-portal/referral-service/internal/mailer"
	"github.com/referral-portal/referral-service/internal/repositories/postgres"
	"github.com/referral-portal/referral-service/internal/resumeparser"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/utils"
	"github.com/referral-portal/referral-service/internal/validator"
	"github.com/referral-portal/referral-service/internal/worker"
	"github.com/referral-portal/referral-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache and rate limits", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		JobCacheTTL: cfg.JobListCacheTTL,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Event bus: Kafka when brokers are configured, in-process otherwise
	bus, err := events.NewBus(events.BusConfig{
		KafkaBrokers:  cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	logger.Info("Event bus ready", "transport", bus.Transport())

	store, err := storage.NewFileStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	tokens := security.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTExpires)

	var limiter cache.Limiter
	if redisClient != nil {
		limiter = cache.NewRedisLimiter(redisClient)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:        repo,
		RepoManager: repoManager,
		Logger:      slogLogger,
		Validator:   validator.New(),
		Publisher:   events.NewWatermillEventPublisher(bus.Publisher, slogLogger),
		Mailer:      mailer.New(cfg.SMTP, slogLogger),
		Store:       store,
		Tokens:      tokens,
		Hasher:      security.NewHasher(cfg.Auth.BcryptCost),
		Limiter:     limiter,
	}, services.NewServiceManagerConfig(cfg))
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Resume worker
	var parser worker.ResumeParser
	if cfg.ResumeParserURL != "" {
		parser = resumeparser.NewClient(cfg.ResumeParserURL, 0)
	}
	resumeWorker := worker.NewResumeWorker(bus.Subscriber, repo.User(), store, parser, slogLogger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := resumeWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Resume worker stopped", "error", err)
		}
	}()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.CORSAllowedOrigins)

	handlerManager := handlers.NewHandlerManager(serviceManager, tokens, limiter, logger, handlers.HandlerConfig{
		ExposeErrors:   !cfg.IsProduction(),
		AuthRateLimit:  cfg.Limits.AuthRequests,
		AuthRateWindow: cfg.Limits.AuthWindow,
	})
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopWorker()
	workers.Wait()

	if err := bus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	// Closes the database and redis through the repository manager
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
}
