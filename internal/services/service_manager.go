package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/mailer"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/validator"
)

// ServiceManagerConfig holds the tunables services read at construction
type ServiceManagerConfig struct {
	OTP config.OTPConfig

	ChatRateLimit  int
	ChatRateWindow time.Duration
}

// NewServiceManagerConfig derives service settings from the process config
func NewServiceManagerConfig(cfg *config.Config) ServiceManagerConfig {
	return ServiceManagerConfig{
		OTP:            cfg.OTP,
		ChatRateLimit:  cfg.Limits.ChatMessages,
		ChatRateWindow: cfg.Limits.ChatWindow,
	}
}

// Dependencies are the collaborators shared by every service
type Dependencies struct {
	Repo        repositories.Repository
	RepoManager repositories.RepositoryManager // optional, used for health and shutdown
	Logger      *slog.Logger
	Validator   *validator.Validator
	Publisher   events.EventPublisher
	Mailer      mailer.Mailer
	Store       *storage.FileStore
	Tokens      *security.JWTProvider
	Hasher      *security.Hasher
	Limiter     cache.Limiter
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	// Service instances
	authService     AuthService
	otpService      OTPService
	jobService      JobService
	referralService ReferralService
	chatService     ChatService
	adminService    AdminService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &serviceManager{deps: deps, config: config}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if err := sm.validateDependencies(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Logger, d.Validator, d.Hasher, d.Tokens, d.Store, d.Publisher)
	sm.otpService = NewOTPService(d.Repo, d.Logger, d.Validator, d.Hasher, d.Mailer, d.Limiter, d.Publisher, sm.config.OTP)
	sm.jobService = NewJobService(d.Repo, d.Logger, d.Validator, d.Publisher)
	sm.referralService = NewReferralService(d.Repo, d.Logger, d.Validator, d.Store, d.Publisher)
	sm.chatService = NewChatService(d.Repo, d.Logger, d.Validator, d.Limiter, sm.config.ChatRateLimit, sm.config.ChatRateWindow)
	sm.adminService = NewAdminService(d.Repo, d.Logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) validateDependencies() error {
	switch {
	case sm.deps.Repo == nil:
		return fmt.Errorf("repository is required")
	case sm.deps.Hasher == nil:
		return fmt.Errorf("password hasher is required")
	case sm.deps.Tokens == nil:
		return fmt.Errorf("token provider is required")
	case sm.deps.Store == nil:
		return fmt.Errorf("file store is required")
	case sm.deps.Mailer == nil:
		return fmt.Errorf("mailer is required")
	}
	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) OTP() OTPService {
	sm.mustBeInitialized()
	return sm.otpService
}

func (sm *serviceManager) Job() JobService {
	sm.mustBeInitialized()
	return sm.jobService
}

func (sm *serviceManager) Referral() ReferralService {
	sm.mustBeInitialized()
	return sm.referralService
}

func (sm *serviceManager) Chat() ChatService {
	sm.mustBeInitialized()
	return sm.chatService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mustBeInitialized()
	return sm.adminService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.deps.RepoManager != nil {
		if err := sm.deps.RepoManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
		return nil
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if sm.deps.RepoManager != nil {
		if err := sm.deps.RepoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// ===== SHARED HELPERS =====

// publishEvent sends a domain event. Failures are logged and never returned.
func publishEvent(ctx context.Context, logger *slog.Logger, publisher events.EventPublisher, topic, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "topic", topic, "error", err)
	}
}

// nonNil keeps empty listings encoding as [] rather than null.
func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
