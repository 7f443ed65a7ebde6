package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/mailer"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/validator"
)

type otpService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	hasher    *security.Hasher
	mailer    mailer.Mailer
	limiter   cache.Limiter
	publisher events.EventPublisher
	config    config.OTPConfig

	now      func() time.Time
	generate func() (string, error)
}

func NewOTPService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	hasher *security.Hasher,
	mailer mailer.Mailer,
	limiter cache.Limiter,
	publisher events.EventPublisher,
	config config.OTPConfig,
) OTPService {
	return &otpService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		hasher:    hasher,
		mailer:    mailer,
		limiter:   limiter,
		publisher: publisher,
		config:    config,
		now:       time.Now,
		generate:  security.GenerateOTP,
	}
}

func (s *otpService) Send(ctx context.Context, req *SendOTPRequest) error {
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if !s.allow(ctx, "otp:send:"+req.Email) {
		return ErrTooManyRequests
	}

	code, err := s.generate()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}

	record := &models.OTP{Email: req.Email, CodeHash: hash}
	if s.config.TTL > 0 {
		expiresAt := s.now().Add(s.config.TTL).UTC()
		record.ExpiresAt = &expiresAt
	}

	if err := s.repo.OTP().Create(ctx, record); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, req.Email, code); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	s.logger.Info("OTP sent", "email", req.Email)
	return nil
}

func (s *otpService) Verify(ctx context.Context, req *VerifyOTPRequest) error {
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if !s.allow(ctx, "otp:verify:"+req.Email) {
		return ErrTooManyRequests
	}

	records, err := s.repo.OTP().ListByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("load otps: %w", err)
	}

	now := s.now()
	matched := false
	for _, record := range records {
		if record.Expired(now) {
			continue
		}
		if s.hasher.Matches(record.CodeHash, req.OTP) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrInvalidOTP
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.OTP().DeleteByEmail(ctx, req.Email); err != nil {
			return err
		}
		return tx.User().MarkVerified(ctx, req.Email)
	})
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}

	s.logger.Info("Email verified", "email", req.Email)

	if user, err := s.repo.User().GetByEmail(ctx, req.Email); err == nil {
		publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.UserVerified, events.UserEventData{
			UserID: user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
		})
	}

	return nil
}

func (s *otpService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.OTP().DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge otps: %w", err)
	}
	if removed > 0 {
		s.logger.Info("Expired OTPs purged", "count", removed)
	}
	return removed, nil
}

func (s *otpService) allow(ctx context.Context, key string) bool {
	if s.limiter == nil || s.config.RateLimit <= 0 {
		return true
	}
	return s.limiter.Allow(ctx, key, s.config.RateLimit, s.config.RateWindow)
}
