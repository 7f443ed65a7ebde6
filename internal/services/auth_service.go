package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	hasher    *security.Hasher
	tokens    *security.JWTProvider
	store     *storage.FileStore
	publisher events.EventPublisher
}

func NewAuthService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	hasher *security.Hasher,
	tokens *security.JWTProvider,
	store *storage.FileStore,
	publisher events.EventPublisher,
) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		hasher:    hasher,
		tokens:    tokens,
		store:     store,
		publisher: publisher,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest, resume *multipart.FileHeader) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.ParseSignupRole(req.Role),
	}

	var stored *storage.StoredFile
	if resume != nil {
		stored, err = saveResume(s.store, resume)
		if err != nil {
			return nil, err
		}
		user.ResumePath = &stored.Path
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if stored != nil {
			_ = s.store.Remove(stored.Path)
		}
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)

	publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.UserRegistered, events.UserEventData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	if stored != nil {
		publishEvent(ctx, s.logger, s.publisher, events.TopicResumeParse, events.ResumeParseRequested, models.ResumeParseTask{
			UserID:     user.ID,
			ResumePath: stored.Path,
			QueuedAt:   time.Now().UTC(),
		})
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Matches(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	if !isValidID(userID) {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

// ===== HELPERS =====

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// saveResume stores an upload, reporting rejected files as bad requests.
func saveResume(store *storage.FileStore, header *multipart.FileHeader) (*storage.StoredFile, error) {
	stored, err := store.SaveResume(header)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrUnsupportedFile) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResume, err)
		}
		return nil, fmt.Errorf("store resume: %w", err)
	}
	return stored, nil
}
