package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/validator"
)

type chatService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	limiter    cache.Limiter
	rateLimit  int
	rateWindow time.Duration
}

func NewChatService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	limiter cache.Limiter,
	rateLimit int,
	rateWindow time.Duration,
) ChatService {
	return &chatService{
		repo:       repo,
		logger:     logger,
		validator:  validator,
		limiter:    limiter,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
	}
}

func (s *chatService) Send(ctx context.Context, actor Actor, req *SendMessageRequest) (*models.Message, error) {
	req.ReceiverID = strings.TrimSpace(req.ReceiverID)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if s.limiter != nil && s.rateLimit > 0 && !s.limiter.Allow(ctx, "chat:"+actor.ID, s.rateLimit, s.rateWindow) {
		return nil, ErrTooManyRequests
	}
	if !isValidID(req.ReceiverID) {
		return nil, ErrUserNotFound
	}

	receiver, err := s.repo.User().GetByID(ctx, req.ReceiverID)
	if err != nil {
		return nil, translateNotFound(err, ErrUserNotFound)
	}

	msg := &models.Message{
		SenderID:   actor.ID,
		ReceiverID: receiver.ID,
		Message:    req.Message,
	}
	if err := s.repo.Message().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	msg.Receiver = receiver

	s.logger.Debug("Message sent", "message_id", msg.ID, "sender_id", actor.ID, "receiver_id", receiver.ID)
	return msg, nil
}

func (s *chatService) History(ctx context.Context, actor Actor, otherUserID string) ([]*models.Message, error) {
	if !isValidID(otherUserID) {
		return nil, ErrUserNotFound
	}
	messages, err := s.repo.Message().Conversation(ctx, actor.ID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return nonNil(messages), nil
}

func (s *chatService) Mine(ctx context.Context, actor Actor) ([]*models.Message, error) {
	messages, err := s.repo.Message().ForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return nonNil(messages), nil
}

func (s *chatService) All(ctx context.Context, actor Actor) ([]*models.Message, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, "", "chat", "read_all", "only admins can read every conversation")
	}
	messages, err := s.repo.Message().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return nonNil(messages), nil
}
