package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

type MessagePostgreSQL struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &MessagePostgreSQL{db: db}
}

func (m *MessagePostgreSQL) Create(ctx context.Context, message *models.Message) error {
	return handleDBError("create message", m.db.WithContext(ctx).Create(message).Error)
}

// withParticipants preloads both ends and orders the log chronologically
func (m *MessagePostgreSQL) withParticipants(ctx context.Context) *gorm.DB {
	return m.db.WithContext(ctx).
		Preload("Sender", userSummaryColumns).
		Preload("Receiver", userSummaryColumns).
		Order("created_at ASC")
}

func (m *MessagePostgreSQL) Conversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	var messages []*models.Message
	err := m.withParticipants(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Find(&messages).Error
	if err != nil {
		return nil, handleDBError("load conversation", err)
	}
	return messages, nil
}

func (m *MessagePostgreSQL) ForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	var messages []*models.Message
	err := m.withParticipants(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&messages).Error
	if err != nil {
		return nil, handleDBError("load user messages", err)
	}
	return messages, nil
}

func (m *MessagePostgreSQL) All(ctx context.Context) ([]*models.Message, error) {
	var messages []*models.Message
	if err := m.withParticipants(ctx).Find(&messages).Error; err != nil {
		return nil, handleDBError("load all messages", err)
	}
	return messages, nil
}
