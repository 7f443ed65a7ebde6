package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is an append-only direct message between two users.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID   string    `json:"senderId" gorm:"not null;index;size:36"`
	ReceiverID string    `json:"receiverId" gorm:"not null;index;size:36"`
	Message    string    `json:"message" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`

	Sender   *User `json:"sender,omitempty" gorm:"foreignKey:SenderID;references:ID"`
	Receiver *User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID;references:ID"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	type message Message
	return json.Marshal(struct {
		message
		Sender   *UserSummary `json:"sender,omitempty"`
		Receiver *UserSummary `json:"receiver,omitempty"`
	}{message: message(m), Sender: m.Sender.Summary(), Receiver: m.Receiver.Summary()})
}
