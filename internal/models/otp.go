package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP stores the bcrypt hash of a one-time email verification code.
// A zero ExpiresAt means the code never expires by time.
type OTP struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Email     string     `json:"email" gorm:"not null;index;size:255"`
	CodeHash  string     `json:"-" gorm:"column:code_hash;not null"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}
