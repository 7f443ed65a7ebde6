package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

// userSummaryColumns limits preloaded user relations to their public fields
func userSummaryColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

// jobSummaryColumns limits preloaded job relations to what listings render
func jobSummaryColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "company", "location", "deadline", "created_by", "is_approved")
}

// handleDBError maps gorm errors onto repository sentinels
func handleDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s failed: %w", op, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s failed: %w", op, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("%s failed: %w", op, err)
	}
}

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Referral{},
		&models.OTP{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
