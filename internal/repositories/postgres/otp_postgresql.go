package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

type OTPPostgreSQL struct {
	db *gorm.DB
}

func NewOTPPostgreSQL(db *gorm.DB) repositories.OTPRepository {
	return &OTPPostgreSQL{db: db}
}

func (o *OTPPostgreSQL) Create(ctx context.Context, otp *models.OTP) error {
	return handleDBError("create otp", o.db.WithContext(ctx).Create(otp).Error)
}

func (o *OTPPostgreSQL) ListByEmail(ctx context.Context, email string) ([]*models.OTP, error) {
	var otps []*models.OTP
	err := o.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&otps).Error
	if err != nil {
		return nil, handleDBError("list otps", err)
	}
	return otps, nil
}

func (o *OTPPostgreSQL) DeleteByEmail(ctx context.Context, email string) error {
	return handleDBError("delete otps", o.db.WithContext(ctx).Where("email = ?", email).Delete(&models.OTP{}).Error)
}

func (o *OTPPostgreSQL) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := o.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", before).
		Delete(&models.OTP{})
	if res.Error != nil {
		return 0, handleDBError("delete expired otps", res.Error)
	}
	return res.RowsAffected, nil
}
