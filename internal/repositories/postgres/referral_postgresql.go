package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

type ReferralPostgreSQL struct {
	db *gorm.DB
}

func NewReferralPostgreSQL(db *gorm.DB) repositories.ReferralRepository {
	return &ReferralPostgreSQL{db: db}
}

func (r *ReferralPostgreSQL) Create(ctx context.Context, referral *models.Referral) error {
	return handleDBError("create referral", r.db.WithContext(ctx).Create(referral).Error)
}

func (r *ReferralPostgreSQL) GetByID(ctx context.Context, id string) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.WithContext(ctx).
		Preload("Job", jobSummaryColumns).
		Preload("Candidate", userSummaryColumns).
		Where("id = ?", id).
		First(&referral).Error
	if err != nil {
		return nil, handleDBError("get referral", err)
	}
	return &referral, nil
}

func (r *ReferralPostgreSQL) UpdateStatus(ctx context.Context, id string, current, next models.ReferralStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, current).
		Update("status", next)
	if res.Error != nil {
		return handleDBError("update referral status", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Referral{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return handleDBError("update referral status", err)
	}
	if count == 0 {
		return handleDBError("update referral status", gorm.ErrRecordNotFound)
	}
	return repositories.ErrStaleWrite
}

func (r *ReferralPostgreSQL) List(ctx context.Context, filters repositories.ReferralFilters) ([]*models.Referral, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Referral{})

	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.ReferredBy != nil {
		query = query.Where("referred_by = ?", *filters.ReferredBy)
	}
	if filters.JobOwner != nil {
		owned := db.Model(&models.Job{}).Select("id").Where("created_by = ?", *filters.JobOwner)
		query = query.Where("job_id IN (?)", owned)
	}

	var referrals []*models.Referral
	err := query.
		Preload("Job", jobSummaryColumns).
		Preload("Candidate", userSummaryColumns).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, handleDBError("list referrals", err)
	}
	return referrals, nil
}
