package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

const approvedJobsKey = "list:approved"

type JobPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewJobPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.JobRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil, 0)
	}
	return &JobPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (j *JobPostgreSQL) Create(ctx context.Context, job *models.Job) error {
	if err := j.db.WithContext(ctx).Create(job).Error; err != nil {
		return handleDBError("create job", err)
	}
	if job.IsApproved {
		cache.InvalidateJobBoard(ctx, j.cacheManager)
	}
	return nil
}

func (j *JobPostgreSQL) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := j.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, handleDBError("get job", err)
	}
	return &job, nil
}

func (j *JobPostgreSQL) GetByIDWithCreator(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := j.db.WithContext(ctx).
		Preload("Creator", userSummaryColumns).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, handleDBError("get job with creator", err)
	}
	return &job, nil
}

// SetApproved marks the job approved. The conditional write makes the
// false to true edge observable to exactly one caller.
func (j *JobPostgreSQL) SetApproved(ctx context.Context, id string) (bool, error) {
	res := j.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	if res.Error != nil {
		return false, handleDBError("approve job", res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := j.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}

	cache.InvalidateJobBoard(ctx, j.cacheManager)
	return true, nil
}

func (j *JobPostgreSQL) List(ctx context.Context, filters repositories.JobFilters) ([]*models.Job, error) {
	query := j.db.WithContext(ctx).Model(&models.Job{})

	if filters.Approved != nil {
		query = query.Where("is_approved = ?", *filters.Approved)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.WithAuthor {
		query = query.Preload("Creator", userSummaryColumns)
	}

	var jobs []*models.Job
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, handleDBError("list jobs", err)
	}
	return jobs, nil
}

func (j *JobPostgreSQL) ListApproved(ctx context.Context) ([]*models.Job, error) {
	var jobs []*models.Job
	approved := true

	err := j.cacheManager.Jobs.CacheOrExecute(ctx, approvedJobsKey, &jobs, j.cacheManager.JobTTL, func() (interface{}, error) {
		return j.List(ctx, repositories.JobFilters{Approved: &approved})
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
