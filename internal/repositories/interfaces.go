package repositories

import (
	"context"
	"time"

	"github.com/referral-portal/referral-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type JobFilters struct {
	Approved   *bool   `json:"approved"`
	CreatedBy  *string `json:"created_by"`
	WithAuthor bool    `json:"with_author"`
}

type ReferralFilters struct {
	CandidateID *string `json:"candidate_id"`
	ReferredBy  *string `json:"referred_by"`
	// JobOwner matches referrals on jobs created by the user.
	JobOwner *string `json:"job_owner"`
}

// ===== REPOSITORIES =====

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIDWithCreator(ctx context.Context, id string) (*models.Job, error)

	// SetApproved updates is_approved and reports whether the stored value changed.
	SetApproved(ctx context.Context, id string) (bool, error)

	// List returns jobs matching filters, newest first.
	List(ctx context.Context, filters JobFilters) ([]*models.Job, error)

	// ListApproved returns every approved job, newest first, served from the
	// job board cache when one is configured. Callers filter by deadline.
	ListApproved(ctx context.Context) ([]*models.Job, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id string) (*models.Referral, error)

	// UpdateStatus writes next only if the stored status still equals current.
	// It returns ErrStaleWrite when another writer got there first.
	UpdateStatus(ctx context.Context, id string, current, next models.ReferralStatus) error

	// List returns referrals matching filters with job and candidate preloaded, newest first.
	List(ctx context.Context, filters ReferralFilters) ([]*models.Referral, error)
}

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	ListByEmail(ctx context.Context, email string) ([]*models.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error

	// Conversation returns messages exchanged between a and b, oldest first.
	Conversation(ctx context.Context, a, b string) ([]*models.Message, error)
	// ForUser returns messages sent or received by userID, oldest first.
	ForUser(ctx context.Context, userID string) ([]*models.Message, error)
	All(ctx context.Context) ([]*models.Message, error)
}
