package repositories

import (
	"context"

	"github.com/referral-portal/referral-service/internal/models"
	"gorm.io/datatypes"
)

// UserRepository is the owner of account data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// MarkVerified sets is_verified for the account with the given email.
	MarkVerified(ctx context.Context, email string) error
	SetParsedResume(ctx context.Context, id string, parsed datatypes.JSON) error

	List(ctx context.Context) ([]*models.User, error)
}
