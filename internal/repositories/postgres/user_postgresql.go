package postgres

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return handleDBError("create user", u.db.WithContext(ctx).Create(user).Error)
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError("get user", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, handleDBError("get user by email", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, handleDBError("check user email", err)
	}
	return count > 0, nil
}

// MarkVerified flips is_verified for the account. A missing account is not an
// error: codes can be sent to addresses that never registered.
func (u *UserPostgreSQL) MarkVerified(ctx context.Context, email string) error {
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Update("is_verified", true).Error
	return handleDBError("mark user verified", err)
}

func (u *UserPostgreSQL) SetParsedResume(ctx context.Context, id string, parsed datatypes.JSON) error {
	res := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("parsed_resume", parsed)
	if res.Error != nil {
		return handleDBError("store parsed resume", res.Error)
	}
	if res.RowsAffected == 0 {
		return handleDBError("store parsed resume", gorm.ErrRecordNotFound)
	}
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := u.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, handleDBError("list users", err)
	}
	return users, nil
}
