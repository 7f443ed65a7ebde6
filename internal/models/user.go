package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleFresher  UserRole = "fresher"
	RoleEmployee UserRole = "employee"
	RoleAdmin    UserRole = "admin"
)

// ParseRole converts a stored or token-carried role string into the closed role set.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFresher:
		return RoleFresher, true
	case RoleEmployee:
		return RoleEmployee, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// ParseSignupRole maps an untrusted registration role. Admin can never be self-assigned,
// anything outside {fresher, employee} falls back to fresher.
func ParseSignupRole(s string) UserRole {
	role, ok := ParseRole(s)
	if !ok || role == RoleAdmin {
		return RoleFresher
	}
	return role
}

func (r UserRole) IsValid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// CanManageJobs reports whether the role may post jobs and moderate referrals.
func (r UserRole) CanManageJobs() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:36"`
	Name         string   `json:"name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"column:password_hash;not null"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:fresher;index"`
	IsVerified   bool     `json:"isVerified" gorm:"not null;default:false"`

	// Resume
	ResumePath   *string        `json:"resume,omitempty" gorm:"size:500"`
	ParsedResume datatypes.JSON `json:"parsedResume,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the reference shape embedded in jobs, referrals and messages.
type UserSummary struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
