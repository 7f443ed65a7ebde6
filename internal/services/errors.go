package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/validator"
)

// Generic errors
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
)

// Auth errors
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrEmailNotVerified   = fmt.Errorf("%w: email not verified", ErrUnauthorized)
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
)

// Domain errors
var (
	ErrJobNotFound      = fmt.Errorf("%w: job", ErrNotFound)
	ErrReferralNotFound = fmt.Errorf("%w: referral", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrResumeRequired   = fmt.Errorf("%w: resume file is required", ErrBadRequest)
	ErrInvalidResume    = fmt.Errorf("%w: invalid resume file", ErrBadRequest)
)

type ValidationErrors = validator.ValidationErrors

// PermissionError reports an authenticated caller acting outside its role.
// It matches ErrForbidden under errors.Is.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

// translateNotFound maps a repository miss onto the given service error.
func translateNotFound(err error, notFound error) error {
	if repositories.IsNotFoundError(err) {
		return notFound
	}
	return err
}

// isValidID reports whether id has the UUID shape every stored id uses.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
