package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use validator request types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type SendOTPRequest = validator.SendOTPRequest
type VerifyOTPRequest = validator.VerifyOTPRequest
type CreateJobRequest = validator.JobCreateRequest
type ApplyRequest = validator.ApplyRequest
type CreateReferralRequest = validator.ReferralCreateRequest
type UpdateStatusRequest = validator.StatusUpdateRequest
type SendMessageRequest = validator.SendMessageRequest

// Actor is the authenticated caller as carried by the session token
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ===== SERVICES =====

type AuthService interface {
	// Register creates an unverified account. resume may be nil.
	Register(ctx context.Context, req *RegisterRequest, resume *multipart.FileHeader) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type OTPService interface {
	Send(ctx context.Context, req *SendOTPRequest) error
	Verify(ctx context.Context, req *VerifyOTPRequest) error

	// PurgeExpired deletes codes past their expiry and reports how many went.
	PurgeExpired(ctx context.Context) (int64, error)
}

type JobService interface {
	Create(ctx context.Context, actor Actor, req *CreateJobRequest) (*models.Job, error)
	Approve(ctx context.Context, actor Actor, id string) (*models.Job, error)

	// ListOpen returns approved jobs whose deadline has not passed, newest first.
	ListOpen(ctx context.Context) ([]*models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	ListUnapproved(ctx context.Context, actor Actor) ([]*models.Job, error)
	ListMine(ctx context.Context, actor Actor) ([]*models.Job, error)
}

type ReferralService interface {
	Apply(ctx context.Context, actor Actor, req *ApplyRequest, resume *multipart.FileHeader) (*models.Referral, error)
	CreateReferral(ctx context.Context, actor Actor, req *CreateReferralRequest, resume *multipart.FileHeader) (*models.Referral, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req *UpdateStatusRequest) (*models.Referral, error)
	Get(ctx context.Context, actor Actor, id string) (*models.Referral, error)

	// Role-scoped listings
	ListMine(ctx context.Context, actor Actor) ([]*models.Referral, error)
	ListApplications(ctx context.Context, actor Actor) ([]*models.Referral, error)
	ListForEmployeeJobs(ctx context.Context, actor Actor) ([]*models.Referral, error)
}

type ChatService interface {
	Send(ctx context.Context, actor Actor, req *SendMessageRequest) (*models.Message, error)
	History(ctx context.Context, actor Actor, otherUserID string) ([]*models.Message, error)
	Mine(ctx context.Context, actor Actor) ([]*models.Message, error)
	All(ctx context.Context, actor Actor) ([]*models.Message, error)
}

type AdminService interface {
	Logs(ctx context.Context, actor Actor) (*models.AdminLogs, error)

	// ExportLogs writes the same data as Logs as an xlsx workbook.
	ExportLogs(ctx context.Context, actor Actor, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	OTP() OTPService
	Job() JobService
	Referral() ReferralService
	Chat() ChatService
	Admin() AdminService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
