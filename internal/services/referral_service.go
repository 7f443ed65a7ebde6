package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/validator"
)

type referralService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	store     *storage.FileStore
	publisher events.EventPublisher
}

func NewReferralService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	store *storage.FileStore,
	publisher events.EventPublisher,
) ReferralService {
	return &referralService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		store:     store,
		publisher: publisher,
	}
}

// ===== CREATION =====

func (s *referralService) Apply(ctx context.Context, actor Actor, req *ApplyRequest, resume *multipart.FileHeader) (*models.Referral, error) {
	if actor.Role != models.RoleFresher {
		return nil, NewPermissionError(actor.ID, req.JobID, "referral", "apply", "only freshers can apply")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, ErrResumeRequired
	}

	job, err := s.loadJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsApproved {
		return nil, ErrJobNotFound
	}

	stored, err := saveResume(s.store, resume)
	if err != nil {
		return nil, err
	}

	candidateID := actor.ID
	referral := &models.Referral{
		JobID:          job.ID,
		CandidateID:    &candidateID,
		FullName:       strings.TrimSpace(req.FullName),
		CoverLetter:    optionalText(req.CoverLetter),
		WhyBetter:      strings.TrimSpace(req.WhyBetter),
		ResumeFileName: stored.OriginalName,
		ResumePath:     stored.Path,
		Status:         models.ReferralPending,
	}

	return s.create(ctx, actor, referral)
}

func (s *referralService) CreateReferral(ctx context.Context, actor Actor, req *CreateReferralRequest, resume *multipart.FileHeader) (*models.Referral, error) {
	if !actor.Role.CanManageJobs() {
		return nil, NewPermissionError(actor.ID, req.JobID, "referral", "create", "only employees and admins can refer candidates")
	}
	req.CandidateEmail = normalizeEmail(req.CandidateEmail)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, ErrResumeRequired
	}

	job, err := s.loadJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	stored, err := saveResume(s.store, resume)
	if err != nil {
		return nil, err
	}

	referrerID := actor.ID
	referral := &models.Referral{
		JobID:          job.ID,
		ReferredBy:     &referrerID,
		CandidateName:  strings.TrimSpace(req.CandidateName),
		CandidateEmail: req.CandidateEmail,
		Notes:          optionalText(req.Notes),
		ResumeFileName: stored.OriginalName,
		ResumePath:     stored.Path,
		Status:         models.ReferralPending,
	}

	return s.create(ctx, actor, referral)
}

func (s *referralService) create(ctx context.Context, actor Actor, referral *models.Referral) (*models.Referral, error) {
	if err := s.repo.Referral().Create(ctx, referral); err != nil {
		_ = s.store.Remove(referral.ResumePath)
		return nil, fmt.Errorf("create referral: %w", err)
	}

	s.logger.Info("Referral created", "referral_id", referral.ID, "job_id", referral.JobID, "actor_id", actor.ID)

	publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.ReferralCreated, events.ReferralEventData{
		ReferralID: referral.ID,
		JobID:      referral.JobID,
		ActorID:    actor.ID,
		Status:     string(referral.Status),
	})

	return referral, nil
}

// ===== STATUS =====

func (s *referralService) UpdateStatus(ctx context.Context, actor Actor, id string, req *UpdateStatusRequest) (*models.Referral, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !actor.Role.CanManageJobs() {
		return nil, NewPermissionError(actor.ID, id, "referral", "update_status", "only employees and admins can review referrals")
	}
	if !isValidID(id) {
		return nil, ErrReferralNotFound
	}

	referral, err := s.repo.Referral().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrReferralNotFound)
	}

	if !actor.IsAdmin() && (referral.Job == nil || referral.Job.CreatedBy != actor.ID) {
		return nil, NewPermissionError(actor.ID, id, "referral", "update_status", "referral is not on a job you posted")
	}

	current := referral.Status
	next := models.ReferralStatus(req.Status)
	if current == next {
		return referral, nil
	}
	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(current, next); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConflict, errs[0].Message)
	}

	if err := s.repo.Referral().UpdateStatus(ctx, id, current, next); err != nil {
		if errors.Is(err, repositories.ErrStaleWrite) {
			return nil, fmt.Errorf("%w: referral status changed concurrently", ErrConflict)
		}
		return nil, translateNotFound(err, ErrReferralNotFound)
	}

	s.logger.Info("Referral status updated", "referral_id", id, "from", current, "to", next, "actor_id", actor.ID)

	publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.ReferralStatusChanged, events.ReferralEventData{
		ReferralID: id,
		JobID:      referral.JobID,
		ActorID:    actor.ID,
		Status:     string(next),
		Previous:   string(current),
	})

	updated, err := s.repo.Referral().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrReferralNotFound)
	}
	return updated, nil
}

// ===== READS =====

func (s *referralService) Get(ctx context.Context, actor Actor, id string) (*models.Referral, error) {
	if !isValidID(id) {
		return nil, ErrReferralNotFound
	}
	referral, err := s.repo.Referral().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrReferralNotFound)
	}
	if !canView(actor, referral) {
		return nil, ErrReferralNotFound
	}
	return referral, nil
}

// ListMine returns a fresher's own applications, or the referrals an
// employee or admin submitted.
func (s *referralService) ListMine(ctx context.Context, actor Actor) ([]*models.Referral, error) {
	if actor.Role == models.RoleFresher {
		return s.list(ctx, repositories.ReferralFilters{CandidateID: &actor.ID})
	}
	return s.list(ctx, repositories.ReferralFilters{ReferredBy: &actor.ID})
}

func (s *referralService) ListApplications(ctx context.Context, actor Actor) ([]*models.Referral, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return s.list(ctx, repositories.ReferralFilters{})
	case models.RoleEmployee:
		return s.list(ctx, repositories.ReferralFilters{JobOwner: &actor.ID})
	default:
		return nil, NewPermissionError(actor.ID, "", "referral", "list_applications", "only employees and admins can review applications")
	}
}

func (s *referralService) ListForEmployeeJobs(ctx context.Context, actor Actor) ([]*models.Referral, error) {
	if !actor.Role.CanManageJobs() {
		return nil, NewPermissionError(actor.ID, "", "referral", "list_job_referrals", "only employees and admins post jobs")
	}
	return s.list(ctx, repositories.ReferralFilters{JobOwner: &actor.ID})
}

func (s *referralService) list(ctx context.Context, filters repositories.ReferralFilters) ([]*models.Referral, error) {
	referrals, err := s.repo.Referral().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return nonNil(referrals), nil
}

// ===== HELPERS =====

func (s *referralService) loadJob(ctx context.Context, id string) (*models.Job, error) {
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}
	job, err := s.repo.Job().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}
	return job, nil
}

func canView(actor Actor, referral *models.Referral) bool {
	switch {
	case actor.IsAdmin():
		return true
	case referral.CandidateID != nil && *referral.CandidateID == actor.ID:
		return true
	case referral.ReferredBy != nil && *referral.ReferredBy == actor.ID:
		return true
	case referral.Job != nil && referral.Job.CreatedBy == actor.ID:
		return true
	}
	return false
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
