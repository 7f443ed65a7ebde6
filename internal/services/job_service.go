package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/validator"
)

type jobService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewJobService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) JobService {
	return &jobService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *jobService) Create(ctx context.Context, actor Actor, req *CreateJobRequest) (*models.Job, error) {
	if !actor.Role.CanManageJobs() {
		return nil, NewPermissionError(actor.ID, "", "job", "create", "only employees and admins can post jobs")
	}

	deadline, errs := s.validator.GetBusinessValidator().ValidateJobCreate(req)
	if len(errs) > 0 {
		return nil, errs
	}

	skills := make([]string, 0, len(req.Skills))
	for _, skill := range req.Skills {
		skills = append(skills, strings.TrimSpace(skill))
	}

	job := &models.Job{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Deadline:    deadline,
		Skills:      skills,
		URL:         strings.TrimSpace(req.URL),
		IsApproved:  false,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Job().Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info("Job created", "job_id", job.ID, "created_by", actor.ID)

	publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.JobCreated, events.JobEventData{
		JobID:     job.ID,
		Title:     job.Title,
		Company:   job.Company,
		CreatedBy: job.CreatedBy,
		ActorID:   actor.ID,
	})

	return job, nil
}

func (s *jobService) Approve(ctx context.Context, actor Actor, id string) (*models.Job, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "job", "approve", "only admins can approve jobs")
	}
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}

	changed, err := s.repo.Job().SetApproved(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}

	job, err := s.repo.Job().GetByIDWithCreator(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}

	if changed {
		s.logger.Info("Job approved", "job_id", id, "approved_by", actor.ID)
		publishEvent(ctx, s.logger, s.publisher, events.TopicDomainEvents, events.JobApproved, events.JobEventData{
			JobID:     job.ID,
			Title:     job.Title,
			Company:   job.Company,
			CreatedBy: job.CreatedBy,
			ActorID:   actor.ID,
		})
	}

	return job, nil
}

func (s *jobService) ListOpen(ctx context.Context) ([]*models.Job, error) {
	approved, err := s.repo.Job().ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved jobs: %w", err)
	}

	now := s.now()
	open := make([]*models.Job, 0, len(approved))
	for _, job := range approved {
		if job.IsOpen(now) {
			open = append(open, job)
		}
	}
	return open, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*models.Job, error) {
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}
	job, err := s.repo.Job().GetByIDWithCreator(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}
	return job, nil
}

func (s *jobService) ListUnapproved(ctx context.Context, actor Actor) ([]*models.Job, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, "", "job", "list_unapproved", "only admins can review pending jobs")
	}

	approved := false
	jobs, err := s.repo.Job().List(ctx, repositories.JobFilters{Approved: &approved, WithAuthor: true})
	if err != nil {
		return nil, fmt.Errorf("list unapproved jobs: %w", err)
	}
	return nonNil(jobs), nil
}

func (s *jobService) ListMine(ctx context.Context, actor Actor) ([]*models.Job, error) {
	if !actor.Role.CanManageJobs() {
		return nil, NewPermissionError(actor.ID, "", "job", "list_mine", "only employees and admins post jobs")
	}

	jobs, err := s.repo.Job().List(ctx, repositories.JobFilters{CreatedBy: &actor.ID})
	if err != nil {
		return nil, fmt.Errorf("list own jobs: %w", err)
	}
	return nonNil(jobs), nil
}
