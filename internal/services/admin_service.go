package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
)

const exportTimeLayout = "2006-01-02 15:04:05"

type adminService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAdminService(repo repositories.Repository, logger *slog.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) Logs(ctx context.Context, actor Actor) (*models.AdminLogs, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, "", "admin_logs", "read", "only admins can read logs")
	}

	users, err := s.repo.User().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	jobs, err := s.repo.Job().List(ctx, repositories.JobFilters{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	referrals, err := s.repo.Referral().List(ctx, repositories.ReferralFilters{})
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}

	return &models.AdminLogs{
		Users:     nonNil(users),
		Jobs:      nonNil(jobs),
		Referrals: nonNil(referrals),
	}, nil
}

func (s *adminService) ExportLogs(ctx context.Context, actor Actor, w io.Writer) error {
	logs, err := s.Logs(ctx, actor)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Users"); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	userRows := [][]interface{}{{"ID", "Name", "Email", "Role", "Verified", "Created At"}}
	for _, u := range logs.Users {
		userRows = append(userRows, []interface{}{u.ID, u.Name, u.Email, string(u.Role), u.IsVerified, u.CreatedAt.UTC().Format(exportTimeLayout)})
	}
	if err := writeSheet(f, "Users", userRows); err != nil {
		return err
	}

	jobRows := [][]interface{}{{"ID", "Title", "Company", "Location", "Deadline", "Skills", "Approved", "Created By", "Created At"}}
	for _, j := range logs.Jobs {
		jobRows = append(jobRows, []interface{}{
			j.ID, j.Title, j.Company, j.Location, j.Deadline.UTC().Format(exportTimeLayout),
			strings.Join([]string(j.Skills), ", "), j.IsApproved, j.CreatedBy, j.CreatedAt.UTC().Format(exportTimeLayout),
		})
	}
	if _, err := f.NewSheet("Jobs"); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if err := writeSheet(f, "Jobs", jobRows); err != nil {
		return err
	}

	referralRows := [][]interface{}{{"ID", "Job", "Candidate", "Candidate Email", "Referred By", "Status", "Resume", "Created At"}}
	for _, r := range logs.Referrals {
		jobTitle := ""
		if r.Job != nil {
			jobTitle = r.Job.Title
		}
		name, email := r.CandidateName, r.CandidateEmail
		if r.Candidate != nil {
			name, email = r.Candidate.Name, r.Candidate.Email
		}
		if name == "" {
			name = r.FullName
		}
		referredBy := ""
		if r.ReferredBy != nil {
			referredBy = *r.ReferredBy
		}
		referralRows = append(referralRows, []interface{}{
			r.ID, jobTitle, name, email, referredBy, string(r.Status), r.ResumeFileName, r.CreatedAt.UTC().Format(exportTimeLayout),
		})
	}
	if _, err := f.NewSheet("Referrals"); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if err := writeSheet(f, "Referrals", referralRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Admin logs exported", "admin_id", actor.ID,
		"users", len(logs.Users), "jobs", len(logs.Jobs), "referrals", len(logs.Referrals))
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
