package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/referral-portal/referral-service/internal/models"
)

func seedAdminData(t *testing.T) (*testEnv, Actor, Actor) {
	t.Helper()
	f := newReferralFixture(t)
	f.apply(t, f.fresher)
	return f.env, f.admin, f.owner
}

func TestAdminService_Logs(t *testing.T) {
	env, admin, owner := seedAdminData(t)
	ctx := context.Background()

	if _, err := env.sm.Admin().Logs(ctx, owner); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee should be forbidden, got %v", err)
	}

	logs, err := env.sm.Admin().Logs(ctx, admin)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs.Users) != 5 || len(logs.Jobs) != 1 || len(logs.Referrals) != 1 {
		t.Fatalf("unexpected counts users=%d jobs=%d referrals=%d", len(logs.Users), len(logs.Jobs), len(logs.Referrals))
	}

	ref := logs.Referrals[0]
	if ref.Job == nil || ref.Job.Title != "Platform Engineer" {
		t.Fatalf("referral job summary missing")
	}
	if ref.Candidate == nil || ref.Candidate.Email != "fresh@example.com" {
		t.Fatalf("referral candidate summary missing")
	}

	raw, err := json.Marshal(logs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("admin logs must not include passwords")
	}
}

func TestAdminService_ExportLogs(t *testing.T) {
	env, admin, owner := seedAdminData(t)
	ctx := context.Background()

	var denied bytes.Buffer
	if err := env.sm.Admin().ExportLogs(ctx, owner, &denied); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee export should be forbidden, got %v", err)
	}
	if denied.Len() != 0 {
		t.Fatalf("nothing should be written on a denied export")
	}

	var buf bytes.Buffer
	if err := env.sm.Admin().ExportLogs(ctx, admin, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	want := map[string]int{"Users": 6, "Jobs": 2, "Referrals": 2}
	for sheet, rows := range want {
		got, err := book.GetRows(sheet)
		if err != nil {
			t.Fatalf("rows of %s: %v", sheet, err)
		}
		if len(got) != rows {
			t.Fatalf("%s: expected %d rows including header, got %d", sheet, rows, len(got))
		}
	}

	refRows, _ := book.GetRows("Referrals")
	if refRows[1][1] != "Platform Engineer" || refRows[1][5] != string(models.ReferralPending) {
		t.Fatalf("unexpected referral row %v", refRows[1])
	}
}
