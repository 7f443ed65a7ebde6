package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralAccepted ReferralStatus = "accepted"
	ReferralRejected ReferralStatus = "rejected"
)

func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralPending, ReferralAccepted, ReferralRejected:
		return true
	}
	return false
}

// referralTransitions lists the statuses reachable from each status.
// Accepted and rejected are terminal.
var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralPending:  {ReferralAccepted, ReferralRejected},
	ReferralAccepted: {},
	ReferralRejected: {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Re-applying the current status is treated as a no-op and allowed.
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Referral struct {
	ID    string `json:"id" gorm:"primaryKey;size:36"`
	JobID string `json:"jobId" gorm:"not null;index;size:36"`

	// Self-application path
	CandidateID *string `json:"candidateId,omitempty" gorm:"index;size:36"`
	FullName    string  `json:"fullName" gorm:"size:200"`
	CoverLetter *string `json:"coverLetter,omitempty" gorm:"type:text"`
	WhyBetter   string  `json:"whyBetter" gorm:"type:text"`

	// Employee referral path
	ReferredBy     *string `json:"referredBy,omitempty" gorm:"index;size:36"`
	CandidateName  string  `json:"candidateName,omitempty" gorm:"size:200"`
	CandidateEmail string  `json:"candidateEmail,omitempty" gorm:"size:255"`
	Notes          *string `json:"notes,omitempty" gorm:"type:text"`

	ResumeFileName string         `json:"resumeFileName" gorm:"not null;size:255"`
	ResumePath     string         `json:"-" gorm:"not null;size:500"`
	Status         ReferralStatus `json:"status" gorm:"not null;size:20;default:pending;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Job       *Job  `json:"job,omitempty" gorm:"foreignKey:JobID;references:ID"`
	Candidate *User `json:"candidate,omitempty" gorm:"foreignKey:CandidateID;references:ID"`
}

func (Referral) TableName() string {
	return "referrals"
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ReferralPending
	}
	return nil
}

// MarshalJSON embeds the job and candidate as summaries.
func (r Referral) MarshalJSON() ([]byte, error) {
	type referral Referral
	return json.Marshal(struct {
		referral
		Job       *JobSummary  `json:"job,omitempty"`
		Candidate *UserSummary `json:"candidate,omitempty"`
	}{referral: referral(r), Job: r.Job.Summary(), Candidate: r.Candidate.Summary()})
}
