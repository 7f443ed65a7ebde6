package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Job struct {
	ID          string                      `json:"id" gorm:"primaryKey;size:36"`
	Title       string                      `json:"title" gorm:"not null;size:200"`
	Company     string                      `json:"company" gorm:"not null;size:200"`
	Description string                      `json:"description" gorm:"type:text;not null"`
	Location    string                      `json:"location" gorm:"size:200"`
	Deadline    time.Time                   `json:"deadline" gorm:"not null;index"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`
	URL         string                      `json:"url" gorm:"size:500"`
	IsApproved  bool                        `json:"isApproved" gorm:"not null;default:false;index"`

	// Metadata
	CreatedBy string    `json:"createdBy" gorm:"not null;index;size:36"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy;references:ID"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// MarshalJSON renders the creator as a summary.
func (j Job) MarshalJSON() ([]byte, error) {
	type job Job
	return json.Marshal(struct {
		job
		Creator *UserSummary `json:"creator,omitempty"`
	}{job: job(j), Creator: j.Creator.Summary()})
}

// IsOpen reports whether the job is visible on the public board at the given instant.
func (j *Job) IsOpen(now time.Time) bool {
	return j.IsApproved && !j.Deadline.Before(now)
}

// JobSummary is the reference shape embedded in referrals.
type JobSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location"`
	Deadline time.Time `json:"deadline"`
}

func (j *Job) Summary() *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{ID: j.ID, Title: j.Title, Company: j.Company, Location: j.Location, Deadline: j.Deadline}
}
