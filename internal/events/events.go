package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "referral-service"
	EventVersion = "1.0"
)

// Topics
const (
	TopicDomainEvents = "referral.events"
	TopicResumeParse  = "resume.parse"
)

// Event types
const (
	UserRegistered        = "user.registered"
	UserVerified          = "user.verified"
	JobCreated            = "job.created"
	JobApproved           = "job.approved"
	ReferralCreated       = "referral.created"
	ReferralStatusChanged = "referral.status_changed"
	ResumeParseRequested  = "resume.parse_requested"
)

// Event is the envelope every message on the bus carries
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes envelopes to a named topic
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// ===== PAYLOADS =====

type UserEventData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

type JobEventData struct {
	JobID     string `json:"jobId"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	CreatedBy string `json:"createdBy"`
	ActorID   string `json:"actorId"`
}

type ReferralEventData struct {
	ReferralID string `json:"referralId"`
	JobID      string `json:"jobId"`
	ActorID    string `json:"actorId"`
	Status     string `json:"status"`
	Previous   string `json:"previous,omitempty"`
}
