package models

import "time"

// ===== AUTH RESPONSES =====

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *UserSummary `json:"user"`
}

// ===== ADMIN RESPONSES =====

type AdminLogs struct {
	Users     []*User     `json:"users"`
	Jobs      []*Job      `json:"jobs"`
	Referrals []*Referral `json:"referrals"`
}

// ===== EVENT PAYLOADS =====

type ResumeParseTask struct {
	UserID     string    `json:"userId"`
	ResumePath string    `json:"resumePath"`
	QueuedAt   time.Time `json:"queuedAt"`
}
