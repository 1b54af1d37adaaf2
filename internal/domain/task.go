package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskType string

const (
	TaskTypeVideo        TaskType = "video"
	TaskTypeSocialFollow TaskType = "social_follow"
	TaskTypeSurvey       TaskType = "survey"
	TaskTypeWebsiteVisit TaskType = "website_visit"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeVideo, TaskTypeSocialFollow, TaskTypeSurvey, TaskTypeWebsiteVisit:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusActive   TaskStatus = "active"
	TaskStatusInactive TaskStatus = "inactive"
)

type VerificationMethod string

const (
	VerifyAuto       VerificationMethod = "auto"
	VerifyCode       VerificationMethod = "code"
	VerifyScreenshot VerificationMethod = "screenshot"
)

type TaskRequirements struct {
	MinDurationSeconds int                `json:"min_duration_seconds,omitempty"`
	VerificationMethod VerificationMethod `json:"verification_method,omitempty"`
	VerificationCode   string             `json:"verification_code,omitempty"`
}

type Task struct {
	ID           string
	Title        string
	Description  string
	Type         TaskType
	Reward       decimal.Decimal
	Status       TaskStatus
	URL          string
	ExpiresAt    *time.Time
	Requirements *TaskRequirements
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Task) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// Assignable reports whether the task may be started right now.
func (t *Task) Assignable(now time.Time) bool {
	return t.Status == TaskStatusActive && !t.Expired(now)
}

// Verification returns the task's verification method, defaulting to
// screenshot review when no requirements are set.
func (t *Task) Verification() VerificationMethod {
	if t.Requirements == nil || t.Requirements.VerificationMethod == "" {
		return VerifyScreenshot
	}
	return t.Requirements.VerificationMethod
}
