package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentRejected  AssignmentStatus = "rejected"
)

// TaskAssignment is one account's attempt at a task. Reward is snapshotted
// from the task at start time so later reward edits cannot change what a
// completion pays out.
type TaskAssignment struct {
	ID          string
	AccountID   string
	TaskID      string
	Status      AssignmentStatus
	Reward      decimal.Decimal
	Proof       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

func (a *TaskAssignment) Terminal() bool {
	return a.Status != AssignmentPending
}
