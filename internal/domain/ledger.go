package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"
)

// LedgerEntry records a single balance mutation. AssignmentID and
// WithdrawalID carry unique constraints so the same completion or withdrawal
// can never move a balance twice.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Amount       decimal.Decimal
	Type         EntryType
	Description  string
	AssignmentID *string
	WithdrawalID *string
	CreatedAt    time.Time
}

type DashboardStats struct {
	TotalUsers           int
	ActiveTasks          int
	CompletedAssignments int
	TotalPayout          decimal.Decimal
	PendingWithdrawals   int
	PendingWithdrawalSum decimal.Decimal
}
