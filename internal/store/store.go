package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
)

// Store is the persistence boundary for the ledger service. Implementations
// must make every balance-mutating method atomic: callers never compose a
// read-modify-write across calls.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, acct *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByReferralCode(ctx context.Context, code string) (*domain.Account, error)
	ListReferrals(ctx context.Context, code string) ([]domain.Account, error)

	// Balance mutations
	CreditCompletion(ctx context.Context, accountID, assignmentID string, amount decimal.Decimal, description string) (*domain.Account, error)
	CreditBonus(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Account, error)
	ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error)

	// Tasks
	CreateTask(ctx context.Context, task *domain.Task) error
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListAvailableTasks(ctx context.Context, accountID string, now time.Time) ([]domain.Task, error)

	// Assignments
	CreateAssignment(ctx context.Context, a *domain.TaskAssignment) error
	GetAssignment(ctx context.Context, id string) (*domain.TaskAssignment, error)
	ListAssignmentsByAccount(ctx context.Context, accountID string) ([]domain.TaskAssignment, error)
	SettleAssignment(ctx context.Context, id string, status domain.AssignmentStatus, proof string) (*domain.TaskAssignment, error)
	AttachProof(ctx context.Context, id string, proof string) (*domain.TaskAssignment, error)

	// Withdrawals
	CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error
	GetWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error)
	ListWithdrawalsByAccount(ctx context.Context, accountID string) ([]domain.WithdrawalRequest, error)
	ListPendingWithdrawals(ctx context.Context) ([]domain.WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, *domain.Account, error)
	RejectWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error)

	// Admin
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}
