package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/store"
)

// LedgerService is the single authority over account balances. Nothing else
// in the codebase credits or debits an account.
type LedgerService struct {
	store store.Store
}

func NewLedgerService(st store.Store) *LedgerService {
	return &LedgerService{store: st}
}

// CreditForCompletion pays out a completed assignment's reward snapshot.
// Idempotent per assignment: a repeat call returns ErrAlreadyCredited and
// leaves the balance alone.
func (s *LedgerService) CreditForCompletion(ctx context.Context, a *domain.TaskAssignment) (*domain.Account, error) {
	if a.Status != domain.AssignmentCompleted {
		return nil, domain.ErrAssignmentNotCompleted
	}

	desc := fmt.Sprintf("Task reward: %s", a.TaskID)
	var acct *domain.Account
	err := retryRepo(ctx, func() error {
		var err error
		acct, err = s.store.CreditCompletion(ctx, a.AccountID, a.ID, a.Reward, desc)
		return err
	})
	return acct, err
}

// ReserveForWithdrawal validates and records a pending withdrawal request.
// The balance is not debited here; funds leave the account only when an
// administrator approves the request.
func (s *LedgerService) ReserveForWithdrawal(ctx context.Context, accountID string, amount decimal.Decimal, method domain.PaymentMethod) (*domain.WithdrawalRequest, error) {
	if !amount.Equal(amount.Round(2)) || amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if amount.LessThan(config.MinWithdrawal) {
		return nil, domain.ErrBelowMinimum
	}
	if strings.TrimSpace(method.Type) == "" || strings.TrimSpace(method.Destination) == "" {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrInvalidInput)
	}

	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(acct.Balance) {
		return nil, domain.ErrInsufficientBalance
	}

	w := &domain.WithdrawalRequest{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Method:    method,
		Status:    domain.WithdrawalPending,
	}
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ResolveWithdrawal settles a pending request. Approval debits the balance
// atomically and fails with ErrInsufficientBalance if the balance has dropped
// since the request was made; rejection never touches the balance. Either
// way the request becomes terminal, and a second resolution attempt returns
// ErrWithdrawalResolved.
func (s *LedgerService) ResolveWithdrawal(ctx context.Context, actor domain.Actor, requestID string, decision domain.WithdrawalDecision) (*domain.WithdrawalRequest, *domain.Account, error) {
	if !actor.IsAdmin() {
		return nil, nil, domain.ErrNotAdmin
	}
	if !decision.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidInput, decision)
	}

	var (
		w    *domain.WithdrawalRequest
		acct *domain.Account
	)
	err := retryRepo(ctx, func() error {
		var err error
		if decision == domain.DecisionApprove {
			w, acct, err = s.store.ApproveWithdrawal(ctx, requestID)
		} else {
			w, err = s.store.RejectWithdrawal(ctx, requestID)
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return w, acct, nil
}

func (s *LedgerService) Withdrawals(ctx context.Context, accountID string) ([]domain.WithdrawalRequest, error) {
	return s.store.ListWithdrawalsByAccount(ctx, accountID)
}

func (s *LedgerService) PendingWithdrawals(ctx context.Context, actor domain.Actor) ([]domain.WithdrawalRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	return s.store.ListPendingWithdrawals(ctx)
}

func (s *LedgerService) Stats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	var stats *domain.DashboardStats
	err := retryRepo(ctx, func() error {
		var err error
		stats, err = s.store.DashboardStats(ctx)
		return err
	})
	return stats, err
}
