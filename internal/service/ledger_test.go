package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackerloum/mshikotap/internal/domain"
)

var (
	admin = domain.Actor{AccountID: "admin-1", Role: domain.RoleAdmin}
	user  = domain.Actor{AccountID: "acct-1", Role: domain.RoleUser}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func method() domain.PaymentMethod {
	return domain.PaymentMethod{Type: "mobile_money", Destination: "+255700000001"}
}

func completedAssignment(st *memStore, accountID, reward string) *domain.TaskAssignment {
	a := &domain.TaskAssignment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TaskID:    uuid.NewString(),
		Status:    domain.AssignmentCompleted,
		Reward:    dec(reward),
	}
	st.assignments[a.ID] = a
	return a
}

func requireInvariant(t *testing.T, st *memStore, accountID string) {
	t.Helper()
	acct, err := st.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.LessThanOrEqual(acct.TotalEarnings),
		"balance %s exceeds total earnings %s", acct.Balance, acct.TotalEarnings)
}

func TestCreditForCompletionIdempotent(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 0)
	a := completedAssignment(st, "acct-1", "0.75")

	acct, err := svc.CreditForCompletion(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("0.75")))
	assert.True(t, acct.TotalEarnings.Equal(dec("0.75")))
	assert.Equal(t, 1, acct.CompletedTasks)

	_, err = svc.CreditForCompletion(context.Background(), a)
	assert.ErrorIs(t, err, domain.ErrAlreadyCredited)

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("0.75")), "balance moved twice: %s", got.Balance)
	requireInvariant(t, st, "acct-1")
}

func TestCreditForCompletionRequiresCompleted(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 0)

	pending := &domain.TaskAssignment{ID: "a1", AccountID: "acct-1", Status: domain.AssignmentPending, Reward: dec("1.00")}
	_, err := svc.CreditForCompletion(context.Background(), pending)
	assert.ErrorIs(t, err, domain.ErrAssignmentNotCompleted)
}

func TestReserveForWithdrawalValidation(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 10)

	tests := []struct {
		name   string
		amount decimal.Decimal
		m      domain.PaymentMethod
		want   error
	}{
		{"below minimum", dec("4.99"), method(), domain.ErrBelowMinimum},
		{"zero", dec("0"), method(), domain.ErrInvalidAmount},
		{"negative", dec("-5"), method(), domain.ErrInvalidAmount},
		{"sub-cent precision", dec("5.001"), method(), domain.ErrInvalidAmount},
		{"above balance", dec("10.01"), method(), domain.ErrInsufficientBalance},
		{"missing method", dec("5.00"), domain.PaymentMethod{}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", tt.amount, tt.m)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReserveForWithdrawalDoesNotDebit(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 10)

	w, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)

	acct, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("10")), "reserve must not debit, got %s", acct.Balance)
}

func TestResolveWithdrawalScenario(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 12)

	w, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)

	resolved, acct, err := svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalApproved, resolved.Status)
	assert.NotNil(t, resolved.ProcessedAt)
	assert.True(t, acct.Balance.Equal(dec("7")), "balance %s", acct.Balance)

	// Second approval attempt must not move the balance again.
	_, _, err = svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionApprove)
	assert.ErrorIs(t, err, domain.ErrWithdrawalResolved)

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("7")))
	requireInvariant(t, st, "acct-1")
}

func TestResolveWithdrawalReject(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 12)

	w, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)

	resolved, acct, err := svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalRejected, resolved.Status)
	assert.Nil(t, acct)

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("12")))

	_, _, err = svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionReject)
	assert.ErrorIs(t, err, domain.ErrWithdrawalResolved)
}

func TestResolveWithdrawalRequiresAdmin(t *testing.T) {
	svc := NewLedgerService(newMemStore())

	_, _, err := svc.ResolveWithdrawal(context.Background(), user, "w1", domain.DecisionApprove)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)
}

func TestResolveWithdrawalInvalidDecision(t *testing.T) {
	svc := NewLedgerService(newMemStore())

	_, _, err := svc.ResolveWithdrawal(context.Background(), admin, "w1", "maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Two requests were reserved against the same funds; approving the second
// after the first drained the balance must fail instead of going negative.
func TestResolveWithdrawalStaleBalance(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 8)

	w1, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)
	w2, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)

	_, _, err = svc.ResolveWithdrawal(context.Background(), admin, w1.ID, domain.DecisionApprove)
	require.NoError(t, err)

	_, _, err = svc.ResolveWithdrawal(context.Background(), admin, w2.ID, domain.DecisionApprove)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("3")))
	requireInvariant(t, st, "acct-1")
}

func TestResolveWithdrawalConcurrent(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 12)

	w, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("5.00"), method())
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionApprove)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, domain.ErrWithdrawalResolved):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("7")), "exactly one debit expected, balance %s", got.Balance)
}

func TestBalanceNeverExceedsTotalEarnings(t *testing.T) {
	st := newMemStore()
	svc := NewLedgerService(st)
	seedAccount(st, "acct-1", "CODE0001", 0)

	for _, reward := range []string{"0.75", "2.00", "3.50"} {
		a := completedAssignment(st, "acct-1", reward)
		_, err := svc.CreditForCompletion(context.Background(), a)
		require.NoError(t, err)
		requireInvariant(t, st, "acct-1")
	}

	w, err := svc.ReserveForWithdrawal(context.Background(), "acct-1", dec("6.00"), method())
	require.NoError(t, err)
	requireInvariant(t, st, "acct-1")

	_, _, err = svc.ResolveWithdrawal(context.Background(), admin, w.ID, domain.DecisionApprove)
	require.NoError(t, err)
	requireInvariant(t, st, "acct-1")

	got, err := st.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("0.25")))
	assert.True(t, got.TotalEarnings.Equal(dec("6.25")))
}

func TestStatsRequiresAdmin(t *testing.T) {
	svc := NewLedgerService(newMemStore())

	_, err := svc.Stats(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)

	_, err = svc.PendingWithdrawals(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)
}
