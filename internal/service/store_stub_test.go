package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
)

// memStore is an in-memory Store with the same atomicity and uniqueness
// semantics as the PostgreSQL implementation.
type memStore struct {
	mu          sync.Mutex
	accounts    map[string]*domain.Account
	tasks       map[string]*domain.Task
	assignments map[string]*domain.TaskAssignment
	withdrawals map[string]*domain.WithdrawalRequest
	entries     []domain.LedgerEntry
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    map[string]*domain.Account{},
		tasks:       map[string]*domain.Task{},
		assignments: map[string]*domain.TaskAssignment{},
		withdrawals: map[string]*domain.WithdrawalRequest{},
	}
}

func (m *memStore) CreateAccount(_ context.Context, acct *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, acct.Email) {
			return domain.ErrEmailTaken
		}
		if a.ReferralCode == acct.ReferralCode {
			return domain.ErrReferralCodeTaken
		}
	}
	acct.Balance = decimal.Zero
	acct.TotalEarnings = decimal.Zero
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt
	cp := *acct
	m.accounts[acct.ID] = &cp
	return nil
}

func (m *memStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) GetAccountByReferralCode(_ context.Context, code string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ReferralCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) ListReferrals(_ context.Context, code string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, a := range m.accounts {
		if a.ReferredBy != nil && *a.ReferredBy == code {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) CreditCompletion(_ context.Context, accountID, assignmentID string, amount decimal.Decimal, description string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.AssignmentID != nil && *e.AssignmentID == assignmentID {
			return nil, domain.ErrAlreadyCredited
		}
	}
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(amount)
	a.TotalEarnings = a.TotalEarnings.Add(amount)
	a.CompletedTasks++
	aid := assignmentID
	m.entries = append(m.entries, domain.LedgerEntry{
		ID: uuid.NewString(), AccountID: accountID, Amount: amount,
		Type: domain.EntryCredit, Description: description, AssignmentID: &aid, CreatedAt: time.Now(),
	})
	cp := *a
	return &cp, nil
}

func (m *memStore) CreditBonus(_ context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(amount)
	a.TotalEarnings = a.TotalEarnings.Add(amount)
	m.entries = append(m.entries, domain.LedgerEntry{
		ID: uuid.NewString(), AccountID: accountID, Amount: amount,
		Type: domain.EntryCredit, Description: description, CreatedAt: time.Now(),
	})
	cp := *a
	return &cp, nil
}

func (m *memStore) ListLedgerEntries(_ context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].AccountID == accountID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memStore) UpdateTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListTasks(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memStore) ListAvailableTasks(_ context.Context, accountID string, now time.Time) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if !t.Assignable(now) {
			continue
		}
		blocked := false
		for _, a := range m.assignments {
			if a.TaskID == t.ID && a.AccountID == accountID && a.Status != domain.AssignmentRejected {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memStore) CreateAssignment(_ context.Context, a *domain.TaskAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.AccountID == a.AccountID && existing.TaskID == a.TaskID && existing.Status == domain.AssignmentPending {
			return domain.ErrAssignmentInProgress
		}
	}
	a.StartedAt = time.Now()
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *memStore) GetAssignment(_ context.Context, id string) (*domain.TaskAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ListAssignmentsByAccount(_ context.Context, accountID string) ([]domain.TaskAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskAssignment
	for _, a := range m.assignments {
		if a.AccountID == accountID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) AttachProof(_ context.Context, id string, proof string) (*domain.TaskAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	if a.Status != domain.AssignmentPending {
		return nil, domain.ErrAssignmentNotPending
	}
	a.Proof = proof
	cp := *a
	return &cp, nil
}

func (m *memStore) SettleAssignment(_ context.Context, id string, status domain.AssignmentStatus, proof string) (*domain.TaskAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	if a.Status != domain.AssignmentPending {
		return nil, domain.ErrAssignmentNotPending
	}
	a.Status = status
	if proof != "" {
		a.Proof = proof
	}
	now := time.Now()
	a.CompletedAt = &now
	cp := *a
	return &cp, nil
}

func (m *memStore) CreateWithdrawal(_ context.Context, w *domain.WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.RequestedAt = time.Now()
	cp := *w
	m.withdrawals[w.ID] = &cp
	return nil
}

func (m *memStore) GetWithdrawal(_ context.Context, id string) (*domain.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) ListWithdrawalsByAccount(_ context.Context, accountID string) ([]domain.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WithdrawalRequest
	for _, w := range m.withdrawals {
		if w.AccountID == accountID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *memStore) ListPendingWithdrawals(_ context.Context) ([]domain.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WithdrawalRequest
	for _, w := range m.withdrawals {
		if w.Status == domain.WithdrawalPending {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *memStore) ApproveWithdrawal(_ context.Context, id string) (*domain.WithdrawalRequest, *domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, nil, domain.ErrWithdrawalNotFound
	}
	if w.Status != domain.WithdrawalPending {
		return nil, nil, domain.ErrWithdrawalResolved
	}
	a, ok := m.accounts[w.AccountID]
	if !ok {
		return nil, nil, domain.ErrAccountNotFound
	}
	if a.Balance.LessThan(w.Amount) {
		return nil, nil, domain.ErrInsufficientBalance
	}
	w.Status = domain.WithdrawalApproved
	now := time.Now()
	w.ProcessedAt = &now
	a.Balance = a.Balance.Sub(w.Amount)
	wid := w.ID
	m.entries = append(m.entries, domain.LedgerEntry{
		ID: uuid.NewString(), AccountID: a.ID, Amount: w.Amount.Neg(),
		Type: domain.EntryDebit, WithdrawalID: &wid, CreatedAt: now,
	})
	wcp, acp := *w, *a
	return &wcp, &acp, nil
}

func (m *memStore) RejectWithdrawal(_ context.Context, id string) (*domain.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	if w.Status != domain.WithdrawalPending {
		return nil, domain.ErrWithdrawalResolved
	}
	w.Status = domain.WithdrawalRejected
	now := time.Now()
	w.ProcessedAt = &now
	cp := *w
	return &cp, nil
}

func (m *memStore) DashboardStats(_ context.Context) (*domain.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &domain.DashboardStats{TotalPayout: decimal.Zero, PendingWithdrawalSum: decimal.Zero}
	for _, a := range m.accounts {
		if a.Role == domain.RoleUser {
			st.TotalUsers++
		}
	}
	for _, t := range m.tasks {
		if t.Status == domain.TaskStatusActive {
			st.ActiveTasks++
		}
	}
	for _, a := range m.assignments {
		if a.Status == domain.AssignmentCompleted {
			st.CompletedAssignments++
		}
	}
	for _, w := range m.withdrawals {
		switch w.Status {
		case domain.WithdrawalApproved:
			st.TotalPayout = st.TotalPayout.Add(w.Amount)
		case domain.WithdrawalPending:
			st.PendingWithdrawals++
			st.PendingWithdrawalSum = st.PendingWithdrawalSum.Add(w.Amount)
		}
	}
	return st, nil
}
