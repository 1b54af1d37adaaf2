package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/store"
	"github.com/hackerloum/mshikotap/internal/verify"
)

// AssignmentService tracks per-account task attempts and feeds completions
// into the ledger.
type AssignmentService struct {
	store    store.Store
	ledger   *LedgerService
	verifier verify.Verifier
}

func NewAssignmentService(st store.Store, ledger *LedgerService, verifier verify.Verifier) *AssignmentService {
	return &AssignmentService{store: st, ledger: ledger, verifier: verifier}
}

// Start opens an assignment for the account, snapshotting the task's reward.
// The storage layer's partial unique index guarantees at most one pending
// attempt per (account, task) even under concurrent starts.
func (s *AssignmentService) Start(ctx context.Context, accountID, taskID string) (*domain.TaskAssignment, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Assignable(time.Now()) {
		return nil, domain.ErrTaskUnavailable
	}

	a := &domain.TaskAssignment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TaskID:    taskID,
		Status:    domain.AssignmentPending,
		Reward:    task.Reward,
	}
	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitProof runs the task's verification strategy. Auto and code proofs
// settle immediately (crediting on success); screenshot proofs are stored
// and left pending for admin review.
func (s *AssignmentService) SubmitProof(ctx context.Context, accountID, assignmentID, proof string) (*domain.TaskAssignment, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AccountID != accountID {
		return nil, domain.ErrAssignmentNotFound
	}
	if a.Terminal() {
		return nil, domain.ErrAssignmentNotPending
	}

	task, err := s.store.GetTask(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}

	if task.Verification() == domain.VerifyScreenshot {
		if proof == "" {
			return nil, fmt.Errorf("%w: proof required", domain.ErrInvalidInput)
		}
		return s.store.AttachProof(ctx, a.ID, proof)
	}

	ok, err := s.verifier.Verify(ctx, task, proof)
	if err != nil {
		return nil, fmt.Errorf("verify proof: %w", err)
	}
	return s.settle(ctx, a.ID, ok, proof)
}

// Review lets an administrator settle a manually-verified assignment.
func (s *AssignmentService) Review(ctx context.Context, actor domain.Actor, assignmentID string, approve bool) (*domain.TaskAssignment, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	return s.settle(ctx, assignmentID, approve, "")
}

func (s *AssignmentService) settle(ctx context.Context, assignmentID string, approve bool, proof string) (*domain.TaskAssignment, error) {
	status := domain.AssignmentRejected
	if approve {
		status = domain.AssignmentCompleted
	}

	settled, err := s.store.SettleAssignment(ctx, assignmentID, status, proof)
	if err != nil {
		return nil, err
	}

	if settled.Status == domain.AssignmentCompleted {
		if _, err := s.ledger.CreditForCompletion(ctx, settled); err != nil {
			return nil, fmt.Errorf("credit completion: %w", err)
		}
	}
	return settled, nil
}

func (s *AssignmentService) ListMine(ctx context.Context, accountID string) ([]domain.TaskAssignment, error) {
	var out []domain.TaskAssignment
	err := retryRepo(ctx, func() error {
		var err error
		out, err = s.store.ListAssignmentsByAccount(ctx, accountID)
		return err
	})
	return out, err
}
