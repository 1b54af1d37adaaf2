package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hackerloum/mshikotap/internal/domain"
)

const assignmentColumns = `id, account_id, task_id, status, reward, proof, started_at, completed_at`

func scanAssignment(row pgx.Row) (*domain.TaskAssignment, error) {
	var a domain.TaskAssignment
	err := row.Scan(
		&a.ID, &a.AccountID, &a.TaskID, &a.Status,
		&a.Reward, &a.Proof, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Postgres) CreateAssignment(ctx context.Context, a *domain.TaskAssignment) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		INSERT INTO task_assignments (id, account_id, task_id, status, reward)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING `+assignmentColumns,
		a.ID, a.AccountID, a.TaskID, a.Reward,
	)
	created, err := scanAssignment(row)
	if err != nil {
		if uniqueViolation(err, "task_assignments_pending_idx") {
			return domain.ErrAssignmentInProgress
		}
		return wrap("create assignment", err)
	}
	*a = *created
	return nil
}

func (s *Postgres) GetAssignment(ctx context.Context, id string) (*domain.TaskAssignment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM task_assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, wrap("get assignment", err)
	}
	return a, nil
}

func (s *Postgres) ListAssignmentsByAccount(ctx context.Context, accountID string) ([]domain.TaskAssignment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM task_assignments
		WHERE account_id = $1
		ORDER BY started_at DESC`, accountID)
	if err != nil {
		return nil, wrap("list assignments", err)
	}
	defer rows.Close()

	var out []domain.TaskAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, wrap("scan assignment", err)
		}
		out = append(out, *a)
	}
	return out, wrap("list assignments", rows.Err())
}

// AttachProof stores a proof payload on a still-pending assignment, leaving
// it pending for manual review.
func (s *Postgres) AttachProof(ctx context.Context, id string, proof string) (*domain.TaskAssignment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		UPDATE task_assignments
		SET proof = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+assignmentColumns,
		id, proof,
	)
	a, err := scanAssignment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("attach proof", err)
	}
	if _, gerr := s.GetAssignment(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, domain.ErrAssignmentNotPending
}

// SettleAssignment moves a pending assignment to a terminal status. The
// conditional WHERE makes concurrent settlements race safely: only the first
// one finds a pending row.
func (s *Postgres) SettleAssignment(ctx context.Context, id string, status domain.AssignmentStatus, proof string) (*domain.TaskAssignment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		UPDATE task_assignments
		SET status = $2,
		    proof = CASE WHEN $3 <> '' THEN $3 ELSE proof END,
		    completed_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+assignmentColumns,
		id, status, proof,
	)
	a, err := scanAssignment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("settle assignment", err)
	}

	// No pending row: missing or already settled.
	if _, gerr := s.GetAssignment(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, domain.ErrAssignmentNotPending
}
