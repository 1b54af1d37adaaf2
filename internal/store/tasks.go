package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackerloum/mshikotap/internal/domain"
)

const taskColumns = `id, title, description, type, reward, status, url, expires_at, requirements, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t   domain.Task
		req []byte
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Type, &t.Reward, &t.Status,
		&t.URL, &t.ExpiresAt, &req, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(req) > 0 {
		t.Requirements = &domain.TaskRequirements{}
		if err := json.Unmarshal(req, t.Requirements); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func marshalRequirements(t *domain.Task) ([]byte, error) {
	if t.Requirements == nil {
		return nil, nil
	}
	return json.Marshal(t.Requirements)
}

func (s *Postgres) CreateTask(ctx context.Context, task *domain.Task) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	req, err := marshalRequirements(task)
	if err != nil {
		return wrap("marshal requirements", err)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, type, reward, status, url, expires_at, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, task.Type, task.Reward,
		task.Status, task.URL, task.ExpiresAt, req,
	)
	created, err := scanTask(row)
	if err != nil {
		return wrap("create task", err)
	}
	*task = *created
	return nil
}

func (s *Postgres) UpdateTask(ctx context.Context, task *domain.Task) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	req, err := marshalRequirements(task)
	if err != nil {
		return wrap("marshal requirements", err)
	}

	row := s.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, type = $4, reward = $5,
		    status = $6, url = $7, expires_at = $8, requirements = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, task.Type, task.Reward,
		task.Status, task.URL, task.ExpiresAt, req,
	)
	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return wrap("update task", err)
	}
	*task = *updated
	return nil
}

func (s *Postgres) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return wrap("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *Postgres) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, wrap("get task", err)
	}
	return task, nil
}

func (s *Postgres) ListTasks(ctx context.Context) ([]domain.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListAvailableTasks returns active, unexpired tasks the account has not yet
// completed or started.
func (s *Postgres) ListAvailableTasks(ctx context.Context, accountID string, now time.Time) ([]domain.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.status = 'active'
		  AND (t.expires_at IS NULL OR t.expires_at > $2)
		  AND NOT EXISTS (
			SELECT 1 FROM task_assignments a
			WHERE a.task_id = t.id
			  AND a.account_id = $1
			  AND a.status <> 'rejected'
		  )
		ORDER BY t.created_at DESC`, accountID, now)
	if err != nil {
		return nil, wrap("list available tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var out []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, wrap("scan task", err)
		}
		out = append(out, *task)
	}
	return out, wrap("collect tasks", rows.Err())
}
