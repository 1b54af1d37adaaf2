package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
)

const withdrawalColumns = `id, account_id, amount, method_type, method_destination, status, requested_at, processed_at`

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := row.Scan(
		&w.ID, &w.AccountID, &w.Amount, &w.Method.Type, &w.Method.Destination,
		&w.Status, &w.RequestedAt, &w.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Postgres) CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (id, account_id, amount, method_type, method_destination, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+withdrawalColumns,
		w.ID, w.AccountID, w.Amount, w.Method.Type, w.Method.Destination,
	)
	created, err := scanWithdrawal(row)
	if err != nil {
		return wrap("create withdrawal", err)
	}
	*w = *created
	return nil
}

func (s *Postgres) GetWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id)
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, wrap("get withdrawal", err)
	}
	return w, nil
}

func (s *Postgres) ListWithdrawalsByAccount(ctx context.Context, accountID string) ([]domain.WithdrawalRequest, error) {
	return s.listWithdrawals(ctx, `WHERE account_id = $1 ORDER BY requested_at DESC`, accountID)
}

func (s *Postgres) ListPendingWithdrawals(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	return s.listWithdrawals(ctx, `WHERE status = 'pending' ORDER BY requested_at`)
}

func (s *Postgres) listWithdrawals(ctx context.Context, tail string, args ...any) ([]domain.WithdrawalRequest, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests `+tail, args...)
	if err != nil {
		return nil, wrap("list withdrawals", err)
	}
	defer rows.Close()

	var out []domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, wrap("scan withdrawal", err)
		}
		out = append(out, *w)
	}
	return out, wrap("list withdrawals", rows.Err())
}

// ApproveWithdrawal claims the pending request, then debits the account in
// the same transaction. The claim is a conditional update, so two concurrent
// approvals cannot both succeed, and the balance is re-checked under a row
// lock in case it dropped since the request was made.
func (s *Postgres) ApproveWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, *domain.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, wrap("begin approve", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE withdrawal_requests
		SET status = 'approved', processed_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+withdrawalColumns, id)
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := s.GetWithdrawal(ctx, id); gerr != nil {
				return nil, nil, gerr
			}
			return nil, nil, domain.ErrWithdrawalResolved
		}
		return nil, nil, wrap("claim withdrawal", err)
	}

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, w.AccountID).Scan(&balance); err != nil {
		return nil, nil, wrap("lock account", err)
	}
	if balance.LessThan(w.Amount) {
		return nil, nil, domain.ErrInsufficientBalance
	}

	acctRow := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $2, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		w.AccountID, w.Amount,
	)
	acct, err := scanAccount(acctRow)
	if err != nil {
		return nil, nil, wrap("debit account", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, amount, entry_type, description, withdrawal_id)
		VALUES ($1, $2, $3, 'debit', $4, $5)`,
		uuid.NewString(), w.AccountID, w.Amount.Neg(), "withdrawal "+w.ID, w.ID,
	)
	if err != nil {
		return nil, nil, wrap("insert debit entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, wrap("commit approve", err)
	}
	return w, acct, nil
}

// RejectWithdrawal terminates a pending request without touching balances.
func (s *Postgres) RejectWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		UPDATE withdrawal_requests
		SET status = 'rejected', processed_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+withdrawalColumns, id)
	w, err := scanWithdrawal(row)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("reject withdrawal", err)
	}
	if _, gerr := s.GetWithdrawal(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, domain.ErrWithdrawalResolved
}

func (s *Postgres) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var st domain.DashboardStats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM accounts WHERE role = 'user'),
			(SELECT count(*) FROM tasks WHERE status = 'active'),
			(SELECT count(*) FROM task_assignments WHERE status = 'completed'),
			(SELECT COALESCE(sum(amount), 0) FROM withdrawal_requests WHERE status = 'approved'),
			(SELECT count(*) FROM withdrawal_requests WHERE status = 'pending'),
			(SELECT COALESCE(sum(amount), 0) FROM withdrawal_requests WHERE status = 'pending')
	`).Scan(
		&st.TotalUsers, &st.ActiveTasks, &st.CompletedAssignments,
		&st.TotalPayout, &st.PendingWithdrawals, &st.PendingWithdrawalSum,
	)
	if err != nil {
		return nil, wrap("dashboard stats", err)
	}
	return &st, nil
}
