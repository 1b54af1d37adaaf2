package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
)

const accountColumns = `id, full_name, email, phone, role, balance, total_earnings,
	completed_tasks, referral_code, referred_by, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Phone, &a.Role,
		&a.Balance, &a.TotalEarnings, &a.CompletedTasks,
		&a.ReferralCode, &a.ReferredBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Postgres) CreateAccount(ctx context.Context, acct *domain.Account) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		INSERT INTO accounts (id, full_name, email, phone, role, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+accountColumns,
		acct.ID, acct.FullName, acct.Email, acct.Phone, acct.Role, acct.ReferralCode, acct.ReferredBy,
	)

	created, err := scanAccount(row)
	if err != nil {
		if uniqueViolation(err, "accounts_email_key") {
			return domain.ErrEmailTaken
		}
		if uniqueViolation(err, "accounts_referral_code_key") {
			return domain.ErrReferralCodeTaken
		}
		return wrap("create account", err)
	}

	*acct = *created
	return nil
}

func (s *Postgres) getAccountBy(ctx context.Context, where string, arg any) (*domain.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrap("get account", err)
	}
	return acct, nil
}

func (s *Postgres) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getAccountBy(ctx, "id = $1", id)
}

func (s *Postgres) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getAccountBy(ctx, "lower(email) = lower($1)", email)
}

func (s *Postgres) GetAccountByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	return s.getAccountBy(ctx, "referral_code = $1", code)
}

func (s *Postgres) ListReferrals(ctx context.Context, code string) ([]domain.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE referred_by = $1
		ORDER BY created_at DESC`, code)
	if err != nil {
		return nil, wrap("list referrals", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("scan referral", err)
		}
		out = append(out, *acct)
	}
	return out, wrap("list referrals", rows.Err())
}

// CreditCompletion moves a task reward onto an account inside one
// transaction. The unique assignment_id on ledger_entries is the idempotency
// guard: a second credit for the same assignment fails before the balance
// moves.
func (s *Postgres) CreditCompletion(ctx context.Context, accountID, assignmentID string, amount decimal.Decimal, description string) (*domain.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrap("begin credit", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, amount, entry_type, description, assignment_id)
		VALUES ($1, $2, $3, 'credit', $4, $5)`,
		uuid.NewString(), accountID, amount, description, assignmentID,
	)
	if err != nil {
		if uniqueViolation(err, "ledger_entries_assignment_id_key") {
			return nil, domain.ErrAlreadyCredited
		}
		return nil, wrap("insert credit entry", err)
	}

	row := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $2,
		    total_earnings = total_earnings + $2,
		    completed_tasks = completed_tasks + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		accountID, amount,
	)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrap("credit account", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrap("commit credit", err)
	}
	return acct, nil
}

// CreditBonus credits an amount with no idempotency key (referral bonuses).
func (s *Postgres) CreditBonus(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrap("begin bonus", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, amount, entry_type, description)
		VALUES ($1, $2, $3, 'credit', $4)`,
		uuid.NewString(), accountID, amount, description,
	)
	if err != nil {
		return nil, wrap("insert bonus entry", err)
	}

	row := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $2,
		    total_earnings = total_earnings + $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		accountID, amount,
	)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrap("credit bonus", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrap("commit bonus", err)
	}
	return acct, nil
}

func (s *Postgres) ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, account_id, amount, entry_type, description, assignment_id, withdrawal_id, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, wrap("list ledger entries", err)
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Type, &e.Description, &e.AssignmentID, &e.WithdrawalID, &e.CreatedAt); err != nil {
			return nil, wrap("scan ledger entry", err)
		}
		out = append(out, e)
	}
	return out, wrap("list ledger entries", rows.Err())
}
