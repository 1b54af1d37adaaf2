package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/store"
)

type AccountService struct {
	store store.Store
}

func NewAccountService(st store.Store) *AccountService {
	return &AccountService{store: st}
}

// RegisterInput carries the profile fields submitted at signup. ID is the
// identifier issued by the external identity provider; when empty a fresh
// one is generated.
type RegisterInput struct {
	ID         string
	FullName   string
	Email      string
	Phone      string
	ReferredBy string
}

// Register creates the account profile, issues a unique referral code and
// credits the referrer's bonus. Referral codes are validated strictly: an
// unknown code rejects the registration instead of being silently dropped.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" {
		return nil, fmt.Errorf("%w: full name required", domain.ErrInvalidInput)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalidInput)
	}

	var referredBy *string
	if code := strings.ToUpper(strings.TrimSpace(in.ReferredBy)); code != "" {
		if _, err := s.store.GetAccountByReferralCode(ctx, code); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, domain.ErrInvalidReferral
			}
			return nil, err
		}
		referredBy = &code
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	exists := func(ctx context.Context, code string) (bool, error) {
		_, err := s.store.GetAccountByReferralCode(ctx, code)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}

	// The insert itself can still collide with a concurrent signup; a taken
	// code there counts against the same retry budget.
	for attempt := 0; attempt < config.ReferralCodeAttempts; attempt++ {
		code, err := generateUniqueReferralCode(ctx, exists)
		if err != nil {
			return nil, err
		}

		acct := &domain.Account{
			ID:           id,
			FullName:     in.FullName,
			Email:        in.Email,
			Phone:        strings.TrimSpace(in.Phone),
			Role:         domain.RoleUser,
			ReferralCode: code,
			ReferredBy:   referredBy,
		}
		err = s.store.CreateAccount(ctx, acct)
		if errors.Is(err, domain.ErrReferralCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.grantReferralBonus(ctx, acct)
		return acct, nil
	}
	return nil, domain.ErrReferralExhausted
}

// grantReferralBonus credits the referrer. A failure here must not undo the
// registration, so it is logged and swallowed.
func (s *AccountService) grantReferralBonus(ctx context.Context, acct *domain.Account) {
	if acct.ReferredBy == nil {
		return
	}
	referrer, err := s.store.GetAccountByReferralCode(ctx, *acct.ReferredBy)
	if err != nil {
		slog.Error("resolve referrer for bonus", "error", err, "code", *acct.ReferredBy)
		return
	}
	desc := fmt.Sprintf("Referral bonus: %s", acct.FullName)
	if _, err := s.store.CreditBonus(ctx, referrer.ID, config.ReferralBonus, desc); err != nil {
		slog.Error("grant referral bonus", "error", err, "referrer_id", referrer.ID)
	}
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	var acct *domain.Account
	err := retryRepo(ctx, func() error {
		var err error
		acct, err = s.store.GetAccount(ctx, id)
		return err
	})
	return acct, err
}

// Referrals returns the accounts that signed up with the caller's code.
func (s *AccountService) Referrals(ctx context.Context, accountID string) (*domain.Account, []domain.Account, error) {
	acct, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	refs, err := s.store.ListReferrals(ctx, acct.ReferralCode)
	if err != nil {
		return nil, nil, err
	}
	return acct, refs, nil
}

func (s *AccountService) LedgerHistory(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := retryRepo(ctx, func() error {
		var err error
		entries, err = s.store.ListLedgerEntries(ctx, accountID, config.LedgerHistoryLimit)
		return err
	})
	return entries, err
}
