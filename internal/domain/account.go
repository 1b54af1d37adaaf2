package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Account struct {
	ID             string
	FullName       string
	Email          string
	Phone          string
	Role           Role
	Balance        decimal.Decimal
	TotalEarnings  decimal.Decimal
	CompletedTasks int
	ReferralCode   string
	ReferredBy     *string // referral code of the referrer, if any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Actor is the capability token extracted from a session. Admin-only
// operations take it explicitly instead of reading ambient session state.
type Actor struct {
	AccountID string
	Role      Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
