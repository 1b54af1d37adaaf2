package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Referral codes
	ReferralCodeLength   = 8
	ReferralCodeAttempts = 5

	// Repository call timeout
	RepositoryTimeout = 5 * time.Second

	// Proof verification fetch timeout
	VerifyFetchTimeout = 15 * time.Second

	// HTTP server
	RequestTimeout  = 30 * time.Second
	ShutdownTimeout = 10 * time.Second

	// Ledger history page size
	LedgerHistoryLimit = 50
)

// MinWithdrawal is the smallest amount (USD) a withdrawal request may carry.
var MinWithdrawal = decimal.NewFromFloat(5.00)

// ReferralBonus is credited to the referrer when a referred signup completes.
var ReferralBonus = decimal.NewFromFloat(1.00)
