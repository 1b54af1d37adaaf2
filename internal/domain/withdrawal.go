package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type WithdrawalDecision string

const (
	DecisionApprove WithdrawalDecision = "approved"
	DecisionReject  WithdrawalDecision = "rejected"
)

func (d WithdrawalDecision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

type PaymentMethod struct {
	Type        string `json:"type"`
	Destination string `json:"destination"`
}

type WithdrawalRequest struct {
	ID          string
	AccountID   string
	Amount      decimal.Decimal
	Method      PaymentMethod
	Status      WithdrawalStatus
	RequestedAt time.Time
	ProcessedAt *time.Time
}

func (w *WithdrawalRequest) Terminal() bool {
	return w.Status != WithdrawalPending
}
