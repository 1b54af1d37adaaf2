package domain

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")

	ErrEmailTaken        = errors.New("email already registered")
	ErrReferralCodeTaken = errors.New("referral code already taken")
	ErrReferralExhausted = errors.New("could not issue a unique referral code")
	ErrInvalidReferral   = errors.New("unknown referral code")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrAlreadyCredited        = errors.New("assignment already credited")
	ErrAssignmentNotCompleted = errors.New("assignment not completed")
	ErrWithdrawalResolved     = errors.New("withdrawal request already resolved")

	ErrTaskUnavailable      = errors.New("task not available")
	ErrAssignmentInProgress = errors.New("task already in progress")
	ErrAssignmentNotPending = errors.New("assignment already settled")

	ErrNotAdmin              = errors.New("admin capability required")
	ErrRepositoryUnavailable = errors.New("storage temporarily unavailable")
)
