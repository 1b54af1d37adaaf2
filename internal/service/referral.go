package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/domain"
)

const referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateReferralCode() (string, error) {
	code := make([]byte, config.ReferralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}

// codeExists is the uniqueness-check collaborator for code generation.
type codeExists func(ctx context.Context, code string) (bool, error)

// generateUniqueReferralCode retries generation a bounded number of times
// against the supplied checker. The pre-check is advisory only: the storage
// layer's unique constraint is the real guard, and callers treat
// ErrReferralCodeTaken on insert as one more retry trigger.
func generateUniqueReferralCode(ctx context.Context, exists codeExists) (string, error) {
	for i := 0; i < config.ReferralCodeAttempts; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.ErrReferralExhausted
}
