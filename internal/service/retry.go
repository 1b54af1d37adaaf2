package service

import (
	"context"
	"errors"
	"time"

	"github.com/hackerloum/mshikotap/internal/domain"
)

const (
	repoRetryAttempts = 3
	repoRetryBackoff  = 100 * time.Millisecond
)

// retryRepo re-runs op on transient storage failures. Only used for
// operations that are idempotent at the storage layer (reads, keyed credits,
// conditional resolutions); everything else fails straight through.
func retryRepo(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < repoRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * repoRetryBackoff):
			}
		}
		err = op()
		if !errors.Is(err, domain.ErrRepositoryUnavailable) {
			return err
		}
	}
	return err
}
