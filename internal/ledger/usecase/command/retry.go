package command

import (
	"context"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/metrics"
	"github.com/tair/stock-ledger/pkg/logger"
)

// DefaultRetryAttempts bounds how many times a conflicted write is re-run.
const DefaultRetryAttempts = 3

// Retrier re-runs a whole operation when it fails with a detected conflict.
// Each attempt re-executes everything from lock acquisition to commit, so
// item state and balance are re-read fresh. Only conflicts retry; every
// other error, and a conflict after the final attempt, propagates.
type Retrier struct {
	Attempts int
	Backoff  time.Duration
}

// NewRetrier creates a retrier. Non-positive attempts fall back to
// DefaultRetryAttempts.
func NewRetrier(attempts int, backoff time.Duration) Retrier {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	return Retrier{Attempts: attempts, Backoff: backoff}
}

// Do executes op under the retry policy.
func (r Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil || !domain.IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		metrics.OperationRetries.Inc()
		logger.Debug(ctx).
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Retrying after conflict")

		if r.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.Backoff * time.Duration(attempt)):
			}
		}
	}

	metrics.OperationConflicts.Inc()
	logger.Warn(ctx).
		Err(err).
		Int("attempts", attempts).
		Msg("Conflict retries exhausted")
	return err
}
