package usecase

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/polkiloo/procuremart/internal/config"
)

const defaultRetryAttempts = 2

// RetryPolicy bounds the optimistic-concurrency loop. Attempts run back to
// back with no backoff.
type RetryPolicy struct {
	MaxAttempts int
}

func NewRetryPolicy(cfg *config.Config) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.ConcurrencyRetryAttempts}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return defaultRetryAttempts
	}
	return p.MaxAttempts
}

// Run calls fn until it succeeds, returns an error not marked with
// retry.RetryableError, or the attempt budget is spent. The last retryable
// error is returned unwrapped.
func (p RetryPolicy) Run(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	immediate := retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	backoff := retry.WithMaxRetries(uint64(p.attempts()-1), immediate)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		return fn(ctx, attempt)
	})
}
