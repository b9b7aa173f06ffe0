package integration

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
)

// RetryPolicy bounds how often a remote call is repeated
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy returns two retries with a two second base delay
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Delay: 2 * time.Second}
}

// retryFetch repeats reads on transient failures
func retryFetch(err error) bool { return integration.IsRetryable(err) }

// retryBatch repeats batch posts only when rate limited. A batch that timed
// out may have been applied remotely, so it is not resent.
func retryBatch(err error) bool {
	return err != nil && errors.Is(err, integration.ErrPlatformRateLimited)
}

// withRetry calls fn until it succeeds, shouldRetry rejects the error, the
// attempts run out or ctx ends. The delay doubles after every attempt.
func withRetry(ctx context.Context, policy RetryPolicy, shouldRetry func(error) bool, fn func() error) error {
	delay := policy.Delay
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= policy.MaxRetries || !shouldRetry(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
}
