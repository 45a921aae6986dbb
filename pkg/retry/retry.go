package retry

import (
	"context"
	"fmt"
	"time"

	"forumdump/pkg/errors"
	"forumdump/pkg/logger"
)

// Policy holds retry configuration
type Policy struct {
	// MaxAttempts is the total number of tries; values below 1 mean a single try
	MaxAttempts int
	// Backoff decides the pause between tries; nil retries immediately
	Backoff Backoff
	// RetryIf reports whether an error is worth another try; nil uses Retryable
	RetryIf func(error) bool
	// Logger receives one warning per retry; nil stays silent
	Logger logger.Logger
}

// Retryable retries network failures, rate limiting and server errors.
// Missing resources and context cancellation are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *errors.Error
	if errors.As(err, &apiErr) {
		return errors.IsRetryable(apiErr.Type)
	}
	return false
}

// DoWithResult runs op until it succeeds, fails with a final error, or runs out of attempts
func DoWithResult[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = Retryable
	}

	var (
		result T
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = op()
		if err == nil || !retryIf(err) {
			return result, err
		}
		if attempt >= maxAttempts {
			if maxAttempts == 1 {
				return result, err
			}
			return result, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay(attempt)
		}

		if p.Logger != nil {
			p.Logger.WarnWithFields("retrying request", map[string]interface{}{
				"attempt":      attempt,
				"max_attempts": maxAttempts,
				"delay":        delay,
				"error":        err.Error(),
			})
		}

		if waitErr := Wait(ctx, delay); waitErr != nil {
			return result, waitErr
		}
	}
}
