package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/timeutil"
)

// Retry runs fn up to MaxAttempts times, sleeping between attempts with
// exponential backoff plus jitter. Only retryable errors trigger another
// attempt; a non-retryable error is returned to the caller as-is.
//
// The backoff sleep watches ctx: requests carry deadlines, and waiting
// out a backoff past the caller's deadline helps nobody. A cancellation
// during the wait surfaces as an aborted RetryError.
func Retry[T any](ctx context.Context, retryParam RetryParam, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message:   "max attempt cannot be 0",
			Cause:     ErrZeroAttempt,
			Retryable: true,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isErrorRetryable(err) {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		backoffDelay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			*rng,
			retryParam.BackoffParam,
		)
		if waitErr := sleepOrAbort(ctx, backoffDelay); waitErr != nil {
			return zero, waitErr
		}
	}

	return zero, &RetryError{
		Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:     ErrExhaustedAttempts,
		Retryable: true, // recoverable at the caller's level
	}
}

func sleepOrAbort(ctx context.Context, delay time.Duration) failure.ClassifiedError {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &RetryError{
			Message:   fmt.Sprintf("backoff interrupted: %v", ctx.Err()),
			Cause:     ErrAborted,
			Retryable: false,
		}
	}
}

// isErrorRetryable checks if an error should be retried. Errors that do
// not expose retryability default to retryable, so transient failures
// from unclassified sources still get their attempts.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}

	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}

	return true
}
