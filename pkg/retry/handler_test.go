package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/retry"
	"github.com/wibisana/skimcache/pkg/timeutil"
)

// defaultBackoffParam returns a default backoff parameter for tests
func defaultBackoffParam() timeutil.BackoffParam {
	return timeutil.NewBackoffParam(
		time.Millisecond,
		2.0,
		10*time.Millisecond,
	)
}

// mockError is a mock implementation of failure.ClassifiedError for testing
type mockError struct {
	msg       string
	retryable bool
	severity  failure.Severity
}

func (m *mockError) Error() string {
	return m.msg
}

func (m *mockError) Severity() failure.Severity {
	return m.severity
}

func (m *mockError) IsRetryable() bool {
	return m.retryable
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	callCount := 0
	fn := func() (string, failure.ClassifiedError) {
		callCount++
		return "success", nil
	}

	params := retry.NewRetryParam(0, 42, 3, defaultBackoffParam())

	result, err := retry.Retry(context.Background(), params, fn)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result != "success" {
		t.Fatalf("expected 'success', got: %s", result)
	}
	if callCount != 1 {
		t.Fatalf("expected 1 call, got: %d", callCount)
	}
}

func TestRetry_RetryableErrorIsRetried(t *testing.T) {
	callCount := 0
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		if callCount < 3 {
			return 0, &mockError{msg: "transient", retryable: true, severity: failure.SeverityRecoverable}
		}
		return 7, nil
	}

	params := retry.NewRetryParam(0, 42, 5, defaultBackoffParam())

	result, err := retry.Retry(context.Background(), params, fn)

	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if result != 7 {
		t.Fatalf("expected 7, got: %d", result)
	}
	if callCount != 3 {
		t.Fatalf("expected 3 calls, got: %d", callCount)
	}
}

func TestRetry_NonRetryableErrorReturnsImmediately(t *testing.T) {
	callCount := 0
	permanent := &mockError{msg: "permanent", retryable: false, severity: failure.SeverityFatal}
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		return 0, permanent
	}

	params := retry.NewRetryParam(0, 42, 5, defaultBackoffParam())

	_, err := retry.Retry(context.Background(), params, fn)

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var mockErr *mockError
	if !errors.As(err, &mockErr) || mockErr != permanent {
		t.Fatalf("expected the original error, got: %v", err)
	}
	if callCount != 1 {
		t.Fatalf("expected 1 call, got: %d", callCount)
	}
}

func TestRetry_ExhaustedAttemptsReturnsRetryError(t *testing.T) {
	callCount := 0
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		return 0, &mockError{msg: "always failing", retryable: true, severity: failure.SeverityRecoverable}
	}

	params := retry.NewRetryParam(0, 42, 3, defaultBackoffParam())

	_, err := retry.Retry(context.Background(), params, fn)

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var retryErr *retry.RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected *retry.RetryError, got: %T", err)
	}
	if retryErr.Cause != retry.ErrExhaustedAttempts {
		t.Errorf("expected cause %q, got %q", retry.ErrExhaustedAttempts, retryErr.Cause)
	}
	if callCount != 3 {
		t.Fatalf("expected 3 calls, got: %d", callCount)
	}
}

func TestRetry_CancelledContextAbortsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	fn := func() (int, failure.ClassifiedError) {
		callCount++
		cancel()
		return 0, &mockError{msg: "transient", retryable: true, severity: failure.SeverityRecoverable}
	}

	params := retry.NewRetryParam(0, 42, 5, timeutil.NewBackoffParam(
		time.Hour,
		2.0,
		time.Hour,
	))

	_, err := retry.Retry(ctx, params, fn)

	var retryErr *retry.RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected *retry.RetryError, got: %T", err)
	}
	if retryErr.Cause != retry.ErrAborted {
		t.Errorf("expected cause %q, got %q", retry.ErrAborted, retryErr.Cause)
	}
	if retryErr.IsRetryable() {
		t.Error("aborted retry should not be retryable")
	}
	if callCount != 1 {
		t.Fatalf("expected 1 call before abort, got: %d", callCount)
	}
}

func TestRetry_ZeroAttemptsRejected(t *testing.T) {
	fn := func() (int, failure.ClassifiedError) {
		t.Fatal("fn must not be called")
		return 0, nil
	}

	params := retry.NewRetryParam(0, 42, 0, defaultBackoffParam())

	_, err := retry.Retry(context.Background(), params, fn)

	var retryErr *retry.RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected *retry.RetryError, got: %T", err)
	}
	if retryErr.Cause != retry.ErrZeroAttempt {
		t.Errorf("expected cause %q, got %q", retry.ErrZeroAttempt, retryErr.Cause)
	}
}
