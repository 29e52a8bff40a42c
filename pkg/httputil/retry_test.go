package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	if err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d, want nil and 1", err, calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	permanent := errors.New("404")
	if err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("permanent: err=%v calls=%d, want %v and 1", err, calls, permanent)
	}

	// Retryable error exhausts attempts and returns the last error
	calls = 0
	err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return Retryable(errTransient) })
	if calls != 3 || !errors.Is(err, errTransient) {
		t.Errorf("exhausted: err=%v calls=%d, want transient and 3", err, calls)
	}
}

func TestRetryMinimumOneAttempt(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error { calls++; return nil })
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errTransient) })
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
