package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsWithoutRetryingOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccessWithinMaxAttempts(t *testing.T) {
	calls := 0
	errBoom := errors.New("boom")
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoReturnsLastErrorAfterExhaustingAttempts(t *testing.T) {
	calls := 0
	errBoom := errors.New("boom")
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))
	if !errors.Is(err, errBoom) {
		t.Fatalf("Do() error = %v, want %v", err, errBoom)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoStopsImmediatelyWhenRetryIfRejectsTheError(t *testing.T) {
	calls := 0
	errPermanent := errors.New("permanent")
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errPermanent
	}, WithMaxAttempts(5), WithRetryIf(func(error) bool { return false }))
	if !errors.Is(err, errPermanent) {
		t.Fatalf("Do() error = %v, want %v", err, errPermanent)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (RetryIf should have stopped retrying)", calls)
	}
}

func TestDoStopsWhenContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	errBoom := errors.New("boom")
	err := Do(ctx, func(context.Context) error {
		calls++
		return errBoom
	}, WithMaxAttempts(5), WithInitialDelay(10*time.Millisecond))
	if err == nil {
		t.Fatal("expected an error when the context is already canceled")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (context cancellation should cut the retry loop short)", calls)
	}
}

func TestDoInvokesOnRetryBeforeEachRetryWait(t *testing.T) {
	var attempts []int
	errBoom := errors.New("boom")
	calls := 0
	_ = Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithOnRetry(func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	}))
	if len(attempts) != 2 {
		t.Fatalf("OnRetry called %d times, want 2 (one before each of the two retries)", len(attempts))
	}
}
