package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want=3", calls)
	}
}

func TestWithRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("still down")
	})
	if err == nil || err.Error() != "still down" {
		t.Fatalf("err=%v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want=2", calls)
	}
}

func TestWithRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = WithRetry(context.Background(), 0, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Fatalf("calls=%d want=1", calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, 5, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return errors.New("x")
	})
	if err == nil {
		t.Fatalf("want error")
	}
	if calls != 1 {
		t.Fatalf("calls=%d want=1", calls)
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want=context.Canceled", err)
	}
}

func TestWithRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	base := errors.New("bad payload")
	err := WithRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		return Permanent(base)
	})
	if calls != 1 {
		t.Fatalf("calls=%d want=1", calls)
	}
	if err != base {
		t.Fatalf("err=%v want unwrapped %v", err, base)
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) must be nil")
	}
}
