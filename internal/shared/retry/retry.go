package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// WithRetry выполняет op до attempts раз с экспоненциальным бэкоффом.
// Каждая попытка получает свой ctx от caller'а через op; пауза прерывается отменой ctx.
func WithRetry(ctx context.Context, attempts int, sleep time.Duration, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := &backoff.Backoff{Min: sleep, Max: 5 * time.Second, Factor: 2}
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
	return err
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent помечает ошибку как неповторяемую: WithRetry вернёт её сразу, без обёртки.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Sleep ждёт d или отмены ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
