// Package retry runs bounded attempts with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Policy holds retry configuration.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration // zero means uncapped
	Multiplier   float64
}

// DefaultPolicy returns sensible defaults for upstream API calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// Delay returns the wait before the attempt following attempt (0-based):
// InitialDelay * Multiplier^attempt, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.InitialDelay)
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	for i := 0; i < attempt; i++ {
		delay *= mult
	}
	d := time.Duration(delay)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Wait sleeps for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
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

// Do executes fn with exponential backoff retry logic.
func Do[T any](ctx context.Context, p Policy, fn func(attempt int) (T, error)) (T, error) {
	return DoWithCheck(ctx, p, fn, func(error) bool { return true })
}

// DoWithCheck executes fn with retry, allowing a custom retry decision.
func DoWithCheck[T any](
	ctx context.Context,
	p Policy,
	fn func(attempt int) (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	var lastErr error
	var zero T

	n := p.attempts()
	for attempt := 0; attempt < n; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !shouldRetry(err) {
			break
		}

		// Don't wait after the last attempt
		if attempt == n-1 {
			break
		}

		if err := Wait(ctx, p.Delay(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
