// Package retry provides bounded exponential-backoff retries.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Config controls retry behavior.
type Config struct {
	Attempts   int           // total attempts, including the first
	BaseDelay  time.Duration // delay before the second attempt
	Multiplier float64       // backoff factor between attempts
	MaxDelay   time.Duration // cap on the computed delay
}

// DefaultConfig retries 3 times total: delays of 1s then 2s between attempts.
func DefaultConfig() Config {
	return Config{
		Attempts:   3,
		BaseDelay:  time.Second,
		Multiplier: 2.0,
		MaxDelay:   time.Minute,
	}
}

type stopError struct {
	err error
}

func (s *stopError) Error() string { return s.err.Error() }
func (s *stopError) Unwrap() error { return s.err }

// Stop wraps an error so Do aborts immediately instead of retrying.
// The original error is returned to the caller unwrapped.
func Stop(err error) error {
	return &stopError{err: err}
}

// Do runs fn until it succeeds, returns a Stop-wrapped error, the attempts
// are exhausted, or the context is done. attempt is 1-based.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}

		lastErr = err
		if attempt == cfg.Attempts {
			break
		}

		select {
		case <-time.After(delayFor(cfg, attempt)):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, ctx.Err())
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, lastErr)
}

func delayFor(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
