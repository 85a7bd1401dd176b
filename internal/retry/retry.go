// Package retry runs an operation a bounded number of times with linear backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	Attempts int
	// Wait is multiplied by the attempt number between tries.
	Wait time.Duration
	// ShouldRetry reports whether err is worth another attempt. Nil retries every error.
	ShouldRetry func(error) bool
}

// Compensation is used for undo steps that must not be given up on quickly.
var Compensation = Config{Attempts: 3, Wait: 500 * time.Millisecond}

// Do calls fn until it succeeds, the attempts run out, ShouldRetry rejects
// the error or ctx is done.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, fmt.Errorf("after %d attempts: %w", i, lastErr)
			}
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}
		if i == attempts-1 {
			break
		}

		wait := cfg.Wait * time.Duration(i+1)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, lastErr)
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// Run is Do for operations without a result.
func Run(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
