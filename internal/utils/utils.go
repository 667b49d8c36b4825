package utils

import (
	"context"
	"time"
)

// maxBackoff caps the delay returned by Backoff.
const maxBackoff = time.Minute

// WaitFor blocks for d or until ctx is done, whichever happens first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the exponential delay for the given zero-based retry attempt.
func Backoff(initial time.Duration, attempt int) time.Duration {
	if initial <= 0 || attempt < 0 {
		return 0
	}

	delay := initial
	for range attempt {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
