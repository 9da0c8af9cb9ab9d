package hec

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackoff returns the retry schedule between delivery attempts: 2s, 4s,
// 8s and so on, with no jitter, no cap and no overall deadline.
func NewBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Delay is the wait after the given failed attempt (1-indexed).
func Delay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
