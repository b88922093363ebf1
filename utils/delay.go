package utils

import (
	"context"
	"math/rand/v2"
	"time"
)

// Jitter is a randomized pause between Min and Max.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// Wait sleeps for a random duration in [Min, Max] or until ctx is done.
func (j Jitter) Wait(ctx context.Context) error {
	return Sleep(ctx, RandomDuration(j.Min, j.Max))
}

// RandomDuration returns a uniformly random duration in [min, max].
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)+1))
}

// Sleep pauses for d, returning early with ctx.Err() if ctx is cancelled.
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
