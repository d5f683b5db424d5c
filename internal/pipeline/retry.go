package pipeline

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop around one batch translation.
// Transient provider failures are retried with exponential backoff;
// permanent ones never enter the loop.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Multiplier  float64
	Max         time.Duration
}

// DefaultRetryPolicy mirrors the usual pipeline configuration: three
// attempts, 2s base doubling up to a minute.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Base:        2 * time.Second,
		Multiplier:  2.0,
		Max:         60 * time.Second,
	}
}

// Backoff returns the delay before the given retry, 1-based. The delay
// grows geometrically from Base and never exceeds Max.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.Base
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.Max {
			return p.Max
		}
	}
	if d > p.Max {
		return p.Max
	}
	return d
}

// sleep waits for d or until ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
