package util

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// RetryPolicy describes exponential backoff with jitter. The SDK core never
// retries on its own; this helper exists for callers who want a retry layer
// around individual SDK operations.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFactor   float64
}

// DefaultRetryPolicy is a conservative starting point: 3 attempts, 250ms
// initial backoff doubling up to 5s, 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
		JitterFactor:   0.2,
	}
}

// Do runs fn until it succeeds, attempts are exhausted, or the context is
// cancelled. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		wait := backoff
		if p.JitterFactor > 0 {
			jitter := time.Duration(float64(backoff) * p.JitterFactor * (2*rand.Float64() - 1))
			wait += jitter
		}
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(wait):
		}

		backoff = time.Duration(float64(backoff) * p.BackoffFactor)
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return lastErr
}
