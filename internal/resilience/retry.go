package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// DefaultRetries is how many times a failed read query is retried.
const DefaultRetries = 3

// Policy controls retries of read queries. Mutations are never retried and
// must not go through Retry.
type Policy struct {
	Retries        int           // retries after the first attempt; 0 disables
	InitialBackoff time.Duration // delay before the first retry
	MaxBackoff     time.Duration
	Jitter         float64 // fraction of the delay, 0..1

	// OnRetry is called before sleeping, with the 1-based retry number.
	OnRetry func(retry int, err error)
}

// DefaultPolicy retries three times starting at 500ms, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		Retries:        DefaultRetries,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Jitter:         0.2,
	}
}

// NoRetry runs fn exactly once.
func NoRetry() Policy { return Policy{} }

// Retry runs fn and retries transient failures according to p. It stops as
// soon as ctx is done or the error is not transient.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.Retries || ctx.Err() != nil || !IsTransient(err) {
			return zero, err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		t := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, err
		case <-t.C:
		}
	}
}

func (p Policy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d > p.MaxBackoff {
			d = p.MaxBackoff
			break
		}
	}
	if p.Jitter > 0 {
		d += time.Duration((rand.Float64()*2 - 1) * p.Jitter * float64(d))
	}
	return max(d, 0)
}

// LogRetries returns an OnRetry hook logging through the global zap logger.
func LogRetries(operation string) func(int, error) {
	return func(retry int, err error) {
		zap.L().Warn("retrying backend query",
			zap.String("operation", operation),
			zap.Int("retry", retry),
			zap.Error(err),
		)
	}
}
