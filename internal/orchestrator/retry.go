package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults: attempts on the order of tens, waits doubling from one
// second up to a five-minute ceiling.
const (
	DefaultMaxAttempts = 36
	DefaultBaseWait    = 1 * time.Second
	DefaultMaxWait     = 300 * time.Second
)

// RetryPolicy describes bounded exponential backoff. The operation runs
// exactly MaxAttempts times before giving up; the wait doubles after each
// failed attempt and never exceeds MaxWait.
type RetryPolicy struct {
	MaxAttempts int
	BaseWait    time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy returns the documented defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseWait:    DefaultBaseWait,
		MaxWait:     DefaultMaxWait,
	}
}

// normalize clamps invalid field values to usable ones.
func (p *RetryPolicy) normalize() {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseWait <= 0 {
		p.BaseWait = DefaultBaseWait
	}
	if p.MaxWait < p.BaseWait {
		p.MaxWait = p.BaseWait
	}
}

// Do runs fn until it succeeds or MaxAttempts is exhausted. Between
// attempts it sleeps the current backoff wait, interruptibly: ctx
// cancellation is observed during the wait and before each attempt, never
// mid-request. notify, if non-nil, is called before each backoff sleep
// with the failed attempt number, the error, and the coming wait.
//
// The returned count is the number of attempts actually made. err is nil
// on success, ctx.Err() on cancellation, and the last attempt's error on
// exhaustion.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, notify func(attempt int, err error, wait time.Duration)) (int, error) {
	p.normalize()

	wait := p.BaseWait
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if notify != nil {
				notify(attempt-1, lastErr, wait)
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return attempt - 1, ctx.Err()
			case <-timer.C:
			}
			wait = min(wait*2, p.MaxWait)
		}
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}
	}

	return p.MaxAttempts, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
