package categorize

import (
	"context"
	"time"
)

// RetryPolicy bounds retries of transient classifier failures.
type RetryPolicy struct {
	// MaxAttempts counts every call, the first one included.
	MaxAttempts int
	// BaseDelay is the first backoff when the classifier advised no delay;
	// each further retry doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy allows three attempts with 2s, 4s backoff capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Delay returns the wait before retry number retry (0 for the first retry).
// An advised delay wins over the exponential schedule; both are capped at MaxDelay.
func (p RetryPolicy) Delay(retry int, advised time.Duration) time.Duration {
	d := advised
	if d <= 0 {
		d = p.BaseDelay
		for i := 0; i < retry && d < p.MaxDelay; i++ {
			d *= 2
		}
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// sleep waits for d and reports false if the token or ctx fired first.
func sleep(ctx context.Context, cancel *CancelToken, d time.Duration) bool {
	if cancel.Cancelled() || ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return !cancel.Cancelled() && ctx.Err() == nil
	case <-cancel.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
