package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fsort/internal/taxonomy"
)

// Pacer is implemented by classifiers that throttle their calls. Pace
// blocks until the next call may start; that call then does not wait again.
// Callers pace with a context that has no per-call deadline so a slow
// limiter never eats into the call timeout.
type Pacer interface {
	Pace(ctx context.Context) error
}

// RateLimited paces calls to a cloud classifier.
type RateLimited struct {
	inner   Classifier
	limiter *rate.Limiter

	mu     sync.Mutex
	credit int // slots already taken by Pace
}

// WithRateLimit wraps c so every call first waits on limiter.
func WithRateLimit(c Classifier, limiter *rate.Limiter) *RateLimited {
	return &RateLimited{inner: c, limiter: limiter}
}

// PerMinute returns a limiter allowing n calls per minute with no burst.
func PerMinute(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// Pace implements Pacer.
func (r *RateLimited) Pace(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	r.credit++
	r.mu.Unlock()
	return nil
}

func (r *RateLimited) wait(ctx context.Context) error {
	r.mu.Lock()
	if r.credit > 0 {
		r.credit--
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// the next slot lies past the call deadline
		return &TransientError{Message: fmt.Sprintf("classifier: local rate limit: %v", err)}
	}
	return nil
}

// Categorize implements Classifier.
func (r *RateLimited) Categorize(ctx context.Context, name, path string, kind taxonomy.EntryKind, promptContext string) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Categorize(ctx, name, path, kind, promptContext)
}

// Complete implements Classifier.
func (r *RateLimited) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Complete(ctx, prompt, maxTokens)
}

// SetPromptLogging implements Classifier.
func (r *RateLimited) SetPromptLogging(enabled bool) {
	r.inner.SetPromptLogging(enabled)
}
