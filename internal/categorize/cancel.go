package categorize

import (
	"sync"
	"sync/atomic"
)

// CancelToken is a cancellation flag shared between the goroutine running a
// batch and the one that may stop it. The engine polls it before each
// classifier call and around backoff waits; in-flight calls are never aborted.
// A nil *CancelToken never cancels.
type CancelToken struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewCancelToken returns an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel sets the flag. Safe to call more than once and from any goroutine.
func (t *CancelToken) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
	t.once.Do(func() { close(t.done) })
}

// Cancelled reports whether Cancel was called.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Done is closed once Cancel is called. It is nil for a nil token, so a
// select on it blocks forever.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}
