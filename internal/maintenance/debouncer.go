package maintenance

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects keys and emits them as one sorted batch once no new key
// arrived for the configured delay.
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	pending map[string]struct{}
	emit    func([]string)
}

// NewDebouncer creates a debouncer that hands batches to emit.
func NewDebouncer(delay time.Duration, emit func([]string)) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]struct{}),
		emit:    emit,
	}
}

// Add records key and restarts the quiet period.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[key] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	keys := d.Drain()
	if len(keys) > 0 && d.emit != nil {
		d.emit(keys)
	}
}

// Drain stops the timer and returns the pending keys without emitting them.
func (d *Debouncer) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(d.pending) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.pending = make(map[string]struct{})
	sort.Strings(keys)
	return keys
}

// Flush emits pending keys immediately.
func (d *Debouncer) Flush() {
	d.fire()
}

// Cancel drops pending keys.
func (d *Debouncer) Cancel() {
	d.Drain()
}

// Pending returns the number of keys waiting to be emitted.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
