package maintenance

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	got := make(chan []string, 4)
	d := NewDebouncer(30*time.Millisecond, func(keys []string) { got <- keys })

	d.Add("/b")
	d.Add("/a")
	d.Add("/b")

	if d.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", d.Pending())
	}

	select {
	case keys := <-got:
		if len(keys) != 2 || keys[0] != "/a" || keys[1] != "/b" {
			t.Errorf("keys = %v, want [/a /b]", keys)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("debouncer never fired")
	}

	select {
	case keys := <-got:
		t.Errorf("unexpected second batch %v", keys)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerCancel(t *testing.T) {
	var mu sync.Mutex
	called := false
	d := NewDebouncer(20*time.Millisecond, func([]string) {
		mu.Lock()
		called = true
		mu.Unlock()
	})

	d.Add("/a")
	d.Cancel()
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("emit should not be called after cancel")
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestDebouncerFlush(t *testing.T) {
	var received []string
	d := NewDebouncer(time.Hour, func(keys []string) { received = keys })

	d.Add("/a")
	d.Flush()
	if len(received) != 1 || received[0] != "/a" {
		t.Errorf("received = %v", received)
	}

	received = nil
	d.Flush()
	if received != nil {
		t.Error("Flush with nothing pending should not emit")
	}
}

func TestDebouncerDrain(t *testing.T) {
	d := NewDebouncer(time.Hour, nil)
	if d.Drain() != nil {
		t.Error("Drain on empty debouncer should return nil")
	}
	d.Add("/z")
	d.Add("/y")
	keys := d.Drain()
	if len(keys) != 2 || keys[0] != "/y" {
		t.Errorf("Drain = %v", keys)
	}
	if d.Pending() != 0 {
		t.Error("Drain should clear pending keys")
	}
}
