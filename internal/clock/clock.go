// Package clock provides one-shot scheduled tasks behind an interface so
// delayed UI transitions can be driven by real timers or by a fake clock.
package clock

import (
	"sync"
	"time"
)

// Handle identifies a scheduled task. The zero Handle never refers to a task.
type Handle uint64

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	// Schedule arranges for fn to run once after delay and returns its handle.
	Schedule(delay time.Duration, fn func()) Handle
	// Cancel stops a pending task. It reports whether the task was still
	// pending; cancelling a fired or unknown handle returns false.
	Cancel(h Handle) bool
}

// Timers is a Scheduler backed by time.AfterFunc. Callbacks run on their
// own goroutine.
type Timers struct {
	mu      sync.Mutex
	next    Handle
	pending map[Handle]*time.Timer
}

// NewTimers creates a real-time Scheduler.
func NewTimers() *Timers {
	return &Timers{pending: make(map[Handle]*time.Timer)}
}

// Schedule implements Scheduler.
func (t *Timers) Schedule(delay time.Duration, fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	h := t.next
	t.pending[h] = time.AfterFunc(delay, func() {
		t.mu.Lock()
		_, ok := t.pending[h]
		delete(t.pending, h)
		t.mu.Unlock()
		if ok {
			fn()
		}
	})
	return h
}

// Cancel implements Scheduler.
func (t *Timers) Cancel(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.pending[h]
	if !ok {
		return false
	}
	delete(t.pending, h)
	timer.Stop()
	return true
}

// Stop cancels every pending task.
func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for h, timer := range t.pending {
		timer.Stop()
		delete(t.pending, h)
	}
}

// Pending returns the number of tasks that have not fired or been cancelled.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
