package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler for tests. Callbacks run
// synchronously inside Advance, in due-time order.
type Fake struct {
	mu    sync.Mutex
	now   time.Duration
	next  Handle
	tasks map[Handle]fakeTask
}

type fakeTask struct {
	due time.Duration
	seq Handle
	fn  func()
}

// NewFake creates a Fake clock at elapsed time zero.
func NewFake() *Fake {
	return &Fake{tasks: make(map[Handle]fakeTask)}
}

// Schedule implements Scheduler.
func (f *Fake) Schedule(delay time.Duration, fn func()) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	f.next++
	f.tasks[f.next] = fakeTask{due: f.now + delay, seq: f.next, fn: fn}
	return f.next
}

// Cancel implements Scheduler.
func (f *Fake) Cancel(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[h]; !ok {
		return false
	}
	delete(f.tasks, h)
	return true
}

// Advance moves the clock forward by d and runs every task that becomes due.
// Tasks scheduled by a callback run in the same call if they fall due
// within the advanced window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()

	for {
		f.mu.Lock()
		task, ok := f.nextDue(target)
		if !ok {
			f.now = target
			f.mu.Unlock()
			return
		}
		delete(f.tasks, task.seq)
		f.now = task.due
		f.mu.Unlock()

		task.fn()
	}
}

// Elapsed returns the total time the clock has been advanced.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Pending returns the number of scheduled tasks that have not run.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// nextDue returns the earliest task due at or before target. Caller holds mu.
func (f *Fake) nextDue(target time.Duration) (fakeTask, bool) {
	due := make([]fakeTask, 0, len(f.tasks))
	for _, t := range f.tasks {
		if t.due <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return fakeTask{}, false
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0], true
}
