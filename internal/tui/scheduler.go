package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactform/internal/clock"
)

// TimerFiredMsg reports that a scheduled task's delay has elapsed.
type TimerFiredMsg struct {
	Handle clock.Handle
}

// Scheduler is a clock.Scheduler whose tasks run on the Bubble Tea update
// loop. Schedule only queues the task; the model turns queued tasks into
// tea.Tick commands with Cmd and runs them with Fire when the tick arrives.
type Scheduler struct {
	mu     sync.Mutex
	next   clock.Handle
	tasks  map[clock.Handle]func()
	queued []queuedTask
}

type queuedTask struct {
	handle clock.Handle
	delay  time.Duration
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[clock.Handle]func())}
}

// Schedule implements clock.Scheduler.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) clock.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.tasks[s.next] = fn
	s.queued = append(s.queued, queuedTask{handle: s.next, delay: delay})
	return s.next
}

// Cancel implements clock.Scheduler.
func (s *Scheduler) Cancel(h clock.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[h]; !ok {
		return false
	}
	delete(s.tasks, h)
	return true
}

// Cmd drains queued tasks into tick commands. Returns nil when nothing is queued.
func (s *Scheduler) Cmd() tea.Cmd {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	if len(queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(queued))
	for i, q := range queued {
		h := q.handle
		cmds[i] = tea.Tick(q.delay, func(time.Time) tea.Msg {
			return TimerFiredMsg{Handle: h}
		})
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// Fire runs the task for h if it is still pending. Reports whether it ran.
func (s *Scheduler) Fire(h clock.Handle) bool {
	s.mu.Lock()
	fn, ok := s.tasks[h]
	delete(s.tasks, h)
	s.mu.Unlock()

	if !ok {
		return false
	}
	fn()
	return true
}

// Pending returns the number of tasks that have not fired or been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
