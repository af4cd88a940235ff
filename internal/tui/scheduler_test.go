package tui

import (
	"testing"
	"time"

	"github.com/smileynet/contactform/internal/clock"
)

func TestScheduler_ScheduleQueuesUntilFired(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.Schedule(time.Second, func() { ran = true })

	if ran {
		t.Fatal("Schedule ran the task immediately")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
	if cmd := s.Cmd(); cmd == nil {
		t.Fatal("Cmd() = nil with a queued task")
	}
	if cmd := s.Cmd(); cmd != nil {
		t.Error("second Cmd() should be nil once the queue is drained")
	}

	if !s.Fire(h) {
		t.Fatal("Fire() = false for a pending task")
	}
	if !ran {
		t.Error("Fire did not run the task")
	}
	if s.Fire(h) {
		t.Error("Fire() twice ran the task twice")
	}
}

func TestScheduler_TickDeliversHandle(t *testing.T) {
	s := NewScheduler()
	h := s.Schedule(time.Millisecond, func() {})

	msg := s.Cmd()()

	fired, ok := msg.(TimerFiredMsg)
	if !ok {
		t.Fatalf("tick produced %T, want TimerFiredMsg", msg)
	}
	if fired.Handle != h {
		t.Errorf("Handle = %d, want %d", fired.Handle, h)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.Schedule(time.Second, func() { ran = true })

	if !s.Cancel(h) {
		t.Fatal("Cancel() = false for a pending task")
	}
	if s.Cancel(h) {
		t.Error("second Cancel() = true")
	}
	if s.Fire(h) || ran {
		t.Error("cancelled task ran")
	}
}

func TestScheduler_EmptyCmd(t *testing.T) {
	if cmd := NewScheduler().Cmd(); cmd != nil {
		t.Error("Cmd() on an empty scheduler should be nil")
	}
}

func TestScheduler_ImplementsClockScheduler(t *testing.T) {
	var _ clock.Scheduler = NewScheduler()
}
