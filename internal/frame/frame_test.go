package frame

import (
	"testing"
	"time"
)

func TestRequestRunsOnNextTickOnce(t *testing.T) {
	s := NewScheduler()
	n := 0
	s.Request(func(time.Duration) { n++ })
	s.Tick(time.Millisecond)
	s.Tick(2 * time.Millisecond)
	if n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
}

func TestRequestDuringTickWaits(t *testing.T) {
	s := NewScheduler()
	var order []int
	s.Request(func(time.Duration) {
		order = append(order, 1)
		s.Request(func(time.Duration) { order = append(order, 2) })
	})
	s.Tick(0)
	if len(order) != 1 {
		t.Fatalf("nested callback ran in the same tick: %v", order)
	}
	s.Tick(0)
	if len(order) != 2 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestCancel(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.Request(func(time.Duration) { ran = true })
	s.Cancel(h)
	s.Cancel(h)
	s.Cancel(0)
	s.Tick(0)
	if ran || s.Pending() != 0 {
		t.Error("cancelled callback ran")
	}
}

func TestCancelSiblingDuringTick(t *testing.T) {
	s := NewScheduler()
	var second Handle
	ran := false
	s.Request(func(time.Duration) { s.Cancel(second) })
	second = s.Request(func(time.Duration) { ran = true })
	s.Tick(0)
	if ran {
		t.Error("sibling cancelled mid-tick still ran")
	}
}

func TestPanicIsIsolated(t *testing.T) {
	s := NewScheduler()
	ok := false
	s.Request(func(time.Duration) { panic("boom") })
	s.Request(func(time.Duration) { ok = true })
	s.Tick(0)
	if !ok {
		t.Error("sibling callback did not run after a panic")
	}
}

func TestLoopStartIsIdempotent(t *testing.T) {
	s := NewScheduler()
	var l Loop
	n := 0
	step := func(time.Duration) { n++ }
	l.Start(s, step)
	l.Start(s, step)
	l.Start(s, step)
	if s.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.Pending())
	}
	for i := 0; i < 3; i++ {
		s.Tick(0)
	}
	if n != 3 {
		t.Errorf("frames = %d, want 3", n)
	}
	if !l.Running() {
		t.Error("loop should still be running")
	}
}

func TestLoopStop(t *testing.T) {
	s := NewScheduler()
	var l Loop
	n := 0
	l.Start(s, func(time.Duration) { n++ })
	s.Tick(0)
	l.Stop()
	l.Stop()
	s.Tick(0)
	s.Tick(0)
	if n != 1 || l.Running() || s.Pending() != 0 {
		t.Errorf("n=%d running=%v pending=%d", n, l.Running(), s.Pending())
	}
	l.Start(s, func(time.Duration) { n++ })
	s.Tick(0)
	if n != 2 {
		t.Errorf("restart did not resume frames: n=%d", n)
	}
}

func TestLoopStopFromInsideStep(t *testing.T) {
	s := NewScheduler()
	var l Loop
	n := 0
	l.Start(s, func(time.Duration) {
		n++
		l.Stop()
	})
	s.Tick(0)
	s.Tick(0)
	if n != 1 || s.Pending() != 0 {
		t.Errorf("n=%d pending=%d", n, s.Pending())
	}
}
