package frame

import "time"

// Loop is a self-rescheduling frame callback with idempotent Start/Stop.
// Engines embed one and hand it their per-frame step.
type Loop struct {
	sched  *Scheduler
	handle Handle
	active bool
	step   Callback
}

// Start begins calling step once per tick. Calling Start on a running
// loop does nothing, so repeated calls never create a second loop.
func (l *Loop) Start(s *Scheduler, step Callback) {
	if l.active && l.handle != 0 {
		return
	}
	l.sched = s
	l.step = step
	l.active = true
	if l.handle == 0 {
		l.handle = s.Request(l.frame)
	}
}

// Stop cancels the pending callback so no further frames run. It is safe
// to call from inside the step itself.
func (l *Loop) Stop() {
	l.active = false
	if l.handle == 0 {
		return
	}
	l.sched.Cancel(l.handle)
	l.handle = 0
}

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool {
	return l.active && l.handle != 0
}

func (l *Loop) frame(now time.Duration) {
	// Cleared before the step: a panicking step leaves the loop unscheduled.
	l.handle = 0
	l.step(now)
	if l.active && l.handle == 0 {
		l.handle = l.sched.Request(l.frame)
	}
}
