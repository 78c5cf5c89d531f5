// Package frame provides the display-synchronized callback loop the effect
// engines run on. It mirrors the browser's requestAnimationFrame contract:
// a callback requested during a tick runs on the next tick, once.
package frame

import (
	"log"
	"time"
)

// Handle identifies a pending callback. The zero Handle is never issued.
type Handle uint64

// Callback receives the time elapsed since the scheduler was created.
type Callback func(now time.Duration)

type pending struct {
	handle Handle
	cb     Callback
}

// Scheduler queues callbacks for the next frame. It is not safe for
// concurrent use; all engines run on the game loop goroutine.
type Scheduler struct {
	next    Handle
	queue   []pending
	running []pending
	now     time.Duration
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Request schedules cb for the next Tick.
func (s *Scheduler) Request(cb Callback) Handle {
	s.next++
	s.queue = append(s.queue, pending{handle: s.next, cb: cb})
	return s.next
}

// Cancel removes a pending callback. Cancelling an unknown or already run
// handle does nothing.
func (s *Scheduler) Cancel(h Handle) {
	if h == 0 {
		return
	}
	for i, p := range s.queue {
		if p.handle == h {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
	for i := range s.running {
		if s.running[i].handle == h {
			s.running[i].cb = nil
			return
		}
	}
}

// Pending returns the number of callbacks waiting for the next tick.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Now returns the timestamp of the most recent tick.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Tick runs every callback queued before the tick started. Callbacks
// requested while the tick runs wait for the following tick. A callback
// that panics is logged and dropped without affecting its siblings.
func (s *Scheduler) Tick(now time.Duration) {
	s.now = now
	s.running, s.queue = s.queue, s.running[:0]
	for i := range s.running {
		cb := s.running[i].cb
		if cb == nil {
			continue
		}
		s.run(s.running[i].handle, cb, now)
	}
	s.running = s.running[:0]
}

func (s *Scheduler) run(h Handle, cb Callback, now time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[frame] callback %d panicked, dropping it: %v", h, r)
		}
	}()
	cb(now)
}
