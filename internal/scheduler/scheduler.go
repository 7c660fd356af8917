// Package scheduler arms one-shot expiry timers for notifications and
// guarantees at most one expiry callback per armed deadline.
package scheduler

import (
	"sync"
	"time"
)

// Clock abstracts time for the scheduler so tests can control it.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// RealClock is the production Clock backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	timer Timer
	gen   uint64
}

// Scheduler tracks one pending timer per notification id. Arming replaces
// any previous timer; firing reports the id to the expire callback, which is
// responsible for checking that the notification is actually still due
// (presence in the store is the single source of truth for races between a
// late fire and a manual close).
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	timers  map[uint32]entry
	nextGen uint64
	expire  func(id uint32)
}

// New creates a Scheduler that calls expire(id) when a deadline fires.
// The callback runs on the timer goroutine and must not call back into
// Arm/Cancel while holding locks the daemon also takes before Arm.
func New(clock Clock, expire func(id uint32)) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[uint32]entry),
		expire: expire,
	}
}

// Arm schedules expiry of id at deadline, replacing any pending timer. A zero
// deadline means the notification never expires and only cancels.
func (s *Scheduler) Arm(id uint32, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)
	if deadline.IsZero() {
		return
	}

	s.nextGen++
	gen := s.nextGen
	d := deadline.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	s.timers[id] = entry{
		timer: s.clock.AfterFunc(d, func() { s.fire(id, gen) }),
		gen:   gen,
	}
}

// Cancel drops any pending timer for id. It is idempotent.
func (s *Scheduler) Cancel(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

func (s *Scheduler) cancelLocked(id uint32) {
	if e, ok := s.timers[id]; ok {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// Shutdown cancels all pending timers.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) fire(id uint32, gen uint64) {
	s.mu.Lock()
	e, ok := s.timers[id]
	if !ok || e.gen != gen {
		// Cancelled or re-armed between the timer firing and us getting the
		// lock; the fire is stale.
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	s.expire(id)
}
