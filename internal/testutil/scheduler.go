package testutil

import (
	"sort"
	"sync"
	"time"
)

// FakeScheduler is a virtual-time scheduler for tests.
//
// Time only moves when Advance or AdvanceTo is called. Due timers fire in
// deadline order (ties in scheduling order) on the caller's goroutine, and
// the clock reads each timer's deadline while its callback runs. Callbacks
// may schedule further timers; those fire within the same Advance if they
// fall due.
//
// It satisfies engine.Scheduler.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
// Callbacks run without the mutex held.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
	after  func()
}

type fakeTimer struct {
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

// NewFakeScheduler creates a scheduler whose clock reads start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

// Now returns the virtual time.
func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc registers fn to run once the clock reaches Now()+d.
func (s *FakeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &fakeTimer{at: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped {
			return false
		}
		t.stopped = true
		s.remove(t)
		return true
	}
}

// OnFire sets a hook that runs after every fired callback, typically to
// drain an engine's event queue so follow-up timers get scheduled in order.
func (s *FakeScheduler) OnFire(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.after = fn
}

// Advance moves the clock forward by d, firing due timers.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// AdvanceTo moves the clock to target, firing due timers. Moving backwards
// is ignored.
func (s *FakeScheduler) AdvanceTo(target time.Time) {
	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			if target.After(s.now) {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		next.stopped = true
		s.remove(next)
		if next.at.After(s.now) {
			s.now = next.at
		}
		hook := s.after
		s.mu.Unlock()

		next.fn()
		if hook != nil {
			hook()
		}
	}
}

// Pending returns the deadlines of timers that have not fired or been
// stopped, earliest first.
func (s *FakeScheduler) Pending() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Time, 0, len(s.timers))
	for _, t := range s.sorted() {
		out = append(out, t.at)
	}
	return out
}

func (s *FakeScheduler) nextDue(target time.Time) *fakeTimer {
	for _, t := range s.sorted() {
		if !t.at.After(target) {
			return t
		}
		break
	}
	return nil
}

func (s *FakeScheduler) sorted() []*fakeTimer {
	out := make([]*fakeTimer, len(s.timers))
	copy(out, s.timers)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].at.Equal(out[j].at) {
			return out[i].seq < out[j].seq
		}
		return out[i].at.Before(out[j].at)
	})
	return out
}

func (s *FakeScheduler) remove(t *fakeTimer) {
	for i, cand := range s.timers {
		if cand == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}
