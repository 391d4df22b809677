package engine

import "time"

// Scheduler supplies wall time and one-shot timers.
//
// AfterFunc runs f once after d and returns a function that cancels the
// timer; the cancel function reports whether it stopped the timer before it
// fired. f may run on any goroutine, so engine code only ever enqueues from
// it.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemScheduler is the real-time Scheduler backed by the time package.
type SystemScheduler struct{}

// Now returns the current local time.
func (SystemScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// nextMidnight returns the start of the day after now, in now's location.
func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
