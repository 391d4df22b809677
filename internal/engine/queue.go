package engine

import (
	"sync"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeWeather carries a weather fetch result.
	EventTypeWeather EventType = iota + 1
	// EventTypeHoliday carries a holiday fetch result.
	EventTypeHoliday
	// EventTypeTimer is a display-cycle timer firing.
	EventTypeTimer
	// EventTypeRedraw asks for a redraw; honoured only when Idle.
	EventTypeRedraw
	// EventTypeDayChange fires at local midnight.
	EventTypeDayChange
)

func (t EventType) String() string {
	switch t {
	case EventTypeWeather:
		return "weather"
	case EventTypeHoliday:
		return "holiday"
	case EventTypeTimer:
		return "timer"
	case EventTypeRedraw:
		return "redraw"
	case EventTypeDayChange:
		return "day-change"
	default:
		return "unknown"
	}
}

// TimerKind identifies which display-cycle timer fired.
type TimerKind int

const (
	TimerDuration TimerKind = iota + 1
	TimerCooldown
)

// Event is one unit of work for the engine loop.
type Event struct {
	Type EventType

	// Weather and Err are set for EventTypeWeather.
	Weather WeatherReport
	// Document and Err are set for EventTypeHoliday.
	Document string
	Err      error

	// Timer and CycleID are set for EventTypeTimer.
	Timer   TimerKind
	CycleID string
}

// eventQueue is a thread-safe FIFO queue for events.
//
// Pollers and timer callbacks enqueue from their own goroutines while the
// engine loop dequeues. The queue is unbounded; in practice it rarely holds
// more than a handful of events.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Clear the slot so the holiday document can be collected.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
