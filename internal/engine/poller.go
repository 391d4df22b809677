package engine

import (
	"context"
	"sync"
	"time"
)

// Poller runs a task now and then every interval until stopped.
//
// Each tick schedules the next one before running the task, so a slow or
// failing task never delays or cancels the schedule. The task gets a context
// that is cancelled by Stop and bounded by the interval.
//
// Thread-safety: Start and Stop are safe from any goroutine.
type Poller struct {
	name     string
	interval time.Duration
	sched    Scheduler
	task     func(ctx context.Context)

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	stop    func() bool
	started bool
	stopped bool
}

// NewPoller creates a stopped poller.
func NewPoller(name string, sched Scheduler, interval time.Duration, task func(ctx context.Context)) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		name:     name,
		interval: interval,
		sched:    sched,
		task:     task,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Name identifies the poller in logs.
func (p *Poller) Name() string { return p.name }

// Start schedules the first run immediately. Calling Start again, or after
// Stop, does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true
	p.stop = p.sched.AfterFunc(0, p.tick)
}

// Stop cancels the pending run and any task in flight.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.cancel()
}

func (p *Poller) tick() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stop = p.sched.AfterFunc(p.interval, p.tick)
	ctx, cancel := context.WithTimeout(p.ctx, p.interval)
	p.mu.Unlock()

	defer cancel()
	p.task(ctx)
}
