package engine

import (
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/dynweather/internal/effect"
)

// Controller is the display-cycle state machine.
//
//	Idle/Showing/Cooldown --Show--> Showing   (timers restarted)
//	Showing --duration timer--> Cooldown      (surface cleared)
//	Cooldown --cooldown timer--> Idle         (caller may redraw)
//
// The controller does not queue transitions: Show always replaces whatever
// cycle is in progress. Render results never block a transition.
//
// Controller is not safe for concurrent use; the engine drives it from its
// event loop. Timer callbacks only enqueue EventTypeTimer events.
type Controller struct {
	state    *State
	sched    Scheduler
	surface  Surface
	ids      CycleIDGenerator
	duration time.Duration
	delay    time.Duration
	enqueue  func(Event) bool
	emit     func(Transition)
	logger   *slog.Logger

	cancel func() bool
}

// Show renders visuals and starts a new Showing cycle from any phase.
func (c *Controller) Show(visuals []effect.Visual, reason string) {
	c.stopTimer()
	from := c.state.Phase

	c.clearSurface()
	for _, v := range visuals {
		if err := c.surface.Render(v); err != nil {
			c.logger.Warn("render failed", "visual", v.Name(), "error", err)
		}
	}

	now := c.sched.Now()
	id := c.ids.Generate()
	c.state.Phase = PhaseShowing
	c.state.Active = slices.Clone(visuals)
	c.state.CycleID = id
	c.state.PendingHideAt = now.Add(c.duration)
	c.state.PendingResetAt = time.Time{}
	c.cancel = c.schedule(TimerDuration, id, c.duration)

	c.logger.Debug("effect showing", "cycle", id, "visuals", visualNames(visuals), "duration", c.duration)
	c.transition(from, PhaseShowing, reason, visuals)
}

// Hold renders v and stays in Showing with no timers. Used when one effect
// is forced on permanently.
func (c *Controller) Hold(v effect.Visual) {
	c.stopTimer()
	from := c.state.Phase

	c.clearSurface()
	if err := c.surface.Render(v); err != nil {
		c.logger.Warn("render failed", "visual", v.Name(), "error", err)
	}

	visuals := []effect.Visual{v}
	c.state.Phase = PhaseShowing
	c.state.Active = visuals
	c.state.CycleID = c.ids.Generate()
	c.state.PendingHideAt = time.Time{}
	c.state.PendingResetAt = time.Time{}
	c.transition(from, PhaseShowing, ReasonAlwaysDisplay, visuals)
}

// OnTimer advances the cycle for a fired timer. It returns true when the
// cycle has returned to Idle and the caller should redraw.
//
// Firings for a cycle other than the current one, or for a phase the cycle
// has already left, are dropped.
func (c *Controller) OnTimer(kind TimerKind, cycleID string) bool {
	if cycleID != c.state.CycleID {
		c.logger.Debug("stale timer dropped", "cycle", cycleID, "current", c.state.CycleID)
		return false
	}

	switch {
	case kind == TimerDuration && c.state.Phase == PhaseShowing:
		c.cancel = nil
		c.clearSurface()
		c.state.Phase = PhaseCooldown
		c.state.Active = nil
		c.state.PendingHideAt = time.Time{}
		c.state.PendingResetAt = c.sched.Now().Add(c.delay)
		c.cancel = c.schedule(TimerCooldown, cycleID, c.delay)
		c.logger.Debug("effect stopped", "cycle", cycleID, "cooldown", c.delay)
		c.transition(PhaseShowing, PhaseCooldown, ReasonDuration, nil)
		return false

	case kind == TimerCooldown && c.state.Phase == PhaseCooldown:
		c.cancel = nil
		c.state.Phase = PhaseIdle
		c.state.PendingResetAt = time.Time{}
		c.logger.Debug("effect reset", "cycle", cycleID)
		c.transition(PhaseCooldown, PhaseIdle, ReasonCooldown, nil)
		return true
	}

	c.logger.Debug("timer ignored", "cycle", cycleID, "phase", c.state.Phase)
	return false
}

// Stop cancels any pending timer.
func (c *Controller) Stop() {
	c.stopTimer()
	c.state.PendingHideAt = time.Time{}
	c.state.PendingResetAt = time.Time{}
}

func (c *Controller) schedule(kind TimerKind, cycleID string, d time.Duration) func() bool {
	return c.sched.AfterFunc(d, func() {
		c.enqueue(Event{Type: EventTypeTimer, Timer: kind, CycleID: cycleID})
	})
}

func (c *Controller) stopTimer() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) clearSurface() {
	if err := c.surface.Clear(); err != nil {
		c.logger.Warn("clear failed", "error", err)
	}
}

func (c *Controller) transition(from, to Phase, reason string, visuals []effect.Visual) {
	if c.emit == nil {
		return
	}
	c.emit(Transition{
		CycleID: c.state.CycleID,
		From:    from,
		To:      to,
		At:      c.sched.Now(),
		Reason:  reason,
		Visuals: visualNames(visuals),
	})
}
