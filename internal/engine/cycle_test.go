package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/effect"
	"github.com/roach88/dynweather/internal/testutil"
)

var cycleStart = time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)

type recordingSurface struct {
	calls      []string
	failRender bool
}

func (s *recordingSurface) Render(v effect.Visual) error {
	s.calls = append(s.calls, "render:"+v.Name())
	if s.failRender {
		return errors.New("surface unavailable")
	}
	return nil
}

func (s *recordingSurface) Clear() error {
	s.calls = append(s.calls, "clear")
	return nil
}

type controllerFixture struct {
	ctl         *Controller
	state       *State
	sched       *testutil.FakeScheduler
	surface     *recordingSurface
	events      []Event
	transitions []Transition
}

func newControllerFixture() *controllerFixture {
	f := &controllerFixture{
		state:   &State{},
		sched:   testutil.NewFakeScheduler(cycleStart),
		surface: &recordingSurface{},
	}
	f.ctl = &Controller{
		state:    f.state,
		sched:    f.sched,
		surface:  f.surface,
		ids:      testutil.NewSequentialIDs(""),
		duration: 2 * time.Minute,
		delay:    time.Minute,
		enqueue: func(e Event) bool {
			f.events = append(f.events, e)
			return true
		},
		emit:   func(t Transition) { f.transitions = append(f.transitions, t) },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return f
}

// fire delivers every enqueued timer event to the controller.
func (f *controllerFixture) fire() bool {
	redraw := false
	events := f.events
	f.events = nil
	for _, e := range events {
		if f.ctl.OnTimer(e.Timer, e.CycleID) {
			redraw = true
		}
	}
	return redraw
}

func TestController_FullCycle(t *testing.T) {
	f := newControllerFixture()
	snow := []effect.Visual{effect.BuiltinVisual(effect.KindSnow)}

	f.ctl.Show(snow, ReasonWeather)
	assert.Equal(t, PhaseShowing, f.state.Phase)
	assert.Equal(t, "cycle-1", f.state.CycleID)
	assert.Equal(t, cycleStart.Add(2*time.Minute), f.state.PendingHideAt)
	assert.Equal(t, []string{"clear", "render:snow"}, f.surface.calls)

	f.sched.Advance(2*time.Minute - time.Millisecond)
	assert.Empty(t, f.events, "no transition before the duration elapses")

	f.sched.Advance(time.Millisecond)
	require.Len(t, f.events, 1)
	assert.False(t, f.fire())
	assert.Equal(t, PhaseCooldown, f.state.Phase)
	assert.Nil(t, f.state.Active)
	assert.Equal(t, cycleStart.Add(3*time.Minute), f.state.PendingResetAt)
	assert.Equal(t, []string{"clear", "render:snow", "clear"}, f.surface.calls)

	f.sched.Advance(time.Minute)
	assert.True(t, f.fire(), "returning to idle asks for a redraw")
	assert.Equal(t, PhaseIdle, f.state.Phase)
	assert.True(t, f.state.PendingResetAt.IsZero())

	require.Len(t, f.transitions, 3)
	assert.Equal(t, PhaseIdle, f.transitions[0].From)
	assert.Equal(t, PhaseShowing, f.transitions[0].To)
	assert.Equal(t, []string{"snow"}, f.transitions[0].Visuals)
	assert.Equal(t, cycleStart.Add(2*time.Minute), f.transitions[1].At)
	assert.Equal(t, ReasonDuration, f.transitions[1].Reason)
	assert.Equal(t, cycleStart.Add(3*time.Minute), f.transitions[2].At)
	assert.Equal(t, ReasonCooldown, f.transitions[2].Reason)
}

func TestController_ShowRestartsTimers(t *testing.T) {
	f := newControllerFixture()
	rain := []effect.Visual{effect.BuiltinVisual(effect.KindRain)}

	f.ctl.Show(rain, ReasonWeather)
	f.sched.Advance(time.Minute)
	f.ctl.Show(rain, ReasonHoliday)
	assert.Equal(t, "cycle-2", f.state.CycleID)
	assert.Len(t, f.sched.Pending(), 1, "previous duration timer cancelled")

	f.sched.Advance(time.Minute)
	assert.Empty(t, f.events, "first cycle's deadline passes silently")

	f.sched.Advance(time.Minute)
	require.Len(t, f.events, 1)
	assert.Equal(t, "cycle-2", f.events[0].CycleID)
}

func TestController_ShowFromCooldown(t *testing.T) {
	f := newControllerFixture()
	snow := []effect.Visual{effect.BuiltinVisual(effect.KindSnow)}

	f.ctl.Show(snow, ReasonWeather)
	f.sched.Advance(2 * time.Minute)
	f.fire()
	require.Equal(t, PhaseCooldown, f.state.Phase)

	f.ctl.Show(snow, ReasonWeather)
	assert.Equal(t, PhaseShowing, f.state.Phase)
	assert.True(t, f.state.PendingResetAt.IsZero())
	assert.Equal(t, PhaseCooldown, f.transitions[len(f.transitions)-1].From)
}

func TestController_StaleTimerDropped(t *testing.T) {
	f := newControllerFixture()
	f.ctl.Show([]effect.Visual{effect.BuiltinVisual(effect.KindCloud)}, ReasonWeather)

	assert.False(t, f.ctl.OnTimer(TimerDuration, "cycle-0"))
	assert.Equal(t, PhaseShowing, f.state.Phase)

	// Right cycle, wrong phase.
	assert.False(t, f.ctl.OnTimer(TimerCooldown, "cycle-1"))
	assert.Equal(t, PhaseShowing, f.state.Phase)
	assert.Len(t, f.transitions, 1)
}

func TestController_RenderFailureStillAdvances(t *testing.T) {
	f := newControllerFixture()
	f.surface.failRender = true

	f.ctl.Show([]effect.Visual{effect.BuiltinVisual(effect.KindSnow)}, ReasonWeather)
	assert.Equal(t, PhaseShowing, f.state.Phase)

	f.sched.Advance(2 * time.Minute)
	f.fire()
	assert.Equal(t, PhaseCooldown, f.state.Phase)
}

func TestController_Hold(t *testing.T) {
	f := newControllerFixture()
	f.ctl.Hold(effect.BuiltinVisual(effect.KindRain))

	assert.Equal(t, PhaseShowing, f.state.Phase)
	assert.Empty(t, f.sched.Pending(), "held effects never time out")
	assert.True(t, f.state.PendingHideAt.IsZero())
	require.Len(t, f.transitions, 1)
	assert.Equal(t, ReasonAlwaysDisplay, f.transitions[0].Reason)
}

func TestController_Stop(t *testing.T) {
	f := newControllerFixture()
	f.ctl.Show([]effect.Visual{effect.BuiltinVisual(effect.KindSnow)}, ReasonWeather)
	f.ctl.Stop()

	assert.Empty(t, f.sched.Pending())
	f.sched.Advance(time.Hour)
	assert.Empty(t, f.events)
}
