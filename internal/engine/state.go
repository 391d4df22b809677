package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/roach88/dynweather/internal/effect"
)

// Phase is a state of the display cycle.
type Phase int

const (
	// PhaseIdle: nothing showing, open to re-evaluation.
	PhaseIdle Phase = iota
	// PhaseShowing: effects rendered; redraw requests are ignored.
	PhaseShowing
	// PhaseCooldown: effects cleared, waiting before returning to Idle.
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseShowing:
		return "showing"
	case PhaseCooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "idle":
		return PhaseIdle, nil
	case "showing":
		return PhaseShowing, nil
	case "cooldown":
		return PhaseCooldown, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}

// State is the engine's process-wide state.
//
// INVARIANTS:
//   - WeatherLoaded and HolidayLoaded never return to false once set
//   - Active is non-nil only while Phase is PhaseShowing
//   - PendingHideAt is set only while Showing with a duration timer,
//     PendingResetAt only while in Cooldown
type State struct {
	// WeatherCode is the last successfully fetched condition code (0 = none).
	WeatherCode int

	// DisplayedCode is the weather code the current display was started
	// for; 0 when nothing weather-driven is on screen.
	DisplayedCode int

	WeatherLoaded bool
	HolidayLoaded bool

	// Holidays are today's matched holiday names from the latest document.
	Holidays []string

	// HasDateEffects is true while a dated effect matches today.
	HasDateEffects bool

	Phase   Phase
	Active  []effect.Visual
	CycleID string

	PendingHideAt  time.Time
	PendingResetAt time.Time
}

// Loaded reports whether both initial fetches have resolved.
func (s State) Loaded() bool {
	return s.WeatherLoaded && s.HolidayLoaded
}

func (s State) clone() State {
	s.Holidays = slices.Clone(s.Holidays)
	s.Active = slices.Clone(s.Active)
	return s
}
