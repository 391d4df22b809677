package engine

import (
	"context"
	"time"

	"github.com/roach88/dynweather/internal/effect"
)

// Surface is where effects are drawn. The engine never inspects what a
// surface does with a visual.
type Surface interface {
	// Render draws one visual's particle set.
	Render(v effect.Visual) error

	// Clear removes everything previously rendered.
	Clear() error
}

// Transition records one display-cycle state change.
type Transition struct {
	Seq     int64
	CycleID string
	From    Phase
	To      Phase
	At      time.Time
	Reason  string

	// Visuals names what was rendered on entering Showing.
	Visuals []string
}

// Recorder persists transitions for diagnostics.
type Recorder interface {
	RecordTransition(ctx context.Context, t Transition) error
}

// Reasons attached to transitions.
const (
	ReasonWeather       = "weather"
	ReasonHoliday       = "holiday"
	ReasonDate          = "date"
	ReasonRedraw        = "redraw"
	ReasonDuration      = "duration"
	ReasonCooldown      = "cooldown"
	ReasonAlwaysDisplay = "always-display"
)

// visualNames lists visual names for transitions and logs.
func visualNames(vs []effect.Visual) []string {
	if len(vs) == 0 {
		return nil
	}
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name()
	}
	return names
}
