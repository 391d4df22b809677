package effect

import "fmt"

// Kind identifies what a Visual draws.
type Kind int

const (
	KindCustom Kind = iota
	KindSnow
	KindRain
	KindCloud
)

func (k Kind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindSnow:
		return "snow"
	case KindRain:
		return "rain"
	case KindCloud:
		return "cloud"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps an always-display mode name to a built-in kind.
// "cloudy" is the configuration spelling of KindCloud.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "snow":
		return KindSnow, true
	case "rain":
		return KindRain, true
	case "cloudy":
		return KindCloud, true
	default:
		return 0, false
	}
}

// Range is an inclusive span of weather condition codes.
// Codes follow https://openweathermap.org/weather-conditions.
type Range struct {
	Min, Max int
}

// Contains reports whether code lies in the range, bounds included.
func (r Range) Contains(code int) bool {
	return code >= r.Min && code <= r.Max
}

var (
	SnowRange  = Range{Min: 600, Max: 622}
	RainRange  = Range{Min: 200, Max: 531}
	CloudRange = Range{Min: 801, Max: 804}
)

// Suppress holds the per-range hide flags.
type Suppress struct {
	Snow   bool
	Rain   bool
	Clouds bool
}

// Builtin returns the built-in visual for code. Ranges are checked snow,
// rain, clouds; a suppressed range is skipped.
func Builtin(code int, hide Suppress) (Kind, bool) {
	switch {
	case SnowRange.Contains(code) && !hide.Snow:
		return KindSnow, true
	case RainRange.Contains(code) && !hide.Rain:
		return KindRain, true
	case CloudRange.Contains(code) && !hide.Clouds:
		return KindCloud, true
	}
	return 0, false
}

// TriggersBuiltin reports whether code would show any built-in visual.
func TriggersBuiltin(code int, hide Suppress) bool {
	_, ok := Builtin(code, hide)
	return ok
}

// Visual is one thing a render surface is asked to draw.
type Visual struct {
	Kind Kind

	// Index is the catalog position of a custom effect, -1 for built-ins.
	Index int

	// Spec carries images, direction and size. Rain and cloud visuals have
	// no spec.
	Spec *Spec
}

// BuiltinVisual returns the Visual for a built-in kind.
func BuiltinVisual(k Kind) Visual {
	v := Visual{Kind: k, Index: -1}
	if k == KindSnow {
		snow := Snow
		v.Spec = &snow
	}
	return v
}

// Name is a short label for logs and traces: the kind for built-ins,
// "effect[i]" for custom effects.
func (v Visual) Name() string {
	if v.Kind == KindCustom {
		return fmt.Sprintf("effect[%d]", v.Index)
	}
	return v.Kind.String()
}
