package effect

import (
	"errors"
	"fmt"
	"time"
)

// Direction is the travel direction of an effect's particles.
type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
)

// Trigger identifies what makes a Spec eligible.
type Trigger int

const (
	TriggerAlways Trigger = iota
	TriggerDate
	TriggerWeather
	TriggerHoliday
)

func (t Trigger) String() string {
	switch t {
	case TriggerAlways:
		return "always"
	case TriggerDate:
		return "date"
	case TriggerWeather:
		return "weather"
	case TriggerHoliday:
		return "holiday"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// Spec is a user-configured effect.
//
// Zero values mean "unset": Month, Day and Year of 0 are unset (Year 0 matches
// any year), WeatherCode 0 or below is absent, an empty Holiday is absent and
// a Size of 0 renders at scale 1.
type Spec struct {
	Month       int       `yaml:"month,omitempty" json:"month,omitempty"`
	Day         int       `yaml:"day,omitempty" json:"day,omitempty"`
	Year        int       `yaml:"year,omitempty" json:"year,omitempty"`
	Images      []string  `yaml:"images" json:"images"`
	Direction   Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
	Size        float64   `yaml:"size,omitempty" json:"size,omitempty"`
	WeatherCode int       `yaml:"weatherCode,omitempty" json:"weatherCode,omitempty"`
	Holiday     string    `yaml:"holiday,omitempty" json:"holiday,omitempty"`

	// DoDisplay is recomputed on every evaluation; it is never loaded from
	// configuration.
	DoDisplay bool `yaml:"-" json:"-"`
}

// HasWeatherCode reports whether the spec is weather-triggered.
func (s Spec) HasWeatherCode() bool { return s.WeatherCode > 0 }

// HasHoliday reports whether the spec is holiday-triggered.
func (s Spec) HasHoliday() bool { return s.Holiday != "" }

// HasDate reports whether any calendar field is set.
func (s Spec) HasDate() bool { return s.Month != 0 || s.Day != 0 || s.Year != 0 }

// Trigger returns the spec's trigger kind. A weather code wins over a
// holiday, and either wins over calendar fields.
func (s Spec) Trigger() Trigger {
	switch {
	case s.HasWeatherCode():
		return TriggerWeather
	case s.HasHoliday():
		return TriggerHoliday
	case s.HasDate():
		return TriggerDate
	default:
		return TriggerAlways
	}
}

// Ignored names the trigger fields that are set but lose to a higher
// precedence trigger, in field order. It is nil when at most one trigger
// is set.
func (s Spec) Ignored() []string {
	var out []string
	trigger := s.Trigger()
	if trigger == TriggerWeather && s.HasHoliday() {
		out = append(out, "holiday")
	}
	if trigger == TriggerWeather || trigger == TriggerHoliday {
		for _, f := range []struct {
			name string
			set  bool
		}{{"month", s.Month != 0}, {"day", s.Day != 0}, {"year", s.Year != 0}} {
			if f.set {
				out = append(out, f.name)
			}
		}
	}
	return out
}

// Scale returns the render scale, defaulting to 1.
func (s Spec) Scale() float64 {
	if s.Size <= 0 {
		return 1
	}
	return s.Size
}

// Heading returns the particle direction, defaulting to down.
func (s Spec) Heading() Direction {
	if s.Direction == "" {
		return DirectionDown
	}
	return s.Direction
}

// Validate reports every problem with the spec.
func (s Spec) Validate() error {
	var errs []error
	if len(s.Images) == 0 {
		errs = append(errs, errors.New("images must not be empty"))
	}
	switch s.Direction {
	case "", DirectionDown, DirectionUp:
	default:
		errs = append(errs, fmt.Errorf("direction %q must be %q or %q", s.Direction, DirectionUp, DirectionDown))
	}
	if s.Size < 0 {
		errs = append(errs, fmt.Errorf("size %v must not be negative", s.Size))
	}
	if s.Month < 0 || s.Month > 12 {
		errs = append(errs, fmt.Errorf("month %d out of range 1-12", s.Month))
	}
	if s.Day < 0 || s.Day > 31 {
		errs = append(errs, fmt.Errorf("day %d out of range 1-31", s.Day))
	}
	if s.Year < 0 {
		errs = append(errs, fmt.Errorf("year %d must not be negative", s.Year))
	}
	return errors.Join(errs...)
}

// Snow is the built-in snow effect.
var Snow = Spec{
	Images:    []string{"snow1.png", "snow2.png", "snow3.png"},
	Direction: DirectionDown,
	Size:      1,
}

// Today is a calendar day with no time of day attached.
type Today struct {
	Year  int
	Month time.Month
	Day   int
}

// TodayOf returns the calendar day of t in t's own location.
func TodayOf(t time.Time) Today {
	y, m, d := t.Date()
	return Today{Year: y, Month: m, Day: d}
}

func (t Today) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year, int(t.Month), t.Day)
}
