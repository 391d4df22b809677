package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dynweather/internal/engine"
)

// Scenario defines a display-cycle scenario.
// A scenario feeds weather and holiday results into an engine running on
// virtual time and asserts on the resulting transitions and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the virtual start time (RFC 3339).
	Now time.Time `yaml:"now"`

	// Config is an inline configuration mapping, decoded and checked
	// exactly like a YAML config file. Omit it for all defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Steps are applied in order after the engine starts.
	Steps []Step `yaml:"steps"`

	// Assertions validate the transitions and final state.
	// Supported types: phase, transition_at, visuals, transition_count
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	// Weather delivers a weather fetch result.
	Weather *WeatherStep `yaml:"weather,omitempty"`

	// Holiday delivers a holiday fetch result.
	Holiday *HolidayStep `yaml:"holiday,omitempty"`

	// Advance moves virtual time forward by a Go duration ("2m", "24h"),
	// firing every timer that falls due.
	Advance string `yaml:"advance,omitempty"`

	// Redraw requests a redraw.
	Redraw bool `yaml:"redraw,omitempty"`
}

// WeatherStep is a weather result: a condition code or a failure.
type WeatherStep struct {
	Code int    `yaml:"code,omitempty"`
	Fail string `yaml:"fail,omitempty"`
}

// HolidayStep is a holiday result. Doc names an HTML listing relative to
// the scenario file; Rows generates one inline; Fail delivers a failure.
type HolidayStep struct {
	Doc  string       `yaml:"doc,omitempty"`
	Rows []HolidayRow `yaml:"rows,omitempty"`
	Fail string       `yaml:"fail,omitempty"`
}

// HolidayRow is one generated listing row.
type HolidayRow struct {
	// Date is YYYY-MM-DD.
	Date  string   `yaml:"date"`
	Names []string `yaml:"names"`
}

// Assertion validates transitions or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "phase": the final phase equals Phase
	// - "transition_at": a transition into To happened At after Now
	// - "visuals": the Index-th Showing entry (1-based, default last)
	//   rendered exactly Visuals
	// - "transition_count": exactly Count transitions happened, or
	//   Count into To when To is set
	Type string `yaml:"type"`

	// Phase is the expected final phase (used by phase).
	Phase string `yaml:"phase,omitempty"`

	// To is the target phase (used by transition_at, transition_count).
	To string `yaml:"to,omitempty"`

	// At is a Go duration offset from Now (used by transition_at).
	At string `yaml:"at,omitempty"`

	// Reason optionally narrows transition_at.
	Reason string `yaml:"reason,omitempty"`

	// Visuals are the expected visual names (used by visuals).
	Visuals []string `yaml:"visuals,omitempty"`

	// Index selects a Showing entry (used by visuals).
	Index int `yaml:"index,omitempty"`

	// Count is the expected number of transitions (used by transition_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPhase           = "phase"
	AssertTransitionAt    = "transition_at"
	AssertVisuals         = "visuals"
	AssertTransitionCount = "transition_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Holiday document paths are resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range scenario.Steps {
		h := scenario.Steps[i].Holiday
		if h != nil && h.Doc != "" && !filepath.IsAbs(h.Doc) {
			h.Doc = filepath.Join(base, h.Doc)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative holiday document paths are
// left as given.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Now.IsZero() {
		return fmt.Errorf("now is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Weather != nil {
		set++
	}
	if step.Holiday != nil {
		set++
		sources := 0
		if step.Holiday.Doc != "" {
			sources++
		}
		if len(step.Holiday.Rows) > 0 {
			sources++
		}
		if step.Holiday.Fail != "" {
			sources++
		}
		if sources != 1 {
			return fmt.Errorf("steps[%d].holiday: exactly one of doc, rows or fail is required", index)
		}
		for j, row := range step.Holiday.Rows {
			if _, err := time.Parse(time.DateOnly, row.Date); err != nil {
				return fmt.Errorf("steps[%d].holiday.rows[%d]: date %q is not YYYY-MM-DD", index, j, row.Date)
			}
		}
	}
	if step.Advance != "" {
		set++
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d]: advance %s must not be negative", index, step.Advance)
		}
	}
	if step.Redraw {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of weather, holiday, advance or redraw is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPhase:
		if _, err := engine.ParsePhase(a.Phase); err != nil {
			return fmt.Errorf("assertions[%d]: phase: %w", index, err)
		}
	case AssertTransitionAt:
		if _, err := engine.ParsePhase(a.To); err != nil {
			return fmt.Errorf("assertions[%d]: to: %w", index, err)
		}
		if _, err := time.ParseDuration(a.At); err != nil {
			return fmt.Errorf("assertions[%d]: at: %w", index, err)
		}
	case AssertVisuals:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must not be negative", index)
		}
	case AssertTransitionCount:
		if a.To != "" {
			if _, err := engine.ParsePhase(a.To); err != nil {
				return fmt.Errorf("assertions[%d]: to: %w", index, err)
			}
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}

	return nil
}
