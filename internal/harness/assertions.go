package harness

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []store.Record // Full trace for debugging context
	Start    time.Time      // Trace offsets are relative to Start
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, rec := range e.Trace {
		fmt.Fprintf(&buf, "  %s\n", formatRecord(rec, e.Start))
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertPhase:
		return assertPhase(result, a)
	case AssertTransitionAt:
		return assertTransitionAt(result, a)
	case AssertVisuals:
		return assertVisuals(result, a)
	case AssertTransitionCount:
		return assertTransitionCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (r *Result) fail(a Assertion, expected, actual string) *AssertionError {
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   actual,
		Trace:    r.Trace,
		Start:    r.Start,
	}
}

// assertPhase checks the final phase.
func assertPhase(r *Result, a Assertion) error {
	if got := r.Final.Phase.String(); got != a.Phase {
		return r.fail(a, "final phase "+a.Phase, "final phase "+got)
	}
	return nil
}

// assertTransitionAt checks that some transition entered To exactly At
// after the start, with the given reason if one is named.
func assertTransitionAt(r *Result, a Assertion) error {
	at, err := time.ParseDuration(a.At)
	if err != nil {
		return err
	}
	for _, rec := range r.Trace {
		if rec.To.String() != a.To || r.Offset(rec) != at {
			continue
		}
		if a.Reason == "" || rec.Reason == a.Reason {
			return nil
		}
	}

	expected := fmt.Sprintf("transition to %s at +%s", a.To, at)
	if a.Reason != "" {
		expected += " (" + a.Reason + ")"
	}
	var seen []string
	for _, rec := range r.Trace {
		if rec.To.String() == a.To {
			seen = append(seen, fmt.Sprintf("+%s (%s)", r.Offset(rec), rec.Reason))
		}
	}
	if len(seen) == 0 {
		return r.fail(a, expected, "no transition to "+a.To)
	}
	return r.fail(a, expected, "transitions to "+a.To+" at "+strings.Join(seen, ", "))
}

// assertVisuals checks what one Showing entry rendered.
func assertVisuals(r *Result, a Assertion) error {
	var shows []store.Record
	for _, rec := range r.Trace {
		if rec.To == engine.PhaseShowing {
			shows = append(shows, rec)
		}
	}
	if len(shows) == 0 {
		return r.fail(a, fmt.Sprintf("visuals %v", a.Visuals), "nothing was shown")
	}

	idx := len(shows) - 1
	if a.Index > 0 {
		idx = a.Index - 1
	}
	if idx >= len(shows) {
		return r.fail(a, fmt.Sprintf("showing entry %d", a.Index), fmt.Sprintf("%d showing entries", len(shows)))
	}

	want := a.Visuals
	if want == nil {
		want = []string{}
	}
	if got := shows[idx].Visuals; !slices.Equal(got, want) {
		return r.fail(a, fmt.Sprintf("visuals %v", want), fmt.Sprintf("visuals %v", got))
	}
	return nil
}

// assertTransitionCount checks how many transitions happened, optionally
// only those into To.
func assertTransitionCount(r *Result, a Assertion) error {
	count := 0
	for _, rec := range r.Trace {
		if a.To == "" || rec.To.String() == a.To {
			count++
		}
	}
	if count != a.Count {
		what := "transitions"
		if a.To != "" {
			what = "transitions to " + a.To
		}
		return r.fail(a, fmt.Sprintf("%d %s", a.Count, what), fmt.Sprintf("%d %s", count, what))
	}
	return nil
}
