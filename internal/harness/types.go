package harness

import (
	"time"

	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Start is the scenario's virtual start time; trace offsets are
	// relative to it.
	Start time.Time `json:"start"`

	// Trace contains every journaled transition in order.
	Trace []store.Record `json:"trace"`

	// Final is the engine state after the last step.
	Final engine.State `json:"final"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(start time.Time) *Result {
	return &Result{
		Pass:   true,
		Start:  start,
		Trace:  []store.Record{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Offset returns how long after Start the record happened.
func (r *Result) Offset(rec store.Record) time.Duration {
	return rec.At.Sub(r.Start)
}
