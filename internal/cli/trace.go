package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Cycle    string // optional - filter to one display cycle
}

// TraceEvent is one journaled transition.
type TraceEvent struct {
	Run     string    `json:"run"`
	Seq     int64     `json:"seq"`
	Cycle   string    `json:"cycle"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
	Reason  string    `json:"reason"`
	Visuals []string  `json:"visuals"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Cycle    string       `json:"cycle,omitempty"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Transitions int `json:"transitions"`
	Runs        int `json:"runs"`
	Cycles      int `json:"cycles"`
	Shows       int `json:"shows"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled display transitions",
		Long: `Print the display-cycle transitions journaled by "run --db".

Each line shows the run, sequence number, time, cycle, the phase change,
its reason and, on entering showing, the visuals rendered.

Examples:
  dynweather trace --db ./journal.db
  dynweather trace --db ./journal.db --cycle 01928c5e-...
  dynweather trace --db ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Cycle, "cycle", "", "filter to one cycle ID")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	// store.Open would create an empty journal
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	records, err := st.ListTransitions(ctx, opts.Cycle)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := buildTrace(records, opts.Cycle)

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result)
}

// buildTrace converts journal records to the trace timeline.
func buildTrace(records []store.Record, cycle string) TraceResult {
	result := TraceResult{Cycle: cycle, Timeline: make([]TraceEvent, 0, len(records))}
	runs := map[string]bool{}
	cycles := map[string]bool{}

	for _, rec := range records {
		result.Timeline = append(result.Timeline, TraceEvent{
			Run:     rec.RunID,
			Seq:     rec.Seq,
			Cycle:   rec.CycleID,
			From:    rec.From.String(),
			To:      rec.To.String(),
			At:      rec.At,
			Reason:  rec.Reason,
			Visuals: rec.Visuals,
		})
		runs[rec.RunID] = true
		cycles[rec.CycleID] = true
		if rec.To == engine.PhaseShowing {
			result.Stats.Shows++
		}
	}

	result.Stats.Transitions = len(records)
	result.Stats.Runs = len(runs)
	result.Stats.Cycles = len(cycles)
	return result
}

// outputTraceJSON outputs the trace as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{Status: "ok", Data: result})
}

// outputTraceText outputs the trace as a timeline.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	if len(result.Timeline) == 0 {
		if result.Cycle != "" {
			fmt.Fprintf(w, "No transitions found for cycle: %s\n", result.Cycle)
		} else {
			fmt.Fprintln(w, "No transitions journaled.")
		}
		return nil
	}

	run := ""
	for _, ev := range result.Timeline {
		if ev.Run != run {
			run = ev.Run
			fmt.Fprintf(w, "Run %s\n", run)
		}
		line := fmt.Sprintf("  [%d] %s %s %s -> %s (%s)",
			ev.Seq, ev.At.Format(time.RFC3339), ev.Cycle, ev.From, ev.To, ev.Reason)
		if len(ev.Visuals) > 0 {
			line += " " + strings.Join(ev.Visuals, ", ")
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d transitions, %d shows, %d cycles, %d runs\n",
		result.Stats.Transitions, result.Stats.Shows, result.Stats.Cycles, result.Stats.Runs)
	return nil
}
