package harness

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dynweather/internal/store"
)

// FormatTrace renders a result as the line-oriented text stored in golden
// files:
//
//	scenario: snow_full_cycle
//	start: 2026-02-10T08:00:00Z
//	#1 +0s cycle-1 idle->showing weather [snow]
//	#2 +2m0s cycle-1 showing->cooldown duration
//	final: phase=cooldown weather=601 displayed=601 holidays=[]
//
// Run IDs are left out since they differ on every run.
func FormatTrace(name string, result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "start: %s\n", result.Start.UTC().Format(time.RFC3339))
	for _, rec := range result.Trace {
		b.WriteString(formatRecord(rec, result.Start))
		b.WriteByte('\n')
	}
	f := result.Final
	fmt.Fprintf(&b, "final: phase=%s weather=%d displayed=%d holidays=[%s]\n",
		f.Phase, f.WeatherCode, f.DisplayedCode, strings.Join(f.Holidays, ", "))
	return b.String()
}

func formatRecord(rec store.Record, start time.Time) string {
	line := fmt.Sprintf("#%d +%s %s %s->%s %s",
		rec.Seq, rec.At.Sub(start), rec.CycleID, rec.From, rec.To, rec.Reason)
	if len(rec.Visuals) > 0 {
		line += " [" + strings.Join(rec.Visuals, " ") + "]"
	}
	return line
}

// RunWithGolden executes a scenario and compares its trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, []byte(FormatTrace(scenarioName, result)))
}
