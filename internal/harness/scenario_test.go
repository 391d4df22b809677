package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/holiday_page.yaml")
	require.NoError(t, err)

	assert.Equal(t, "holiday_page", s.Name)
	assert.True(t, s.Now.Equal(time.Date(2026, time.November, 28, 8, 0, 0, 0, time.UTC)))
	require.Len(t, s.Steps, 3)
	require.NotNil(t, s.Steps[0].Holiday)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "pages", "thanksgiving.html"), s.Steps[0].Holiday.Doc)
	assert.Equal(t, 500, s.Steps[1].Weather.Code)
	assert.Equal(t, "3m", s.Steps[2].Advance)
	assert.Len(t, s.Assertions, 3)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: "misspelled key"
now: 2026-02-10T08:00:00Z
steps:
  - redraw: true
assertion:
  - type: phase
    phase: idle
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	const head = "name: n\ndescription: d\nnow: 2026-02-10T08:00:00Z\n"
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "description: d\nnow: 2026-02-10T08:00:00Z\nsteps: [{redraw: true}]\nassertions: [{type: phase, phase: idle}]\n", "name is required"},
		{"no now", "name: n\ndescription: d\nsteps: [{redraw: true}]\nassertions: [{type: phase, phase: idle}]\n", "now is required"},
		{"no steps", head + "assertions: [{type: phase, phase: idle}]\n", "steps list is required"},
		{"no assertions", head + "steps: [{redraw: true}]\n", "assertions list is required"},
		{"empty step", head + "steps: [{}]\nassertions: [{type: phase, phase: idle}]\n", "steps[0]: exactly one of"},
		{"two actions", head + "steps: [{redraw: true, advance: 1m}]\nassertions: [{type: phase, phase: idle}]\n", "steps[0]: exactly one of"},
		{"bad advance", head + "steps: [{advance: soon}]\nassertions: [{type: phase, phase: idle}]\n", "steps[0]: advance"},
		{"negative advance", head + "steps: [{advance: -1m}]\nassertions: [{type: phase, phase: idle}]\n", "must not be negative"},
		{"holiday without source", head + "steps: [{holiday: {}}]\nassertions: [{type: phase, phase: idle}]\n", "steps[0].holiday"},
		{"bad row date", head + "steps: [{holiday: {rows: [{date: Oct 31, names: [Halloween]}]}}]\nassertions: [{type: phase, phase: idle}]\n", "not YYYY-MM-DD"},
		{"no type", head + "steps: [{redraw: true}]\nassertions: [{phase: idle}]\n", "type is required"},
		{"unknown type", head + "steps: [{redraw: true}]\nassertions: [{type: final_state}]\n", `unknown type "final_state"`},
		{"bad phase", head + "steps: [{redraw: true}]\nassertions: [{type: phase, phase: paused}]\n", "assertions[0]: phase"},
		{"bad at", head + "steps: [{redraw: true}]\nassertions: [{type: transition_at, to: idle, at: later}]\n", "assertions[0]: at"},
		{"bad count target", head + "steps: [{redraw: true}]\nassertions: [{type: transition_count, to: gone, count: 1}]\n", "assertions[0]: to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
