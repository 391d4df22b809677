package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/store"
)

const snowReport = `{"weather":[{"id":601,"main":"Snow"}],"name":"Berlin"}`

func TestRun_MissingAPIKey(t *testing.T) {
	t.Setenv("DYNWEATHER_API_KEY", "")
	path := writeFile(t, t.TempDir(), "cfg.yaml", "effectDuration: 60000\n")
	_, err := execute(t, "run", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "apiKey is required")
}

func TestRun_BadConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", "../config/testdata/bad_direction.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_JournalsTransitions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "cfg.yaml", "effectDuration: 60000\n")
	weatherPath := writeFile(t, dir, "weather.json", snowReport)
	dbPath := filepath.Join(dir, "journal.db")

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--config", cfgPath, "--weather-file", weatherPath, "--db", dbPath})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	errChan := make(chan error, 1)
	go func() { errChan <- cmd.ExecuteContext(ctx) }()

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("command did not respect context timeout")
	}
	assert.Contains(t, out.String(), "Display started")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	records, err := st.ListTransitions(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, records, "snow should have been shown")
	assert.Equal(t, engine.PhaseShowing, records[0].To)
	assert.Equal(t, engine.ReasonWeather, records[0].Reason)
	assert.Equal(t, []string{"snow"}, records[0].Visuals)
}

func TestRun_TerminalQuitsOnKey(t *testing.T) {
	dir := t.TempDir()
	sim := tcell.NewSimulationScreen("UTF-8")
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      writeFile(t, dir, "cfg.yaml", "alwaysDisplay: snow\nparticleCount: 20\n"),
		Terminal:    true,
		NewScreen:   func() (tcell.Screen, error) { return sim, nil },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	errChan := make(chan error, 1)
	start := time.Now()
	go func() { errChan <- runDisplay(opts, cmd) }()

	time.Sleep(200 * time.Millisecond)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-errChan:
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 5*time.Second, "q should quit before the deadline")
	case <-time.After(8 * time.Second):
		t.Fatal("terminal run did not quit")
	}
}

func TestBuildSources(t *testing.T) {
	cfg := testConfig(t, "apiKey: abc\nlat: 52.5\nlon: 13.4\n")

	weather, holidays, err := buildSources(&RunOptions{}, cfg)
	require.NoError(t, err)
	assert.NotNil(t, weather)
	assert.NotNil(t, holidays)

	weather, holidays, err = buildSources(&RunOptions{WeatherFile: "w.json", HolidayFile: "h.html"}, testConfig(t, ""))
	require.NoError(t, err)
	assert.IsType(t, weatherFileType, weather)
	assert.IsType(t, holidayFileType, holidays)

	weather, _, err = buildSources(&RunOptions{}, testConfig(t, "alwaysDisplay: rain\n"))
	require.NoError(t, err)
	assert.Nil(t, weather)
}
