package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/config"
	"github.com/roach88/dynweather/internal/source"
	"github.com/roach88/dynweather/internal/testutil"
)

var (
	weatherFileType = source.WeatherFile("")
	holidayFileType = source.HolidayFile("")
)

const checkConfig = `
effects:
  - holiday: Halloween
    images: [pumpkin.png]
  - month: 12
    day: 25
    images: [tree.png]
  - weatherCode: 610
    images: [flake.png]
`

func testConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	cfg, err := config.ParseYAML([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

type checkResponse struct {
	Status string      `json:"status"`
	Data   CheckResult `json:"data"`
}

func runCheckJSON(t *testing.T, args ...string) CheckResult {
	t.Helper()
	out, err := execute(t, append([]string{"check", "--format", "json"}, args...)...)
	require.NoError(t, err)
	var resp checkResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCheck_HolidayAndBuiltin(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", checkConfig)
	page := writeFile(t, dir, "page.html", testutil.HolidayDocument(
		testutil.HolidayRow{Date: testutil.UTCDay(2019, time.October, 31), Names: []string{"Halloween"}},
	))

	got := runCheckJSON(t, "--config", cfg, "--code", "601", "--holidays", page, "--date", "2026-10-31")
	assert.Equal(t, "2026-10-31", got.Date)
	assert.Equal(t, []string{"Halloween"}, got.Holidays)
	assert.Equal(t, []string{"effect[0]", "snow"}, got.Visuals)
	assert.True(t, got.Redisplay)
	require.Len(t, got.Effects, 3)
	assert.Equal(t, CheckedEffect{Name: "effect[0]", Trigger: "holiday", Eligible: true}, got.Effects[0])
	assert.Equal(t, CheckedEffect{Name: "effect[1]", Trigger: "date", Eligible: false}, got.Effects[1])
	assert.Equal(t, CheckedEffect{Name: "effect[2]", Trigger: "weather", Eligible: false}, got.Effects[2])
}

func TestCheck_DateAndWeatherCode(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", checkConfig)

	got := runCheckJSON(t, "--config", cfg, "--code", "610", "--date", "2026-12-25")
	assert.Empty(t, got.Holidays)
	assert.Equal(t, []string{"effect[1]", "effect[2]", "snow"}, got.Visuals)
}

func TestCheck_SuppressedText(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", "hideSnow: true\n")

	out, err := execute(t, "check", "--config", cfg, "--code", "601", "--date", "2026-01-10")
	require.NoError(t, err)
	assert.Equal(t, "Date: 2026-01-10  Code: 601\nSelected: nothing\n", out)
}

func TestCheck_TextListing(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", checkConfig)

	out, err := execute(t, "check", "--config", cfg, "--code", "500", "--date", "2026-12-25")
	require.NoError(t, err)
	assert.Contains(t, out, "  effect[1]  date     eligible\n")
	assert.Contains(t, out, "  effect[2]  weather  -\n")
	assert.Contains(t, out, "Selected: effect[1], rain\n")
	assert.Contains(t, out, "would start a new display")
}

func TestCheck_AlwaysDisplay(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", "alwaysDisplay: cloudy\n")

	out, err := execute(t, "check", "--config", cfg, "--code", "601", "--date", "2026-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Always displaying: cloud\n")
}

func TestCheck_BadDate(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", checkConfig)

	_, err := execute(t, "check", "--config", cfg, "--code", "601", "--date", "31/10/2026")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheck_MissingHolidayPage(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", checkConfig)

	_, err := execute(t, "check", "--config", cfg, "--code", "601", "--holidays", "nope.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read holiday page")
}
