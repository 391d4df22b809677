package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/config"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", "--config", "../config/testdata/halloween.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Config valid: 3 effect(s) (1 weather, 1 holiday, 1 date, 0 always-on)\n", out)
}

func TestValidate_ValidCUE(t *testing.T) {
	out, err := execute(t, "validate", "--config", "../config/testdata/halloween.cue", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ConfigSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Effects)
	assert.Equal(t, 1, resp.Data.Holiday)
}

func TestValidate_IgnoredTriggers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mixed.yaml", `
effects:
  - weatherCode: 500
    holiday: Halloween
    images: [bat.png]
  - holiday: Halloween
    month: 10
    day: 31
    images: [ghost.png]
`)
	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Config valid: 2 effect(s) (1 weather, 1 holiday, 0 date, 0 always-on)\n"+
		"Warning: effects[0]: holiday ignored; weatherCode decides when it shows\n"+
		"Warning: effects[1]: month, day ignored; holiday decides when it shows\n", out)

	out, err = execute(t, "validate", "--config", path, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data ConfigSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Warnings, 2)
}

func TestValidate_AlwaysDisplay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "always.yaml", "alwaysDisplay: snow\n")
	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config valid: 0 effect(s)\n")
	assert.Contains(t, out, "Always displaying snow; polling disabled")
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), config.ErrCodeNotFound},
		{"schema violation", "../config/testdata/bad_direction.cue", config.ErrCodeSchema},
		{"unknown field", "../config/testdata/unknown_field.yaml", config.ErrCodeDecodeFailed},
		{"unsupported format", writeFile(t, dir, "cfg.toml", "x = 1\n"), config.ErrCodeUnsupported},
		{"semantic", writeFile(t, dir, "mode.yaml", "alwaysDisplay: sparkle\n"), ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "validate", "--config", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestValidate_ErrorJSONPosition(t *testing.T) {
	out, err := execute(t, "validate", "--config", "../config/testdata/bad_direction.cue", "--format", "json")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, config.ErrCodeSchema, resp.Error.Code)
}
