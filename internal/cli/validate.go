package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dynweather/internal/config"
	"github.com/roach88/dynweather/internal/effect"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ConfigSummary describes a valid configuration.
type ConfigSummary struct {
	Valid         bool     `json:"valid"`
	Effects       int      `json:"effects"`
	Weather       int      `json:"weather"`
	Holiday       int      `json:"holiday"`
	Date          int      `json:"date"`
	AlwaysOn      int      `json:"always_on"`
	AlwaysDisplay string   `json:"always_display,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Text implements Texter.
func (s ConfigSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config valid: %d effect(s)", s.Effects)
	if s.Effects > 0 {
		fmt.Fprintf(&b, " (%d weather, %d holiday, %d date, %d always-on)", s.Weather, s.Holiday, s.Date, s.AlwaysOn)
	}
	b.WriteByte('\n')
	if s.AlwaysDisplay != "" {
		fmt.Fprintf(&b, "Always displaying %s; polling disabled\n", s.AlwaysDisplay)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Load a YAML or CUE configuration, apply DYNWEATHER_* environment
overrides and check it against the schema and the semantic rules.

Exit codes:
  0 - Config is valid
  1 - Config is invalid

Examples:
  dynweather validate --config ./dynweather.yaml
  dynweather validate --config ./dynweather.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading %s", opts.Config)
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		code, details := errorDetails(err)
		if outErr := formatter.Error(code, errorMessage(err), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "invalid config", err)
	}

	return formatter.Success(summarize(cfg))
}

// loadConfig loads, overlays the environment and validates.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// errorDetails maps a config error to an error code and, for load errors
// with a position, its location.
func errorDetails(err error) (string, map[string]any) {
	var loadErr *config.LoadError
	if !errors.As(err, &loadErr) {
		return ErrCodeInvalidConfig, nil
	}
	if !loadErr.Pos.IsValid() {
		return loadErr.Code, nil
	}
	return loadErr.Code, map[string]any{
		"file":   loadErr.Pos.Filename(),
		"line":   loadErr.Pos.Line(),
		"column": loadErr.Pos.Column(),
	}
}

func errorMessage(err error) string {
	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message
	}
	return err.Error()
}

func summarize(cfg config.Config) ConfigSummary {
	s := ConfigSummary{
		Valid:         true,
		Effects:       len(cfg.Effects),
		AlwaysDisplay: cfg.AlwaysDisplay,
		Warnings:      cfg.Warnings(),
	}
	for _, spec := range cfg.Effects {
		switch spec.Trigger() {
		case effect.TriggerWeather:
			s.Weather++
		case effect.TriggerHoliday:
			s.Holiday++
		case effect.TriggerDate:
			s.Date++
		default:
			s.AlwaysOn++
		}
	}
	return s
}
