package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dynweather/internal/effect"
	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/holiday"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Config   string
	Code     int
	Holidays string
	Date     string

	// Now overrides the current time (for testing).
	Now func() time.Time
}

// CheckedEffect is one catalog entry after evaluation.
type CheckedEffect struct {
	Name     string `json:"name"`
	Trigger  string `json:"trigger"`
	Eligible bool   `json:"eligible"`
}

// CheckResult is what the engine would decide for one set of inputs.
type CheckResult struct {
	Date          string          `json:"date"`
	Code          int             `json:"code"`
	Holidays      []string        `json:"holidays"`
	Effects       []CheckedEffect `json:"effects"`
	Visuals       []string        `json:"visuals"`
	Redisplay     bool            `json:"redisplay"`
	AlwaysDisplay string          `json:"always_display,omitempty"`
}

// Text implements Texter.
func (r CheckResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s  Code: %d\n", r.Date, r.Code)
	if r.AlwaysDisplay != "" {
		fmt.Fprintf(&b, "Always displaying: %s\n", strings.Join(r.Visuals, ", "))
		return b.String()
	}
	if len(r.Holidays) > 0 {
		fmt.Fprintf(&b, "Holidays today: %s\n", strings.Join(r.Holidays, ", "))
	}
	for _, e := range r.Effects {
		mark := "-"
		if e.Eligible {
			mark = "eligible"
		}
		fmt.Fprintf(&b, "  %-10s %-8s %s\n", e.Name, e.Trigger, mark)
	}
	if len(r.Visuals) == 0 {
		b.WriteString("Selected: nothing\n")
	} else {
		fmt.Fprintf(&b, "Selected: %s\n", strings.Join(r.Visuals, ", "))
	}
	if r.Redisplay {
		b.WriteString("A report with this code would start a new display.\n")
	}
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show which effects a weather code selects",
		Long: `Evaluate the configured effects for one weather code without polling
anything: date rules for --date (default today), holidays from a saved
listing page, then the weather code. Prints each effect's eligibility and
the visuals that would be rendered.

Examples:
  dynweather check --config ./dynweather.yaml --code 601
  dynweather check --config ./dynweather.yaml --code 800 --holidays ./page.html --date 2026-10-31`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().IntVar(&opts.Code, "code", 0, "weather condition code (required)")
	_ = cmd.MarkFlagRequired("code")
	cmd.Flags().StringVar(&opts.Holidays, "holidays", "", "saved holiday listing page")
	cmd.Flags().StringVar(&opts.Date, "date", "", "evaluate as of YYYY-MM-DD (default today)")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		code, details := errorDetails(err)
		if outErr := formatter.Error(code, errorMessage(err), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "invalid config", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	today := now()
	if opts.Date != "" {
		today, err = time.ParseInLocation(time.DateOnly, opts.Date, time.Local)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --date", err)
		}
	}

	result := CheckResult{
		Date:     today.Format(time.DateOnly),
		Code:     opts.Code,
		Holidays: []string{},
		Effects:  []CheckedEffect{},
	}

	if cfg.AlwaysDisplay != "" {
		kind, _ := effect.ParseKind(cfg.AlwaysDisplay)
		result.AlwaysDisplay = cfg.AlwaysDisplay
		result.Visuals = []string{effect.BuiltinVisual(kind).Name()}
		return formatter.Success(result)
	}

	resolver := engine.NewResolver(cfg.Effects, cfg.Hide())
	resolver.EvaluateDates(effect.TodayOf(today))

	if opts.Holidays != "" {
		doc, err := os.ReadFile(opts.Holidays)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read holiday page", err)
		}
		matched, err := holiday.MatchDocument(string(doc), holiday.Names(cfg.Effects), today)
		if err != nil {
			formatter.VerboseLog("Holiday page ignored: %v", err)
		}
		if matched != nil {
			result.Holidays = matched
		}
		resolver.ApplyHolidays(matched)
	}

	result.Redisplay = resolver.ApplyWeather(opts.Code, 0)

	for i, spec := range resolver.Catalog() {
		result.Effects = append(result.Effects, CheckedEffect{
			Name:     fmt.Sprintf("effect[%d]", i),
			Trigger:  spec.Trigger().String(),
			Eligible: spec.DoDisplay,
		})
	}
	result.Visuals = []string{}
	for _, v := range resolver.Select(opts.Code) {
		result.Visuals = append(result.Visuals, v.Name())
	}

	return formatter.Success(result)
}
