package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/dynweather/internal/config"
	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/render"
	"github.com/roach88/dynweather/internal/source"
	"github.com/roach88/dynweather/internal/store"
)

// frameInterval paces terminal animation.
const frameInterval = 50 * time.Millisecond

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config      string
	Database    string
	Terminal    bool
	WeatherFile string
	HolidayFile string

	// NewScreen overrides the terminal screen (for testing).
	// If nil, defaults to tcell.NewScreen.
	NewScreen func() (tcell.Screen, error)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll sources and run the display cycle",
		Long: `Start the engine: poll the weather and holiday sources, decide which
effects are eligible and cycle them on and off.

Without --terminal each rendered visual is logged. With --terminal the
effects are animated full screen; press q, Esc or Ctrl-C to quit.

--weather-file and --holiday-file replace the HTTP sources with saved
responses that are re-read on every poll.

Example:
  dynweather run --config ./dynweather.yaml --db ./journal.db
  dynweather run --config ./dynweather.cue --terminal
  dynweather run --config ./dynweather.yaml --weather-file ./weather.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite transition journal")
	cmd.Flags().BoolVar(&opts.Terminal, "terminal", false, "animate effects in the terminal")
	cmd.Flags().StringVar(&opts.WeatherFile, "weather-file", "", "read weather from a saved response")
	cmd.Flags().StringVar(&opts.HolidayFile, "holiday-file", "", "read holidays from a saved listing page")

	return cmd
}

func runDisplay(opts *RunOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("config warning", "warning", w)
	}

	weather, holidays, err := buildSources(opts, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure sources", err)
	}

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithWeatherSource(weather),
		engine.WithHolidaySource(holidays),
	}

	if opts.Database != "" {
		logger.Info("opening journal", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		logger.Info("journal ready", "run", st.RunID())
		engOpts = append(engOpts, engine.WithRecorder(st))
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var surface engine.Surface = render.NewLogSurface(logger)
	if opts.Terminal {
		term, fini, err := openTerminal(ctx, opts, cfg, cancel, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open terminal", err)
		}
		defer fini()
		surface = term
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Display started. Press Ctrl-C to stop.")
	}

	eng := engine.New(cfg.EngineSettings(), surface, engOpts...)
	eng.Start()

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	logger.Info("engine stopped gracefully")
	return nil
}

// buildSources picks file or HTTP sources. A weather source is required
// unless an always-display mode is configured.
func buildSources(opts *RunOptions, cfg config.Config) (engine.WeatherSource, engine.HolidaySource, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var weather engine.WeatherSource
	switch {
	case opts.WeatherFile != "":
		weather = source.WeatherFile(opts.WeatherFile)
	case cfg.APIKey != "":
		weather = source.NewOpenWeather(source.OpenWeatherQuery{
			BaseURL:    cfg.WeatherURL,
			APIKey:     cfg.APIKey,
			Lat:        cfg.Lat,
			Lon:        cfg.Lon,
			LocationID: cfg.LocationID,
		}, client)
	case cfg.AlwaysDisplay == "":
		return nil, nil, fmt.Errorf("apiKey is required (set it in the config or %sAPI_KEY, or pass --weather-file)", config.EnvPrefix)
	}

	var holidays engine.HolidaySource
	if opts.HolidayFile != "" {
		holidays = source.HolidayFile(opts.HolidayFile)
	} else {
		holidays = source.NewHolidayPage(cfg.HolidayURL, client)
	}
	return weather, holidays, nil
}

// openTerminal initialises the screen, starts animation and key handling,
// and returns the surface with a func that restores the terminal.
func openTerminal(ctx context.Context, opts *RunOptions, cfg config.Config, quit context.CancelFunc, logger *slog.Logger) (*render.Terminal, func(), error) {
	newScreen := opts.NewScreen
	if newScreen == nil {
		newScreen = tcell.NewScreen
	}
	screen, err := newScreen()
	if err != nil {
		return nil, nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, nil, err
	}
	screen.HideCursor()

	term := render.NewTerminal(screen, cfg.ParticleCount, uint64(time.Now().UnixNano()))
	go func() {
		if err := term.Animate(ctx, frameInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("animation stopped", "error", err)
		}
	}()
	go watchKeys(screen, quit)

	return term, screen.Fini, nil
}

// watchKeys cancels on q, Esc or Ctrl-C. It returns once the screen is
// finalised.
func watchKeys(screen tcell.Screen, quit context.CancelFunc) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				quit()
			}
		}
	}
}
