package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dynweather/internal/config"
	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/render"
	"github.com/roach88/dynweather/internal/store"
	"github.com/roach88/dynweather/internal/testutil"
)

// Harness runs one scenario against a real engine on virtual time.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	sched  *testutil.FakeScheduler
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal with a fake scheduler
// starting at scenario.Now and sequential cycle IDs, so identical
// scenarios produce identical traces.
//
// Execution flow:
// 1. Decode and validate the inline config
// 2. Start the engine with no sources; steps deliver results directly
// 3. Apply steps, draining the engine after each
// 4. Read the journal back and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := testutil.NewFakeScheduler(scenario.Now)
	eng := engine.New(cfg.EngineSettings(), render.NewLogSurface(logger),
		engine.WithScheduler(sched),
		engine.WithLogger(logger),
		engine.WithRecorder(st),
		engine.WithCycleIDGenerator(testutil.NewSequentialIDs("cycle")),
	)
	defer eng.Close()

	h := &Harness{store: st, engine: eng, sched: sched, logger: logger}
	ctx := context.Background()
	sched.OnFire(func() { eng.Drain(ctx) })

	eng.Start()
	eng.Drain(ctx)

	for i, step := range scenario.Steps {
		if err := h.apply(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result := NewResult(scenario.Now)
	result.Final = eng.State()
	result.Trace, err = st.ListTransitions(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioConfig(s *Scenario) (config.Config, error) {
	cfg := config.Default()
	if s.Config.Kind != 0 {
		data, err := yaml.Marshal(&s.Config)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to encode config: %w", err)
		}
		if cfg, err = config.ParseYAML(data); err != nil {
			return config.Config{}, fmt.Errorf("scenario config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("scenario config: %w", err)
	}
	return cfg, nil
}

// apply performs one step and drains the engine.
func (h *Harness) apply(ctx context.Context, step Step) error {
	switch {
	case step.Weather != nil:
		var err error
		if step.Weather.Fail != "" {
			err = errors.New(step.Weather.Fail)
		}
		h.engine.DeliverWeather(engine.WeatherReport{Code: step.Weather.Code}, err)

	case step.Holiday != nil:
		doc, err := holidayDocument(step.Holiday)
		if err != nil {
			return err
		}
		var fetchErr error
		if step.Holiday.Fail != "" {
			fetchErr = errors.New(step.Holiday.Fail)
		}
		h.engine.DeliverHolidays(doc, fetchErr)

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		h.sched.Advance(d)

	case step.Redraw:
		h.engine.RequestRedraw()
	}

	n := h.engine.Drain(ctx)
	h.logger.Debug("step applied", "events", n, "now", h.sched.Now())
	return nil
}

func holidayDocument(step *HolidayStep) (string, error) {
	switch {
	case step.Doc != "":
		data, err := os.ReadFile(step.Doc)
		if err != nil {
			return "", fmt.Errorf("holiday document: %w", err)
		}
		return string(data), nil
	case len(step.Rows) > 0:
		rows := make([]testutil.HolidayRow, len(step.Rows))
		for i, r := range step.Rows {
			day, err := time.Parse(time.DateOnly, r.Date)
			if err != nil {
				return "", fmt.Errorf("holiday row %d: %w", i, err)
			}
			rows[i] = testutil.HolidayRow{Date: day, Names: r.Names}
		}
		return testutil.HolidayDocument(rows...), nil
	default:
		return "", nil
	}
}
