package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/dynweather/internal/effect"
	"github.com/roach88/dynweather/internal/holiday"
)

// Defaults applied to zero-valued Settings fields.
const (
	DefaultEffectDuration  = 120 * time.Second
	DefaultEffectDelay     = 60 * time.Second
	DefaultWeatherInterval = 10 * time.Minute
	DefaultHolidayInterval = 24 * time.Hour
)

// Settings are the engine's decision and timing inputs.
type Settings struct {
	Catalog []effect.Spec
	Hide    effect.Suppress

	// EffectDuration is how long effects stay on screen per cycle.
	EffectDuration time.Duration
	// EffectDelay is the cooldown after effects are cleared.
	EffectDelay time.Duration

	WeatherInterval time.Duration
	HolidayInterval time.Duration

	// AlwaysDisplay forces one built-in effect ("snow", "rain", "cloudy")
	// on permanently and disables polling and eligibility.
	AlwaysDisplay string
}

func (s Settings) withDefaults() Settings {
	if s.EffectDuration <= 0 {
		s.EffectDuration = DefaultEffectDuration
	}
	if s.EffectDelay <= 0 {
		s.EffectDelay = DefaultEffectDelay
	}
	if s.WeatherInterval <= 0 {
		s.WeatherInterval = DefaultWeatherInterval
	}
	if s.HolidayInterval <= 0 {
		s.HolidayInterval = DefaultHolidayInterval
	}
	return s
}

// WeatherReport is a successful weather fetch.
type WeatherReport struct {
	// Code is the current condition code.
	Code int
}

// WeatherSource fetches the current weather. An error is a failed fetch.
type WeatherSource interface {
	FetchWeather(ctx context.Context) (WeatherReport, error)
}

// HolidaySource fetches the holiday listing document.
type HolidaySource interface {
	FetchHolidays(ctx context.Context) (string, error)
}

// WeatherFunc adapts a function to WeatherSource.
type WeatherFunc func(ctx context.Context) (WeatherReport, error)

func (f WeatherFunc) FetchWeather(ctx context.Context) (WeatherReport, error) { return f(ctx) }

// HolidayFunc adapts a function to HolidaySource.
type HolidayFunc func(ctx context.Context) (string, error)

func (f HolidayFunc) FetchHolidays(ctx context.Context) (string, error) { return f(ctx) }

// Engine is the single-writer effect engine.
//
// CRITICAL: State is mutated only while processing an event. Pollers, timer
// callbacks and the Deliver* methods only enqueue.
//
// Thread-safety model:
//   - DeliverWeather, DeliverHolidays, RequestRedraw: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Drain: processes queued events on the caller's goroutine; do not mix
//     with a concurrent Run
//   - State, Catalog, Close: safe from any goroutine
type Engine struct {
	mu sync.Mutex

	settings   Settings
	state      State
	resolver   *Resolver
	controller *Controller
	queue      *eventQueue
	clock      *Clock

	sched    Scheduler
	surface  Surface
	weather  WeatherSource
	holidays HolidaySource
	recorder Recorder
	observer func(Transition)
	ids      CycleIDGenerator
	logger   *slog.Logger

	holidayNames []string
	today        effect.Today
	document     string
	hasDocument  bool

	// dateShown is set once a display has started while a dated effect is
	// eligible; the date flag alone triggers only the first such display
	// each day.
	dateShown bool

	pollers   []*Poller
	cancelDay func() bool
	started   bool
	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the real-time scheduler (tests use virtual time).
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithLogger sets the engine logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder journals every transition.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithObserver calls fn for every transition. fn runs on the engine loop
// while state is locked; it must not call back into the Engine.
func WithObserver(fn func(Transition)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithCycleIDGenerator replaces the UUIDv7 cycle ID generator.
func WithCycleIDGenerator(g CycleIDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithWeatherSource polls src every WeatherInterval. Without it, weather
// results must be delivered with DeliverWeather.
func WithWeatherSource(src WeatherSource) Option {
	return func(e *Engine) { e.weather = src }
}

// WithHolidaySource polls src every HolidayInterval. Without it, holiday
// documents must be delivered with DeliverHolidays.
func WithHolidaySource(src HolidaySource) Option {
	return func(e *Engine) { e.holidays = src }
}

// New creates an Engine. Call Start to begin polling, then Run.
//
// A nil surface discards rendering.
func New(settings Settings, surface Surface, opts ...Option) *Engine {
	settings = settings.withDefaults()
	if surface == nil {
		surface = discardSurface{}
	}

	e := &Engine{
		settings: settings,
		resolver: NewResolver(settings.Catalog, settings.Hide),
		queue:    newEventQueue(),
		clock:    NewClock(),
		sched:    SystemScheduler{},
		surface:  surface,
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.holidayNames = holiday.Names(settings.Catalog)
	e.controller = &Controller{
		state:    &e.state,
		sched:    e.sched,
		surface:  e.surface,
		ids:      e.ids,
		duration: settings.EffectDuration,
		delay:    settings.EffectDelay,
		enqueue:  e.queue.Enqueue,
		emit:     e.emit,
		logger:   e.logger,
	}
	return e
}

// Start evaluates date rules and starts the pollers.
//
// With an always-display mode the named effect is rendered immediately and
// nothing is polled; an unknown mode is logged and nothing is rendered.
// Calling Start more than once does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return
	}
	e.started = true
	now := e.sched.Now()
	e.evaluateDates(now)

	if mode := e.settings.AlwaysDisplay; mode != "" {
		e.state.WeatherLoaded = true
		e.state.HolidayLoaded = true
		kind, ok := effect.ParseKind(mode)
		if !ok {
			e.logger.Error("always-display disabled", "error", NewInvalidConfigError("alwaysDisplay", mode))
			return
		}
		e.logger.Info("always displaying effect", "effect", kind)
		e.controller.Hold(effect.BuiltinVisual(kind))
		return
	}

	if len(e.holidayNames) == 0 {
		e.state.HolidayLoaded = true
	} else if e.holidays != nil {
		e.startPoller("holiday", e.settings.HolidayInterval, func(ctx context.Context) {
			doc, err := e.holidays.FetchHolidays(ctx)
			e.DeliverHolidays(doc, err)
		})
	}
	if e.weather != nil {
		e.startPoller("weather", e.settings.WeatherInterval, func(ctx context.Context) {
			report, err := e.weather.FetchWeather(ctx)
			e.DeliverWeather(report, err)
		})
	}

	e.scheduleDayChange(now)
	e.queue.Enqueue(Event{Type: EventTypeRedraw})

	e.logger.Info("engine started",
		"effects", len(e.settings.Catalog),
		"holidays", len(e.holidayNames),
		"date_effects", e.state.HasDateEffects,
	)
}

// DeliverWeather submits a weather fetch result. A non-nil err marks the
// fetch as failed. Returns false once the engine is closed.
func (e *Engine) DeliverWeather(report WeatherReport, err error) bool {
	return e.queue.Enqueue(Event{Type: EventTypeWeather, Weather: report, Err: err})
}

// DeliverHolidays submits a holiday fetch result. A non-nil err marks the
// fetch as failed. Returns false once the engine is closed.
func (e *Engine) DeliverHolidays(doc string, err error) bool {
	return e.queue.Enqueue(Event{Type: EventTypeHoliday, Document: doc, Err: err})
}

// RequestRedraw asks for a redraw. It starts a cycle only when Idle and
// something is eligible.
func (e *Engine) RequestRedraw() bool {
	return e.queue.Enqueue(Event{Type: EventTypeRedraw})
}

// Run starts the single-writer event loop.
// Blocks until ctx is cancelled or Close is called.
//
// ERROR HANDLING: a failing event is logged and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine loop starting")

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			e.processEvent(event)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so this case
			// fires immediately once closed.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain processes every queued event on the calling goroutine and returns
// how many it processed. Events enqueued while draining are processed too.
func (e *Engine) Drain(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		event, ok := e.queue.TryDequeue()
		if !ok {
			break
		}
		e.processEvent(event)
		n++
	}
	return n
}

// Close stops the pollers and every pending timer and closes the queue.
// Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		for _, p := range e.pollers {
			p.Stop()
		}
		e.controller.Stop()
		if e.cancelDay != nil {
			e.cancelDay()
			e.cancelDay = nil
		}
		e.queue.Close()
		e.logger.Info("engine closed")
	})
}

// State returns a snapshot of the engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Catalog returns the configured effects with their current DoDisplay flags.
func (e *Engine) Catalog() []effect.Spec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.Catalog()
}

// processEvent routes an event to its handler.
// CRITICAL: the only place State changes after Start.
func (e *Engine) processEvent(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event.Type {
	case EventTypeWeather:
		e.handleWeather(event)
	case EventTypeHoliday:
		e.handleHoliday(event)
	case EventTypeTimer:
		if e.controller.OnTimer(event.Timer, event.CycleID) {
			e.redraw(ReasonRedraw)
		}
	case EventTypeRedraw:
		e.redraw(ReasonRedraw)
	case EventTypeDayChange:
		e.handleDayChange()
	default:
		e.logger.Error("event processing failed",
			"error", fmt.Errorf("unknown event type: %d", event.Type),
			"event_type", event.Type,
		)
	}
}

func (e *Engine) handleWeather(event Event) {
	wasLoaded := e.state.Loaded()
	e.state.WeatherLoaded = true

	if event.Err != nil {
		e.logger.Error("weather update failed", "error", NewSourceError("weather", event.Err))
		e.afterLoad(wasLoaded)
		return
	}

	code := event.Weather.Code
	e.state.WeatherCode = code
	doUpdate := e.resolver.ApplyWeather(code, e.state.DisplayedCode)
	reason := ReasonWeather
	if !doUpdate && e.dateTriggerReady() {
		doUpdate, reason = true, ReasonDate
	}
	e.logger.Debug("weather received", "code", code, "displayed", e.state.DisplayedCode, "update", doUpdate)

	if doUpdate && e.state.Loaded() {
		e.show(reason)
		return
	}
	e.afterLoad(wasLoaded)
}

func (e *Engine) handleHoliday(event Event) {
	wasLoaded := e.state.Loaded()
	e.state.HolidayLoaded = true

	if event.Err != nil {
		e.logger.Error("holiday update failed", "error", NewSourceError("holiday", event.Err))
		e.afterLoad(wasLoaded)
		return
	}

	e.document = event.Document
	e.hasDocument = true
	doUpdate := e.matchHolidays()
	reason := ReasonHoliday
	if !doUpdate && e.dateTriggerReady() {
		doUpdate, reason = true, ReasonDate
	}
	e.logger.Debug("holidays received", "today", e.state.Holidays, "update", doUpdate)

	if doUpdate && e.state.Loaded() {
		e.show(reason)
		return
	}
	e.afterLoad(wasLoaded)
}

func (e *Engine) handleDayChange() {
	now := e.sched.Now()
	e.evaluateDates(now)
	e.scheduleDayChange(now)

	doUpdate := e.hasDocument && e.matchHolidays()
	reason := ReasonHoliday
	if !doUpdate && e.dateTriggerReady() {
		doUpdate, reason = true, ReasonDate
	}
	e.logger.Info("day changed", "today", e.today, "date_effects", e.state.HasDateEffects)

	if doUpdate && e.state.Loaded() {
		e.show(reason)
		return
	}
	e.redraw(ReasonRedraw)
}

// matchHolidays re-reads the last holiday document for today and updates
// holiday eligibility.
func (e *Engine) matchHolidays() bool {
	matched, err := holiday.MatchDocument(e.document, e.holidayNames, e.sched.Now())
	if err != nil {
		e.logger.Warn("holiday document ignored", "error", NewMalformedDocumentError(err))
	}
	e.state.Holidays = matched
	return e.resolver.ApplyHolidays(matched)
}

func (e *Engine) evaluateDates(now time.Time) {
	today := effect.TodayOf(now)
	if today != e.today {
		e.dateShown = false
	}
	e.today = today
	e.state.HasDateEffects = e.resolver.EvaluateDates(today)
}

func (e *Engine) dateTriggerReady() bool {
	return e.state.HasDateEffects && e.state.Loaded() && !e.dateShown
}

// afterLoad redraws when this event completed the initial load.
func (e *Engine) afterLoad(wasLoaded bool) {
	if !wasLoaded && e.state.Loaded() {
		e.redraw(ReasonRedraw)
	}
}

// show starts a cycle for the current selection regardless of phase. The
// selection includes the built-in for the current weather code, so that
// code becomes the displayed one whatever triggered the show.
func (e *Engine) show(reason string) {
	e.state.DisplayedCode = e.state.WeatherCode
	if e.state.HasDateEffects {
		e.dateShown = true
	}
	e.controller.Show(e.resolver.Select(e.state.WeatherCode), reason)
}

// redraw starts a cycle only from Idle, only once loaded, and only if
// something is eligible.
func (e *Engine) redraw(reason string) {
	if e.state.Phase != PhaseIdle {
		e.logger.Debug("redraw suppressed", "phase", e.state.Phase)
		return
	}
	if !e.state.Loaded() {
		return
	}
	visuals := e.resolver.Select(e.state.WeatherCode)
	if len(visuals) == 0 {
		e.state.DisplayedCode = 0
		return
	}
	e.state.DisplayedCode = e.state.WeatherCode
	if e.state.HasDateEffects {
		e.dateShown = true
	}
	e.controller.Show(visuals, reason)
}

func (e *Engine) scheduleDayChange(now time.Time) {
	if e.cancelDay != nil {
		e.cancelDay()
	}
	e.cancelDay = e.sched.AfterFunc(nextMidnight(now).Sub(now), func() {
		e.queue.Enqueue(Event{Type: EventTypeDayChange})
	})
}

func (e *Engine) startPoller(name string, interval time.Duration, task func(ctx context.Context)) {
	p := NewPoller(name, e.sched, interval, task)
	e.pollers = append(e.pollers, p)
	p.Start()
	e.logger.Debug("poller started", "poller", name, "interval", interval)
}

func (e *Engine) emit(t Transition) {
	t.Seq = e.clock.Next()
	if e.recorder != nil {
		if err := e.recorder.RecordTransition(context.Background(), t); err != nil {
			e.logger.Warn("transition not recorded", "seq", t.Seq, "error", err)
		}
	}
	if e.observer != nil {
		e.observer(t)
	}
	e.logger.Info("display transition",
		"seq", t.Seq,
		"cycle", t.CycleID,
		"from", t.From,
		"to", t.To,
		"reason", t.Reason,
		"visuals", t.Visuals,
	)
}

type discardSurface struct{}

func (discardSurface) Render(effect.Visual) error { return nil }
func (discardSurface) Clear() error               { return nil }
