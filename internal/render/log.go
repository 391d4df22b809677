// Package render implements the engine's render surfaces: a headless
// surface that logs what would be drawn, and a tcell terminal surface that
// animates particles.
package render

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/dynweather/internal/effect"
)

// LogSurface records and logs render calls without drawing anything.
type LogSurface struct {
	logger *slog.Logger

	mu     sync.Mutex
	active []string
}

// NewLogSurface creates a headless surface. A nil logger uses
// slog.Default().
func NewLogSurface(logger *slog.Logger) *LogSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSurface{logger: logger}
}

// Render logs v and marks it active.
func (s *LogSurface) Render(v effect.Visual) error {
	s.mu.Lock()
	s.active = append(s.active, v.Name())
	s.mu.Unlock()

	attrs := []any{"visual", v.Name()}
	if v.Spec != nil {
		attrs = append(attrs, "images", v.Spec.Images, "direction", v.Spec.Heading(), "size", v.Spec.Scale())
	}
	s.logger.Info("render", attrs...)
	return nil
}

// Clear logs the clear and forgets the active visuals.
func (s *LogSurface) Clear() error {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	s.logger.Debug("clear")
	return nil
}

// Active returns the names of visuals rendered since the last Clear.
func (s *LogSurface) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.active)
}
