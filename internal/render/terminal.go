package render

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/dynweather/internal/effect"
)

// Terminal draws visuals as particles on a tcell screen.
//
// Render and Clear come from the engine loop while Step and Draw come from
// an animation loop, so all of them take the same lock.
type Terminal struct {
	mu        sync.Mutex
	screen    tcell.Screen
	count     int
	rng       *rand.Rand
	particles []Particle
}

// NewTerminal wraps an initialised screen. count is the configured particle
// count; seed makes layouts reproducible.
func NewTerminal(screen tcell.Screen, count int, seed uint64) *Terminal {
	return &Terminal{
		screen: screen,
		count:  count,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Render adds v's particles and redraws.
func (t *Terminal) Render(v effect.Visual) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ps, err := Layout(v, t.count, t.rng)
	if err != nil {
		return fmt.Errorf("render %s: %w", v.Name(), err)
	}
	t.particles = append(t.particles, ps...)
	t.draw()
	return nil
}

// Clear removes every particle and blanks the screen.
func (t *Terminal) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.particles = nil
	t.screen.Clear()
	t.screen.Show()
	return nil
}

// Step advances every particle by dt.
func (t *Terminal) Step(dt time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.particles {
		advance(&t.particles[i], dt.Seconds())
	}
}

// Draw paints the current particles.
func (t *Terminal) Draw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draw()
}

// Particles returns a copy of the live particles.
func (t *Terminal) Particles() []Particle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.particles)
}

// Animate steps and draws every frame until ctx is done.
func (t *Terminal) Animate(ctx context.Context, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Step(frame)
			t.Draw()
		}
	}
}

func (t *Terminal) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()
	// Back particles first so front ones overwrite them.
	for _, back := range []bool{true, false} {
		for _, p := range t.particles {
			if p.Back != back {
				continue
			}
			x := int(math.Floor(p.X * float64(w)))
			y := int(math.Floor(p.Y * float64(h)))
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			t.screen.SetContent(x, y, p.Glyph, nil, styleFor(p))
		}
	}
	t.screen.Show()
}

func styleFor(p Particle) tcell.Style {
	style := tcell.StyleDefault
	switch p.Glyph {
	case GlyphRain:
		style = style.Foreground(tcell.ColorSteelBlue)
	case GlyphCloud:
		style = style.Foreground(tcell.ColorSilver)
	case GlyphSnow:
		style = style.Foreground(tcell.ColorWhite)
	}
	if p.Back || p.Scale < 0.5 {
		style = style.Dim(true)
	}
	return style
}
