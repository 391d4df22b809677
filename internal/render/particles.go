package render

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"unicode/utf8"

	"github.com/roach88/dynweather/internal/effect"
)

// ErrNoImages is returned for an image effect with nothing to draw.
var ErrNoImages = errors.New("effect has no images")

// Kind glyphs, used when an image identifier is a file name.
const (
	GlyphSnow   = '*'
	GlyphCustom = 'o'
	GlyphRain   = '|'
	GlyphCloud  = '~'
)

// Particle is one moving element of a visual.
//
// Positions are fractions of the field: X 0 is the left edge and 1 the right
// edge, Y 0 is the top and 1 the bottom. Velocities are field fractions per
// second.
type Particle struct {
	Visual string
	Glyph  rune
	X, Y   float64
	DX, DY float64
	Scale  float64
	// Back particles are drawn dimmed behind front ones.
	Back bool
}

// Layout places the particles for v. count is the configured particle
// count; rain and clouds treat it as a width budget rather than a total.
func Layout(v effect.Visual, count int, rng *rand.Rand) ([]Particle, error) {
	switch v.Kind {
	case effect.KindRain:
		return rain(count, rng), nil
	case effect.KindCloud:
		return clouds(count, rng), nil
	}
	if v.Spec == nil || len(v.Spec.Images) == 0 {
		return nil, ErrNoImages
	}
	return images(v, count, rng), nil
}

// images scatters count particles, each showing a random image of the spec
// and travelling in the spec's direction.
func images(v effect.Visual, count int, rng *rand.Rand) []Particle {
	spec := v.Spec
	name := v.Name()
	kindGlyph := GlyphCustom
	if v.Kind == effect.KindSnow {
		kindGlyph = GlyphSnow
	}

	out := make([]Particle, 0, count)
	for range count {
		jiggle := rng.Float64()*0.75 + 0.25
		seconds := 100 - rng.Float64()*50*jiggle
		dy := 1 / seconds
		if spec.Heading() == effect.DirectionUp {
			dy = -dy
		}
		out = append(out, Particle{
			Visual: name,
			Glyph:  glyphFor(spec.Images[rng.IntN(len(spec.Images))], kindGlyph),
			X:      rng.Float64() - 0.1,
			Y:      rng.Float64(),
			DY:     dy,
			Scale:  spec.Scale() * jiggle,
		})
	}
	return out
}

// rain adds a front and a back drop every 2 to 5 percent of the width until
// the budget is used.
func rain(count int, rng *rand.Rand) []Particle {
	var out []Particle
	for increment := 0; increment < count; {
		step := 2 + rng.IntN(4)
		increment += step
		seconds := 1.5 + float64(1+rng.IntN(98))/1000
		x := float64(increment) / 100
		y := -float64(2*step-1) / 100

		out = append(out,
			Particle{Visual: "rain", Glyph: GlyphRain, X: 1 - x, Y: y, DY: 1 / seconds, Scale: 1, Back: true},
			Particle{Visual: "rain", Glyph: GlyphRain, X: x, Y: y, DY: 1 / seconds, Scale: 1},
		)
	}
	return out
}

// clouds adds a cloud every 5 to 25 percent of the width until the budget is
// used. Clouds drift left to right across the upper third.
func clouds(count int, rng *rand.Rand) []Particle {
	var out []Particle
	for increment := 0; increment < count; {
		increment += 5 + rng.IntN(21)
		seconds := float64(15 + rng.IntN(21))
		size := 3 + rng.IntN(58)

		out = append(out, Particle{
			Visual: "cloud",
			Glyph:  GlyphCloud,
			X:      -0.2,
			Y:      rng.Float64() / 3,
			DX:     1 / seconds,
			Scale:  float64(size) / 100,
		})
	}
	return out
}

// glyphFor draws an identifier without an extension as its first rune; a
// file name falls back to the kind glyph.
func glyphFor(image string, fallback rune) rune {
	if image == "" || filepath.Ext(image) != "" {
		return fallback
	}
	r, _ := utf8.DecodeRuneInString(image)
	return r
}

// advance moves p by seconds of travel, wrapping it back into the field.
func advance(p *Particle, seconds float64) {
	p.X += p.DX * seconds
	p.Y += p.DY * seconds
	switch {
	case p.DY > 0 && p.Y > 1:
		p.Y -= 1
	case p.DY < 0 && p.Y < 0:
		p.Y += 1
	}
	if p.DX > 0 && p.X > 1.2 {
		p.X = -0.2
	}
}
