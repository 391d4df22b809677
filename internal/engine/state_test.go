package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/effect"
)

func TestPhase_RoundTrip(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseShowing, PhaseCooldown} {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePhase("paused")
	assert.Error(t, err)
	assert.Equal(t, "phase(7)", Phase(7).String())
}

func TestState_Clone(t *testing.T) {
	s := State{
		Holidays: []string{"Halloween"},
		Active:   []effect.Visual{effect.BuiltinVisual(effect.KindRain)},
	}
	c := s.clone()
	c.Holidays[0] = "Christmas Day"
	c.Active[0] = effect.BuiltinVisual(effect.KindCloud)

	assert.Equal(t, "Halloween", s.Holidays[0])
	assert.Equal(t, effect.KindRain, s.Active[0].Kind)
}

func TestState_Loaded(t *testing.T) {
	var s State
	assert.False(t, s.Loaded())
	s.WeatherLoaded = true
	assert.False(t, s.Loaded())
	s.HolidayLoaded = true
	assert.True(t, s.Loaded())
}
