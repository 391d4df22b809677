// Package config loads and validates dynweather configuration.
//
// Configuration is read from YAML (gopkg.in/yaml.v3) or CUE files, checked
// against the embedded CUE schema, then overlaid with DYNWEATHER_*
// environment variables. Durations are milliseconds in every format.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/dynweather/internal/effect"
	"github.com/roach88/dynweather/internal/engine"
)

// Defaults for zero-configuration use.
const (
	DefaultParticleCount   = 100
	DefaultWeatherInterval = 600000   // 10 minutes
	DefaultHolidayInterval = 86400000 // once a day
	DefaultEffectDuration  = 120000
	DefaultEffectDelay     = 60000
	DefaultZIndex          = 99
	DefaultWeatherURL      = "https://api.openweathermap.org/data/2.5/weather"
	DefaultHolidayURL      = "https://www.timeanddate.com/holidays/us/"
)

// Config is the full dynweather configuration.
type Config struct {
	ParticleCount int `yaml:"particleCount" json:"particleCount"`

	// Intervals and durations are in milliseconds.
	WeatherInterval int64 `yaml:"weatherInterval" json:"weatherInterval"`
	HolidayInterval int64 `yaml:"holidayInterval" json:"holidayInterval"`
	EffectDuration  int64 `yaml:"effectDuration" json:"effectDuration"`
	EffectDelay     int64 `yaml:"effectDelay" json:"effectDelay"`

	HideSnow   bool `yaml:"hideSnow" json:"hideSnow"`
	HideRain   bool `yaml:"hideRain" json:"hideRain"`
	HideClouds bool `yaml:"hideClouds" json:"hideClouds"`

	// AlwaysDisplay is "", "snow", "rain" or "cloudy".
	AlwaysDisplay string `yaml:"alwaysDisplay" json:"alwaysDisplay"`
	ZIndex        int    `yaml:"zIndex" json:"zIndex"`

	Effects []effect.Spec `yaml:"effects" json:"effects"`

	APIKey     string  `yaml:"apiKey" json:"apiKey"`
	LocationID int64   `yaml:"locationID" json:"locationID"`
	Lat        float64 `yaml:"lat" json:"lat"`
	Lon        float64 `yaml:"lon" json:"lon"`
	WeatherURL string  `yaml:"weatherURL" json:"weatherURL"`
	HolidayURL string  `yaml:"holidayURL" json:"holidayURL"`
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		ParticleCount:   DefaultParticleCount,
		WeatherInterval: DefaultWeatherInterval,
		HolidayInterval: DefaultHolidayInterval,
		EffectDuration:  DefaultEffectDuration,
		EffectDelay:     DefaultEffectDelay,
		ZIndex:          DefaultZIndex,
		Effects:         []effect.Spec{},
		WeatherURL:      DefaultWeatherURL,
		HolidayURL:      DefaultHolidayURL,
	}
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.ParticleCount < 0 {
		errs = append(errs, fmt.Errorf("particleCount %d must not be negative", c.ParticleCount))
	}
	for _, d := range []struct {
		name string
		ms   int64
	}{
		{"weatherInterval", c.WeatherInterval},
		{"holidayInterval", c.HolidayInterval},
		{"effectDuration", c.EffectDuration},
		{"effectDelay", c.EffectDelay},
	} {
		if d.ms <= 0 {
			errs = append(errs, fmt.Errorf("%s %d must be positive", d.name, d.ms))
		}
	}
	if c.AlwaysDisplay != "" {
		if _, ok := effect.ParseKind(c.AlwaysDisplay); !ok {
			errs = append(errs, engine.NewInvalidConfigError("alwaysDisplay", c.AlwaysDisplay))
		}
	}
	for i, s := range c.Effects {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Warnings reports effects whose extra trigger fields are ignored. They
// load and run; only the highest precedence trigger counts.
func (c Config) Warnings() []string {
	var out []string
	for i, s := range c.Effects {
		ignored := s.Ignored()
		if len(ignored) == 0 {
			continue
		}
		by := "holiday"
		if s.Trigger() == effect.TriggerWeather {
			by = "weatherCode"
		}
		out = append(out, fmt.Sprintf("effects[%d]: %s ignored; %s decides when it shows",
			i, strings.Join(ignored, ", "), by))
	}
	return out
}

// Hide returns the built-in suppression switches.
func (c Config) Hide() effect.Suppress {
	return effect.Suppress{Snow: c.HideSnow, Rain: c.HideRain, Clouds: c.HideClouds}
}

// EngineSettings maps the configuration onto engine settings.
func (c Config) EngineSettings() engine.Settings {
	return engine.Settings{
		Catalog:         c.Effects,
		Hide:            c.Hide(),
		EffectDuration:  millis(c.EffectDuration),
		EffectDelay:     millis(c.EffectDelay),
		WeatherInterval: millis(c.WeatherInterval),
		HolidayInterval: millis(c.HolidayInterval),
		AlwaysDisplay:   c.AlwaysDisplay,
	}
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
