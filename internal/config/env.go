package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DYNWEATHER_"

// envOverrides holds the settings that may come from the environment.
// Unset variables leave the loaded values alone.
type envOverrides struct {
	APIKey          string  `env:"API_KEY"`
	LocationID      int64   `env:"LOCATION_ID"`
	Lat             float64 `env:"LAT"`
	Lon             float64 `env:"LON"`
	WeatherURL      string  `env:"WEATHER_URL"`
	HolidayURL      string  `env:"HOLIDAY_URL"`
	WeatherInterval int64   `env:"WEATHER_INTERVAL"`
	HolidayInterval int64   `env:"HOLIDAY_INTERVAL"`
	AlwaysDisplay   string  `env:"ALWAYS_DISPLAY"`
}

// ApplyEnv overlays DYNWEATHER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, env.Options{Prefix: EnvPrefix})
}

func applyEnv(cfg *Config, opts env.Options) error {
	o := envOverrides{
		APIKey:          cfg.APIKey,
		LocationID:      cfg.LocationID,
		Lat:             cfg.Lat,
		Lon:             cfg.Lon,
		WeatherURL:      cfg.WeatherURL,
		HolidayURL:      cfg.HolidayURL,
		WeatherInterval: cfg.WeatherInterval,
		HolidayInterval: cfg.HolidayInterval,
		AlwaysDisplay:   cfg.AlwaysDisplay,
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	cfg.APIKey = o.APIKey
	cfg.LocationID = o.LocationID
	cfg.Lat = o.Lat
	cfg.Lon = o.Lon
	cfg.WeatherURL = o.WeatherURL
	cfg.HolidayURL = o.HolidayURL
	cfg.WeatherInterval = o.WeatherInterval
	cfg.HolidayInterval = o.HolidayInterval
	cfg.AlwaysDisplay = o.AlwaysDisplay
	return nil
}
