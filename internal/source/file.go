package source

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/dynweather/internal/engine"
)

// WeatherFile reads a saved weather response. The file is re-read on every
// fetch so it can be edited while the engine runs.
type WeatherFile string

// FetchWeather decodes the file as an OpenWeatherMap response.
func (f WeatherFile) FetchWeather(ctx context.Context) (engine.WeatherReport, error) {
	if err := ctx.Err(); err != nil {
		return engine.WeatherReport{}, err
	}
	file, err := os.Open(string(f))
	if err != nil {
		return engine.WeatherReport{}, fmt.Errorf("open weather file: %w", err)
	}
	defer file.Close()
	return decodeWeather(file)
}

// HolidayFile reads a saved holiday listing page on every fetch.
type HolidayFile string

// FetchHolidays returns the file contents.
func (f HolidayFile) FetchHolidays(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", fmt.Errorf("read holiday file: %w", err)
	}
	return string(data), nil
}
