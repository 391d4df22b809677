// Package source fetches weather and holiday inputs for the engine.
//
// Every source satisfies engine.WeatherSource or engine.HolidaySource. A
// returned error is a failed fetch; the engine logs it and keeps polling.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roach88/dynweather/internal/engine"
)

// ErrNoConditions is returned when a weather response carries no
// condition entries.
var ErrNoConditions = errors.New("weather response has no conditions")

// OpenWeather fetches current conditions from the OpenWeatherMap
// current-weather endpoint.
type OpenWeather struct {
	query  OpenWeatherQuery
	client *http.Client
}

// OpenWeatherQuery locates the weather report. Lat and Lon are used only
// when both are non-zero; LocationID only when non-zero.
type OpenWeatherQuery struct {
	BaseURL    string
	APIKey     string
	Lat        float64
	Lon        float64
	LocationID int64
}

// NewOpenWeather creates a weather source. A nil client uses
// http.DefaultClient.
func NewOpenWeather(q OpenWeatherQuery, client *http.Client) *OpenWeather {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenWeather{query: q, client: client}
}

// URL adds appid, lat/lon and id to BaseURL, keeping any query it
// already carries.
func (q OpenWeatherQuery) URL() (string, error) {
	u, err := url.Parse(q.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse weather URL: %w", err)
	}
	values := u.Query()
	values.Set("appid", q.APIKey)
	if q.Lat != 0 && q.Lon != 0 {
		values.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	}
	if q.LocationID != 0 {
		values.Set("id", strconv.FormatInt(q.LocationID, 10))
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

type weatherPayload struct {
	Weather []struct {
		ID int `json:"id"`
	} `json:"weather"`
}

// FetchWeather returns the code of the first reported condition.
func (o *OpenWeather) FetchWeather(ctx context.Context) (engine.WeatherReport, error) {
	target, err := o.query.URL()
	if err != nil {
		return engine.WeatherReport{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return engine.WeatherReport{}, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return engine.WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return engine.WeatherReport{}, fmt.Errorf("weather request returned %s", resp.Status)
	}
	return decodeWeather(resp.Body)
}

func decodeWeather(r io.Reader) (engine.WeatherReport, error) {
	var payload weatherPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return engine.WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return engine.WeatherReport{}, ErrNoConditions
	}
	return engine.WeatherReport{Code: payload.Weather[0].ID}, nil
}
