package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/engine"
	"github.com/roach88/dynweather/internal/testutil"
)

var (
	_ engine.WeatherSource = (*OpenWeather)(nil)
	_ engine.WeatherSource = WeatherFile("")
	_ engine.HolidaySource = (*HolidayPage)(nil)
	_ engine.HolidaySource = HolidayFile("")
)

func TestOpenWeatherQuery_URL(t *testing.T) {
	const base = "https://api.openweathermap.org/data/2.5/weather"
	tests := []struct {
		name string
		q    OpenWeatherQuery
		want string
	}{
		{
			name: "key only",
			q:    OpenWeatherQuery{BaseURL: base, APIKey: "k"},
			want: base + "?appid=k",
		},
		{
			name: "coordinates",
			q:    OpenWeatherQuery{BaseURL: base, APIKey: "k", Lat: 52.52, Lon: -13.405},
			want: base + "?appid=k&lat=52.52&lon=-13.405",
		},
		{
			name: "one coordinate is ignored",
			q:    OpenWeatherQuery{BaseURL: base, APIKey: "k", Lat: 52.52},
			want: base + "?appid=k",
		},
		{
			name: "location id with coordinates",
			q:    OpenWeatherQuery{BaseURL: base, APIKey: "k", Lat: 1.5, Lon: 2, LocationID: 2950159},
			want: base + "?appid=k&id=2950159&lat=1.5&lon=2",
		},
		{
			name: "key in base query is replaced",
			q:    OpenWeatherQuery{BaseURL: base + "?appid=old&units=metric", APIKey: "new"},
			want: base + "?appid=new&units=metric",
		},
		{
			name: "existing query and escaped key",
			q:    OpenWeatherQuery{BaseURL: base + "?units=metric", APIKey: "a b&c"},
			want: base + "?appid=a+b%26c&units=metric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.URL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenWeatherQuery_BadBaseURL(t *testing.T) {
	q := OpenWeatherQuery{BaseURL: "://no-scheme", APIKey: "k"}

	_, err := q.URL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse weather URL")

	_, err = NewOpenWeather(q, nil).FetchWeather(context.Background())
	assert.ErrorContains(t, err, "parse weather URL")
}

func TestOpenWeather_FetchWeather(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"weather":[{"id":601,"main":"Snow"},{"id":701}],"name":"Berlin"}`))
	}))
	defer srv.Close()

	src := NewOpenWeather(OpenWeatherQuery{BaseURL: srv.URL, APIKey: "secret", LocationID: 7}, srv.Client())
	report, err := src.FetchWeather(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engine.WeatherReport{Code: 601}, report)
	assert.Equal(t, "appid=secret&id=7", gotQuery)
}

func TestOpenWeather_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"cod":401}`, "401"},
		{"not json", http.StatusOK, `<html>`, "decode weather response"},
		{"no conditions", http.StatusOK, `{"weather":[]}`, ErrNoConditions.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenWeather(OpenWeatherQuery{BaseURL: srv.URL}, srv.Client()).FetchWeather(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOpenWeather_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewOpenWeather(OpenWeatherQuery{BaseURL: srv.URL}, srv.Client()).FetchWeather(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHolidayPage_FetchHolidays(t *testing.T) {
	doc := testutil.HolidayDocument(testutil.HolidayRow{
		Date:  testutil.UTCDay(2026, time.October, 31),
		Names: []string{"Halloween"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/holidays/us/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	got, err := NewHolidayPage(srv.URL+"/holidays/us/", srv.Client()).FetchHolidays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = NewHolidayPage(srv.URL+"/missing", srv.Client()).FetchHolidays(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFileSources(t *testing.T) {
	dir := t.TempDir()
	weatherPath := filepath.Join(dir, "weather.json")
	holidayPath := filepath.Join(dir, "holidays.html")
	require.NoError(t, os.WriteFile(weatherPath, []byte(`{"weather":[{"id":500}]}`), 0o644))
	require.NoError(t, os.WriteFile(holidayPath, []byte("<table id=holidays-table></table>"), 0o644))

	ctx := context.Background()
	report, err := WeatherFile(weatherPath).FetchWeather(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, report.Code)

	doc, err := HolidayFile(holidayPath).FetchHolidays(ctx)
	require.NoError(t, err)
	assert.Contains(t, doc, "holidays-table")

	// Edits are picked up on the next fetch.
	require.NoError(t, os.WriteFile(weatherPath, []byte(`{"weather":[{"id":803}]}`), 0o644))
	report, err = WeatherFile(weatherPath).FetchWeather(ctx)
	require.NoError(t, err)
	assert.Equal(t, 803, report.Code)

	_, err = WeatherFile(filepath.Join(dir, "missing.json")).FetchWeather(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = HolidayFile(holidayPath).FetchHolidays(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
