package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-clock/internal/weather"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	// Run from an empty directory so no .env file is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("WEATHER_LOCATION_CITY", "Paris")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR")
	t.Setenv("OPENWEATHER_API_KEY", "key")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, weather.Location{City: "Paris", Country: "FR"}, cfg.Location)
	assert.Equal(t, weather.UnitsMetric, cfg.Units)
	assert.Equal(t, 2*time.Hour, cfg.NTPSyncInterval)
	assert.Equal(t, 10*time.Minute, cfg.WeatherInterval)
	assert.Equal(t, 5*time.Second, cfg.ConnPollInterval)
	assert.Equal(t, time.Minute, cfg.AuxInterval)
	assert.Equal(t, "pool.ntp.org", cfg.NTPServer)
	assert.Equal(t, 255, cfg.LEDBrightness)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Timezone)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad units", "WEATHER_UNITS", "kelvin"},
		{"bad provider", "WEATHER_PROVIDER", "darksky"},
		{"bad duration", "WEATHER_INTERVAL", "soon"},
		{"sub-second interval", "NTP_SYNC_INTERVAL", "500ms"},
		{"brightness out of range", "LED_BRIGHTNESS", "300"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus"},
		{"missing google key", "GEOCODER", "google"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOpenMeteoNeedsNoWeatherKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEATHER_PROVIDER", "openmeteo")
	t.Setenv("WEATHER_UNITS", "imperial")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, weather.UnitsImperial, cfg.Units)
}

func TestLoadRequiresLocation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEATHER_LOCATION_CITY", "")

	_, err := Load()
	assert.Error(t, err)
}
