package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-clock/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	Location weather.Location
	Units    weather.Units `validate:"oneof=metric imperial"`

	WeatherProvider   string `validate:"oneof=openweather weatherapi openmeteo"`
	Geocoder          string `validate:"oneof=openweather google"`
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GoogleAPIKey      string

	NTPServer  string        `validate:"required"`
	NTPTimeout time.Duration `validate:"gt=0"`

	// Refresh cadences. NTP and weather are counted in whole seconds.
	NTPSyncInterval  time.Duration `validate:"gte=1s"`
	WeatherInterval  time.Duration `validate:"gte=1s"`
	ConnPollInterval time.Duration `validate:"gte=1s"`
	AuxInterval      time.Duration `validate:"gte=1s"`

	HTTPTimeout        time.Duration `validate:"gt=0"`
	FrameDelay         time.Duration `validate:"gt=0"`
	BootConnectTimeout time.Duration `validate:"gt=0"`

	CacheDir  string `validate:"required"`
	Interface string `validate:"required"`
	Timezone  *time.Location

	LEDInterval   time.Duration `validate:"gt=0"`
	LEDBrightness int           `validate:"gte=0,lte=255"`

	// In-memory sample history retention.
	StoreMaxHistory int           // max number of samples (0 = unlimited)
	StoreMaxAge     time.Duration // max age of samples (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Location = weather.Location{
		City:    os.Getenv("WEATHER_LOCATION_CITY"),
		Country: os.Getenv("WEATHER_LOCATION_COUNTRY"),
	}
	if cfg.Location.City == "" || cfg.Location.Country == "" {
		return nil, fmt.Errorf("WEATHER_LOCATION_CITY and WEATHER_LOCATION_COUNTRY are required")
	}
	cfg.Units = weather.Units(getenvDefault("WEATHER_UNITS", string(weather.UnitsMetric)))

	cfg.WeatherProvider = getenvDefault("WEATHER_PROVIDER", "openweather")
	cfg.Geocoder = getenvDefault("GEOCODER", "openweather")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.NTPServer = getenvDefault("NTP_SERVER", "pool.ntp.org")

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"NTP_TIMEOUT", "5s", &cfg.NTPTimeout},
		{"NTP_SYNC_INTERVAL", "2h", &cfg.NTPSyncInterval},
		{"WEATHER_INTERVAL", "10m", &cfg.WeatherInterval},
		{"CONN_POLL_INTERVAL", "5s", &cfg.ConnPollInterval},
		{"AUX_INTERVAL", "60s", &cfg.AuxInterval},
		{"HTTP_TIMEOUT", "5s", &cfg.HTTPTimeout},
		{"FRAME_DELAY", "50ms", &cfg.FrameDelay},
		{"BOOT_CONNECT_TIMEOUT", "30s", &cfg.BootConnectTimeout},
		{"LED_INTERVAL", "20ms", &cfg.LEDInterval},
		{"STORE_MAX_AGE", "24h", &cfg.StoreMaxAge},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	cfg.CacheDir = getenvDefault("CACHE_DIR", "/var/lib/weather-clock")
	cfg.Interface = getenvDefault("NET_INTERFACE", "wlan0")

	tz, err := time.LoadLocation(getenvDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	cfg.LEDBrightness = getenvInt("LED_BRIGHTNESS", 255)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 144) // 24h at 10-minute intervals
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.checkKeys(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkKeys verifies the selected backends have their API keys.
func (c *AppConfig) checkKeys() error {
	switch {
	case c.WeatherProvider == "openweather" && c.OpenWeatherAPIKey == "":
		return fmt.Errorf("OPENWEATHER_API_KEY is required for WEATHER_PROVIDER=openweather")
	case c.WeatherProvider == "weatherapi" && c.WeatherAPIKey == "":
		return fmt.Errorf("WEATHERAPI_API_KEY is required for WEATHER_PROVIDER=weatherapi")
	case c.Geocoder == "openweather" && c.OpenWeatherAPIKey == "":
		return fmt.Errorf("OPENWEATHER_API_KEY is required for GEOCODER=openweather")
	case c.Geocoder == "google" && c.GoogleAPIKey == "":
		return fmt.Errorf("GOOGLE_API_KEY is required for GEOCODER=google")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
