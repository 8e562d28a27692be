package weather

import (
	"time"

	"github.com/i474232898/weather-clock/internal/common"
)

// Units selects the unit system requested from the conditions endpoint.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// TemperatureSuffix returns the display suffix for temperatures in u.
func (u Units) TemperatureSuffix() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// Location represents the configured place the clock shows weather for.
// City/Country must be provided.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Coordinates is a geocoded Location. Once resolved it does not change for
// the rest of the session.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

// Matches reports whether c was resolved for loc.
func (c Coordinates) Matches(loc Location) bool {
	return c.City == loc.City && c.Country == loc.Country
}

// Reading is a single provider's current conditions.
type Reading struct {
	ProviderName string
	Temperature  float64
	Humidity     float64
	UVIndex      float64
}

// Sample is the last successfully fetched set of conditions.
// FetchedAt is device uptime, not wall time.
type Sample struct {
	Temperature float64       `json:"temperature"`
	Humidity    float64       `json:"humidity"`
	UVIndex     float64       `json:"uvIndex"`
	Units       Units         `json:"units"`
	Provider    string        `json:"provider"`
	FetchedAt   time.Duration `json:"fetchedAtUptime"`
	FetchedWall time.Time     `json:"fetchedAt"`
}

// TemperatureC returns the sample temperature in degrees Celsius.
func (s Sample) TemperatureC() float64 {
	if s.Units == UnitsImperial {
		return (s.Temperature - 32) * 5 / 9
	}
	return s.Temperature
}

// State is the Weather Source's slice of the scheduler state. Only Service
// writes it.
type State struct {
	Sample      Sample       `json:"sample"`
	HasSample   bool         `json:"hasSample"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	LastAttempt time.Time    `json:"lastAttempt"`
	LastError   common.Kind  `json:"lastError,omitempty"`
	LastErrorAt time.Time    `json:"lastErrorAt"`
	Refreshes   int          `json:"refreshes"`
	Failures    int          `json:"failures"`
}
