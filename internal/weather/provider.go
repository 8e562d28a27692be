package weather

import (
	"context"
	"time"
)

// Geocoder resolves a Location to coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, loc Location) (Coordinates, error)
}

// Provider abstracts a current-conditions source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, coords Coordinates, units Units) (Reading, error)
}

// Cache is the durable store for resolved coordinates and the last sample.
type Cache interface {
	LoadCoordinates() (Coordinates, error)
	SaveCoordinates(c Coordinates) error
	LoadSample() (Sample, error)
	SaveSample(s Sample) error
}

// History keeps recent samples for the status API.
type History interface {
	SaveSample(loc Location, s Sample)
	GetLatest(loc Location) (Sample, error)
	GetRange(loc Location, from, to time.Time) ([]Sample, error)
}

// Clock supplies wall time and device uptime.
type Clock interface {
	Now() time.Time
	Uptime() time.Duration
}
