package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder sets the geocoder library's package-level key, so only
// one Google key can be in use per process.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

// Geocode ignores ctx; the geocoder library has no context support and relies
// on its own HTTP client timeout.
func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("google geocoding: %w", errMissingAPIKey)
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, common.Tag(err)
	}

	res, err := g.lookup(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		if common.HasAny(err.Error(), "no results", "zero_results", "invalid") {
			return weather.Coordinates{}, common.NewError(common.KindMalformedResponse, err)
		}
		return weather.Coordinates{}, common.Tag(err)
	}
	if res.Latitude == 0 && res.Longitude == 0 {
		return weather.Coordinates{}, malformed("google geocoding returned no coordinates for %s", loc.Key())
	}

	return weather.Coordinates{
		Lat:     res.Latitude,
		Lon:     res.Longitude,
		City:    loc.City,
		Country: loc.Country,
	}, nil
}
