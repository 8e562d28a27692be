package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/weather"
)

// OpenWeatherGeocoder implements weather.Geocoder with the OpenWeatherMap direct geocoding API.
type OpenWeatherGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGeocoder(client *http.Client, apiKey string) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		name:    "openweathermap-geo",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/geo/1.0/direct",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather-geo"),
	}
}

func (g *OpenWeatherGeocoder) Name() string {
	return g.name
}

// Geocode queries "city,country" and uses the first match only.
func (g *OpenWeatherGeocoder) Geocode(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("openweather geocoding: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", fmt.Sprintf("%s,%s", loc.City, loc.Country))
		values.Set("limit", "1")
		values.Set("appid", g.apiKey)
		return getRequest(fmt.Sprintf("%s?%s", g.baseURL, values.Encode()))
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return weather.Coordinates{}, err
	}

	var payload []struct {
		Name    string   `json:"name"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
		Country string   `json:"country"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload) == 0 {
		return weather.Coordinates{}, malformed("no geocoding result for %s", loc.Key())
	}
	first := payload[0]
	if first.Lat == nil || first.Lon == nil {
		return weather.Coordinates{}, malformed("geocoding result for %s has no coordinates", loc.Key())
	}

	return weather.Coordinates{
		Lat:     *first.Lat,
		Lon:     *first.Lon,
		City:    loc.City,
		Country: loc.Country,
	}, nil
}

// OpenWeatherProvider implements the weather.Provider interface with the One Call 3.0 API.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/3.0/onecall",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Current(ctx context.Context, coords weather.Coordinates, units weather.Units) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Lat))
		values.Set("lon", fmt.Sprintf("%f", coords.Lon))
		values.Set("exclude", "minutely,hourly,daily,alerts")
		values.Set("units", string(units))
		values.Set("appid", p.apiKey)
		return getRequest(fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}

	var payload struct {
		Current *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
			UVI      *float64 `json:"uvi"`
		} `json:"current"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Reading{}, err
	}
	c := payload.Current
	if c == nil || c.Temp == nil || c.Humidity == nil || c.UVI == nil {
		return weather.Reading{}, common.NewError(common.KindMalformedResponse, fmt.Errorf("openweather: incomplete current conditions"))
	}

	return weather.Reading{
		ProviderName: p.name,
		Temperature:  *c.Temp,
		Humidity:     *c.Humidity,
		UVIndex:      *c.UVI,
	}, nil
}
