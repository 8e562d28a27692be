package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-clock/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Current(ctx context.Context, coords weather.Coordinates, units weather.Units) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", coords.Lat, coords.Lon))
		values.Set("aqi", "no")
		return getRequest(fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}

	var payload struct {
		Current *struct {
			TempC    *float64 `json:"temp_c"`
			TempF    *float64 `json:"temp_f"`
			Humidity *float64 `json:"humidity"`
			UV       *float64 `json:"uv"`
		} `json:"current"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Reading{}, err
	}
	c := payload.Current
	if c == nil || c.Humidity == nil || c.UV == nil {
		return weather.Reading{}, malformed("weatherapi: incomplete current conditions")
	}

	// WeatherAPI returns both scales; units only pick the field.
	temp := c.TempC
	if units == weather.UnitsImperial {
		temp = c.TempF
	}
	if temp == nil {
		return weather.Reading{}, malformed("weatherapi: missing temperature")
	}

	return weather.Reading{
		ProviderName: p.name,
		Temperature:  *temp,
		Humidity:     *c.Humidity,
		UVIndex:      *c.UV,
	}, nil
}
