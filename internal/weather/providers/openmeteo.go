package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-clock/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Current(ctx context.Context, coords weather.Coordinates, units weather.Units) (weather.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,uv_index")
		if units == weather.UnitsImperial {
			values.Set("temperature_unit", "fahrenheit")
		}
		return getRequest(fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}

	var payload struct {
		Current *struct {
			Temperature *float64 `json:"temperature_2m"`
			Humidity    *float64 `json:"relative_humidity_2m"`
			UVIndex     *float64 `json:"uv_index"`
		} `json:"current"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Reading{}, err
	}
	c := payload.Current
	if c == nil || c.Temperature == nil || c.Humidity == nil || c.UVIndex == nil {
		return weather.Reading{}, malformed("openmeteo: incomplete current conditions")
	}

	return weather.Reading{
		ProviderName: p.name,
		Temperature:  *c.Temperature,
		Humidity:     *c.Humidity,
		UVIndex:      *c.UVIndex,
	}, nil
}
