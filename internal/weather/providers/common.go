package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-clock/internal/common"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// defaultHTTPConfig issues each request once. The refresh loop only retries
// at its next scheduled interval.
func defaultHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      0,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = common.NewError(common.KindConfiguration, errors.New("http client not configured"))
	errInvalidConfig = common.NewError(common.KindConfiguration, errors.New("invalid backoff configuration"))
	errMissingAPIKey = common.NewError(common.KindConfiguration, errors.New("api key is not configured"))
)

// doRequestWithResilience executes the HTTP request through a circuit breaker,
// retrying with exponential backoff only if cfg.Backoff.MaxRetries > 0.
// Returned errors are tagged with a common.Kind.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, common.Tag(ctx.Err())
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, common.Tag(execErr)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
				return nil, common.HTTPStatusError(resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// An open circuit means the endpoint has been failing; report it as unreachable.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, common.NewError(common.KindNetworkUnreachable, fmt.Errorf("%w: %v", errCircuitOpen, err))
		}

		if attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, common.Tag(ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}

// decodeJSON decodes the response body into v and closes it.
func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return common.NewError(common.KindMalformedResponse, err)
	}
	return nil
}

func malformed(format string, args ...any) error {
	return common.NewError(common.KindMalformedResponse, fmt.Errorf(format, args...))
}

func getRequest(u string) (*http.Request, error) {
	return http.NewRequest(http.MethodGet, u, nil)
}
