package weather

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/i474232898/weather-clock/internal/common"
)

// Service runs the two-stage weather protocol: resolve coordinates once, then
// fetch current conditions on every refresh.
type Service struct {
	location Location
	units    Units
	geocoder Geocoder
	provider Provider
	cache    Cache
	history  History
	clock    Clock

	// coords is set on the first successful resolution and never cleared.
	coords *Coordinates
}

// NewService creates a new Service. cache and history may be nil.
func NewService(loc Location, units Units, geocoder Geocoder, provider Provider, cache Cache, history History, clock Clock) *Service {
	return &Service{
		location: loc,
		units:    units,
		geocoder: geocoder,
		provider: provider,
		cache:    cache,
		history:  history,
		clock:    clock,
	}
}

// Location returns the configured location.
func (s *Service) Location() Location {
	return s.location
}

// Units returns the configured unit system.
func (s *Service) Units() Units {
	return s.units
}

// ResolveCoordinates returns the session coordinates, reading the durable
// cache or geocoding on a miss. Failures are not cached, so the next call
// tries again.
func (s *Service) ResolveCoordinates(ctx context.Context) (Coordinates, error) {
	if s.coords != nil {
		return *s.coords, nil
	}

	if s.cache != nil {
		c, err := s.cache.LoadCoordinates()
		switch {
		case err != nil:
			log.Printf("DEBUG: weather: no usable coordinate cache: %v", err)
		case c.Matches(s.location):
			log.Printf("INFO: weather: using cached coordinates for %s (%.4f, %.4f)", s.location.Key(), c.Lat, c.Lon)
			s.coords = &c
			return c, nil
		default:
			log.Printf("INFO: weather: coordinate cache is for %s:%s, re-resolving %s", c.City, c.Country, s.location.Key())
		}
	}

	if s.geocoder == nil {
		return Coordinates{}, common.NewError(common.KindConfiguration, fmt.Errorf("no geocoder configured"))
	}

	c, err := s.geocoder.Geocode(ctx, s.location)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %s via %s: %w", s.location.Key(), s.geocoder.Name(), common.Tag(err))
	}
	c.City = s.location.City
	c.Country = s.location.Country
	s.coords = &c

	if s.cache != nil {
		if err := s.cache.SaveCoordinates(c); err != nil {
			log.Printf("ERROR: weather: failed to persist coordinates: %v", err)
		}
	}
	log.Printf("INFO: weather: resolved %s to (%.4f, %.4f)", s.location.Key(), c.Lat, c.Lon)
	return c, nil
}

// Refresh fetches current conditions into st. On any failure st.Sample is
// left as it was and the failure kind is recorded in st.LastError.
func (s *Service) Refresh(ctx context.Context, connected bool, st *State) error {
	st.LastAttempt = s.clock.Now()

	err := s.refresh(ctx, connected, st)
	if err != nil {
		st.LastError = common.KindOf(err)
		st.LastErrorAt = st.LastAttempt
		st.Failures++
		log.Printf("weather: refresh failed for %s: %v", s.location.Key(), err)
		return err
	}

	st.LastError = common.KindNone
	st.Refreshes++
	return nil
}

func (s *Service) refresh(ctx context.Context, connected bool, st *State) error {
	if !connected {
		return common.NewError(common.KindNotConnected, nil)
	}

	coords, err := s.ResolveCoordinates(ctx)
	if err != nil {
		return err
	}
	st.Coordinates = &coords

	if s.provider == nil {
		return common.NewError(common.KindConfiguration, fmt.Errorf("no weather provider configured"))
	}

	r, err := s.provider.Current(ctx, coords, s.units)
	if err != nil {
		return fmt.Errorf("provider %s: %w", s.provider.Name(), common.Tag(err))
	}
	if !finite(r.Temperature, r.Humidity, r.UVIndex) {
		return common.NewError(common.KindMalformedResponse, fmt.Errorf("provider %s returned non-finite values", s.provider.Name()))
	}

	sample := Sample{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		UVIndex:     r.UVIndex,
		Units:       s.units,
		Provider:    r.ProviderName,
		FetchedAt:   s.clock.Uptime(),
		FetchedWall: s.clock.Now().UTC(),
	}
	st.Sample = sample
	st.HasSample = true

	if s.cache != nil {
		if err := s.cache.SaveSample(sample); err != nil {
			log.Printf("ERROR: weather: failed to persist sample: %v", err)
		}
	}
	if s.history != nil {
		s.history.SaveSample(s.location, sample)
	}
	return nil
}

// LoadCached seeds st with the persisted sample, if one exists for the
// configured unit system.
func (s *Service) LoadCached(st *State) bool {
	if s.cache == nil {
		return false
	}
	sample, err := s.cache.LoadSample()
	if err != nil {
		log.Printf("DEBUG: weather: no cached sample: %v", err)
		return false
	}
	if sample.Units != s.units {
		log.Printf("INFO: weather: cached sample is %s, want %s; ignoring", sample.Units, s.units)
		return false
	}
	st.Sample = sample
	st.HasSample = true
	return true
}

// History returns the sample history, or nil if none is configured.
func (s *Service) History() History {
	return s.history
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
