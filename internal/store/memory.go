package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-clock/internal/weather"
)

var (
	// ErrNotFound is returned when no samples match a query.
	ErrNotFound = errors.New("no weather data for location")
)

// MemoryStore is the in-memory history of samples for the device location.
// The refresh loop writes it; the HTTP API reads it.
//
// The device watches one location per process. Saving a sample for a
// different location starts a new history.
type MemoryStore struct {
	mu sync.RWMutex

	location string
	samples  []weather.Sample

	maxHistory int           // max number of samples (0 = unlimited)
	maxAge     time.Duration // max age by FetchedWall (0 = unlimited)
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSample appends sample and trims the history.
func (s *MemoryStore) SaveSample(loc weather.Location, sample weather.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key := loc.Key(); key != s.location {
		s.location = key
		s.samples = nil
	}
	s.samples = append(s.samples, sample)
	s.samples = s.retain(s.samples)
}

// retain drops samples beyond the count limit, then samples older than the
// age limit. The newest sample always survives.
func (s *MemoryStore) retain(samples []weather.Sample) []weather.Sample {
	if s.maxHistory > 0 && len(samples) > s.maxHistory {
		samples = samples[len(samples)-s.maxHistory:]
	}
	if s.maxAge <= 0 {
		return samples
	}

	cutoff := s.now().Add(-s.maxAge)
	i := 0
	for i < len(samples)-1 && samples[i].FetchedWall.Before(cutoff) {
		i++
	}
	return samples[i:]
}

// GetLatest returns the most recent sample.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if loc.Key() != s.location || len(s.samples) == 0 {
		return weather.Sample{}, ErrNotFound
	}
	return s.samples[len(s.samples)-1], nil
}

// GetRange returns the samples fetched between from and to, inclusive.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if loc.Key() != s.location {
		return nil, ErrNotFound
	}

	var result []weather.Sample
	for _, sample := range s.samples {
		ts := sample.FetchedWall
		if !ts.Before(from) && !ts.After(to) {
			result = append(result, sample)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
