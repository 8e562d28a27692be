package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/weather"
)

const (
	coordinatesFile = "coordinates.json"
	sampleFile      = "weather.json"
)

// ErrNoCache is returned when a cache file has not been written yet.
var ErrNoCache = errors.New("cache file does not exist")

// FileCache keeps the coordinate and weather caches as two JSON documents in
// a directory. Files are overwritten in place; a power loss mid-write can
// leave a corrupt file, which then reads as a cache miss.
type FileCache struct {
	dir string
}

// NewFileCache returns a cache rooted at dir. Call Check before use.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// Check creates the cache directory if needed and verifies it is writable.
func (c *FileCache) Check() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return common.NewError(common.KindStorageUnavailable, err)
	}
	probe := filepath.Join(c.dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return common.NewError(common.KindStorageUnavailable, err)
	}
	if err := os.Remove(probe); err != nil {
		return common.NewError(common.KindStorageUnavailable, err)
	}
	return nil
}

func (c *FileCache) LoadCoordinates() (weather.Coordinates, error) {
	var coords weather.Coordinates
	if err := c.read(coordinatesFile, &coords); err != nil {
		return weather.Coordinates{}, err
	}
	return coords, nil
}

func (c *FileCache) SaveCoordinates(coords weather.Coordinates) error {
	return c.write(coordinatesFile, coords)
}

func (c *FileCache) LoadSample() (weather.Sample, error) {
	var s weather.Sample
	if err := c.read(sampleFile, &s); err != nil {
		return weather.Sample{}, err
	}
	return s, nil
}

func (c *FileCache) SaveSample(s weather.Sample) error {
	return c.write(sampleFile, s)
}

func (c *FileCache) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoCache
	}
	if err != nil {
		return common.NewError(common.KindStorageUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (c *FileCache) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return common.NewError(common.KindStorageUnavailable, err)
	}
	return nil
}
