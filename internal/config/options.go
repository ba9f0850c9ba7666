package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrInvalidGridResolution is returned when grid_resolution is not a positive number.
var ErrInvalidGridResolution = errors.New("grid_resolution must be a positive number")

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Options controls polygon extraction.
type Options struct {
	// SimplifyPolygons enables Douglas-Peucker simplification of traced rings.
	SimplifyPolygons bool `json:"simplify_polygons"`

	// GridResolution is the pixel grid spacing. The simplification tolerance
	// is sqrt(2) times this value. Must be positive.
	GridResolution float64 `json:"grid_resolution"`
}

// Default returns the default options: no simplification, grid resolution 1.
func Default() Options {
	return Options{
		SimplifyPolygons: false,
		GridResolution:   1,
	}
}

// Validate checks that the option values are usable.
func (o Options) Validate() error {
	if math.IsNaN(o.GridResolution) || math.IsInf(o.GridResolution, 0) || o.GridResolution <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidGridResolution, o.GridResolution)
	}
	return nil
}

// Load reads Options from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their Default values, so partial configs are safe.
func Load(path string) (Options, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Options{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Options{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return Options{}, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := Default()
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return opts, nil
}
