// Package geo defines the named region bounding boxes the collector sweeps
// and the pipeline filters against.
package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidBounds marks a region whose bounding box is malformed.
var ErrInvalidBounds = errors.New("invalid region bounds")

// Region is a named geographic bounding box, edges inclusive.
type Region struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// Contains reports whether the coordinate falls inside the box.
func (r Region) Contains(lat, lng float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat &&
		lng >= r.MinLng && lng <= r.MaxLng
}

// Validate checks the box is well formed and on the globe.
func (r Region) Validate() error {
	if r.MinLat >= r.MaxLat {
		return fmt.Errorf("%w: min_lat %v >= max_lat %v", ErrInvalidBounds, r.MinLat, r.MaxLat)
	}
	if r.MinLng >= r.MaxLng {
		return fmt.Errorf("%w: min_lng %v >= max_lng %v", ErrInvalidBounds, r.MinLng, r.MaxLng)
	}
	if r.MinLat < -90 || r.MaxLat > 90 {
		return fmt.Errorf("%w: latitude outside [-90, 90]", ErrInvalidBounds)
	}
	if r.MinLng < -180 || r.MaxLng > 180 {
		return fmt.Errorf("%w: longitude outside [-180, 180]", ErrInvalidBounds)
	}
	return nil
}

// Point is one sweep coordinate for grid-based nearby searches.
type Point struct {
	Lat float64
	Lng float64
}

// Grid returns sweep centers covering the region, stepDeg apart, edges
// inclusive. A nonpositive step yields just the region center.
func (r Region) Grid(stepDeg float64) []Point {
	if stepDeg <= 0 {
		return []Point{{Lat: (r.MinLat + r.MaxLat) / 2, Lng: (r.MinLng + r.MaxLng) / 2}}
	}

	var pts []Point
	// The epsilon keeps the far edges in when float accumulation lands a
	// hair past the bound.
	for lat := r.MinLat; lat <= r.MaxLat+1e-9; lat += stepDeg {
		for lng := r.MinLng; lng <= r.MaxLng+1e-9; lng += stepDeg {
			pts = append(pts, Point{Lat: lat, Lng: lng})
		}
	}
	return pts
}

// --------------------------------------------------------------------------
// Region registry
// --------------------------------------------------------------------------

// DefaultRegion is the registry key used when no region is configured.
const DefaultRegion = "socal"

// RegionRegistry holds the built-in sweep regions, keyed by slug. Custom
// regions can be added via the pipeline config file without touching this
// table.
var RegionRegistry = map[string]Region{
	"socal": {
		Name:   "Southern California",
		MinLat: 32.5, MaxLat: 34.9,
		MinLng: -119.5, MaxLng: -114.1,
	},
	"norcal": {
		Name:   "Northern California",
		MinLat: 36.4, MaxLat: 39.5,
		MinLng: -123.1, MaxLng: -119.9,
	},
	"pnw": {
		Name:   "Pacific Northwest",
		MinLat: 43.0, MaxLat: 49.0,
		MinLng: -124.8, MaxLng: -116.5,
	},
	"texas": {
		Name:   "Texas",
		MinLat: 25.8, MaxLat: 36.5,
		MinLng: -106.7, MaxLng: -93.5,
	},
	"midwest": {
		Name:   "Midwest",
		MinLat: 38.0, MaxLat: 47.5,
		MinLng: -97.3, MaxLng: -80.5,
	},
	"northeast": {
		Name:   "Northeast Corridor",
		MinLat: 38.7, MaxLat: 45.2,
		MinLng: -80.5, MaxLng: -66.9,
	},
}

// Lookup resolves a region slug case-insensitively.
func Lookup(slug string) (Region, bool) {
	r, ok := RegionRegistry[strings.ToLower(strings.TrimSpace(slug))]
	return r, ok
}

// Slugs returns the registry keys sorted, for usage and error messages.
func Slugs() []string {
	out := make([]string, 0, len(RegionRegistry))
	for k := range RegionRegistry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
