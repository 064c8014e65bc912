package domain

import (
	"fmt"
	"strings"
)

// Bounds is a named rectangular lat/lon window. Both ends of each range
// are inclusive.
type Bounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Contains reports whether the point falls inside the window.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Catalog maps region names to bounding boxes. Built once at startup and
// injected wherever filtering happens; never mutated afterwards.
type Catalog map[string]Bounds

// DefaultCatalog returns the configured Indonesian fire-watch regions.
func DefaultCatalog() Catalog {
	return Catalog{
		"Sumatra":    {LatMin: -6.5, LatMax: 6.5, LonMin: 95.0, LonMax: 106.0},
		"Kalimantan": {LatMin: -4.5, LatMax: 3.0, LonMin: 108.0, LonMax: 118.5},
		"Indonesia":  {LatMin: -11.0, LatMax: 7.0, LonMin: 95.0, LonMax: 141.0},
	}
}

// Lookup returns the bounds for a region name. Matching is
// case-insensitive so env-style lowercase names resolve.
func (c Catalog) Lookup(name string) (Bounds, error) {
	for region, b := range c {
		if strings.EqualFold(region, name) {
			return b, nil
		}
	}
	return Bounds{}, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
}
