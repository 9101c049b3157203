package geospatial

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Metric selects how the distance between two points is measured.
type Metric string

const (
	// Euclidean treats coordinates as planar (x, y).
	Euclidean Metric = "euclidean"
	// Haversine treats coordinates as (lon, lat) degrees and returns the
	// great-circle distance in meters.
	Haversine Metric = "haversine"
)

// ParseMetric maps a config or query string to a Metric. The empty string
// selects Euclidean.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case "", Euclidean:
		return Euclidean, nil
	case Haversine:
		return Haversine, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q (want euclidean or haversine)", s)
	}
}

// Distance returns the distance between a and b under m.
func (m Metric) Distance(a, b orb.Point) float64 {
	if m == Haversine {
		return geo.DistanceHaversine(a, b)
	}
	return planar.Distance(a, b)
}

// ValidLonLat reports whether p is a plausible (lon, lat) pair.
func ValidLonLat(p orb.Point) bool {
	return p.Lon() >= -180 && p.Lon() <= 180 && p.Lat() >= -90 && p.Lat() <= 90
}
