package gravity

import (
	"fmt"
	"strings"

	"github.com/samirrijal/gymdemand/internal/pkg/geospatial"
)

// ZeroDistancePolicy decides what happens when a facility coincides with a
// population site or a competitor.
type ZeroDistancePolicy string

const (
	// RejectZeroDistance fails the evaluation with a DegenerateGeometryError.
	RejectZeroDistance ZeroDistancePolicy = "reject"
	// ClampZeroDistance raises every distance below Options.Epsilon to
	// Options.Epsilon before squaring.
	ClampZeroDistance ZeroDistancePolicy = "clamp"
)

// DefaultEpsilon is the clamp floor used when Options.Epsilon is unset.
const DefaultEpsilon = 1e-6

// ParseZeroDistancePolicy maps a config or query string to a policy. The
// empty string selects RejectZeroDistance.
func ParseZeroDistancePolicy(s string) (ZeroDistancePolicy, error) {
	switch ZeroDistancePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RejectZeroDistance:
		return RejectZeroDistance, nil
	case ClampZeroDistance:
		return ClampZeroDistance, nil
	default:
		return "", fmt.Errorf("unknown zero-distance policy %q (want reject or clamp)", s)
	}
}

// Options configures an evaluation.
type Options struct {
	Metric       geospatial.Metric
	ZeroDistance ZeroDistancePolicy
	Epsilon      float64
	// NonNegative clamps every net-demand cell at zero. Off by default so
	// that markets dominated by competitors stay visible.
	NonNegative bool
	// Workers bounds row-parallel evaluation. Values below 2 run serially.
	Workers int
}

// DefaultOptions returns euclidean distances, zero distances rejected,
// negative demand preserved, serial evaluation.
func DefaultOptions() Options {
	return Options{
		Metric:       geospatial.Euclidean,
		ZeroDistance: RejectZeroDistance,
		Epsilon:      DefaultEpsilon,
		Workers:      1,
	}
}

func (o Options) normalized() Options {
	if o.Metric == "" {
		o.Metric = geospatial.Euclidean
	}
	if o.ZeroDistance == "" {
		o.ZeroDistance = RejectZeroDistance
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}
