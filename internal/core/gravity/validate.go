package gravity

import (
	"math"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/pkg/geospatial"
)

// Input set names used in error reports.
const (
	SetFacilities  = "facilities"
	SetPopulations = "populations"
	SetCompetitors = "competitors"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkPoint(set string, i int, p domain.Point, metric geospatial.Metric) error {
	if !finite(p.X) {
		return domain.NewInputError(set, i, "x", "must be a finite number")
	}
	if !finite(p.Y) {
		return domain.NewInputError(set, i, "y", "must be a finite number")
	}
	if metric == geospatial.Haversine && !geospatial.ValidLonLat(p.Orb()) {
		return domain.NewInputError(set, i, "location", "not a valid lon/lat pair")
	}
	return nil
}

func checkMass(set string, i int, field string, v float64) error {
	if !finite(v) {
		return domain.NewInputError(set, i, field, "must be a finite number")
	}
	if v < 0 {
		return domain.NewInputError(set, i, field, "must not be negative")
	}
	return nil
}

// Validate checks every input set before any matrix is built and returns the
// first violation in facilities, populations, competitors order.
func (in Input) Validate(metric geospatial.Metric) error {
	if len(in.Facilities) == 0 {
		return domain.NewInputError(SetFacilities, -1, "", "at least one facility is required")
	}
	if len(in.Populations) == 0 {
		return domain.NewInputError(SetPopulations, -1, "", "at least one population site is required")
	}

	seen := make(map[string]int, len(in.Facilities))
	for i, f := range in.Facilities {
		if f.Name == "" {
			return domain.NewInputError(SetFacilities, i, "name", "must not be empty")
		}
		if _, dup := seen[f.Name]; dup {
			return domain.NewInputError(SetFacilities, i, "name", "duplicate facility name "+f.Name)
		}
		seen[f.Name] = i
		if err := checkPoint(SetFacilities, i, f.Location, metric); err != nil {
			return err
		}
		if err := checkMass(SetFacilities, i, "attractiveness", f.Attractiveness); err != nil {
			return err
		}
	}

	for i, p := range in.Populations {
		if err := checkPoint(SetPopulations, i, p.Location, metric); err != nil {
			return err
		}
		if err := checkMass(SetPopulations, i, "population", p.Population); err != nil {
			return err
		}
	}

	for i, c := range in.Competitors {
		if err := checkPoint(SetCompetitors, i, c.Location, metric); err != nil {
			return err
		}
		if err := checkMass(SetCompetitors, i, "attractiveness", c.Attractiveness); err != nil {
			return err
		}
	}
	return nil
}
