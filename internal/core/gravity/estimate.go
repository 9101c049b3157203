package gravity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// Input is one estimation request.
type Input struct {
	Facilities  []domain.Facility
	Populations []domain.PopulationSite
	Competitors []domain.Competitor
}

// Result holds the net-demand matrix and its per-facility aggregation.
type Result struct {
	Demand []domain.FacilityDemand
	Matrix *mat.Dense
	Total  float64
}

// Cells returns the number of facility×population cells evaluated.
func (r *Result) Cells() int {
	if r == nil || r.Matrix == nil {
		return 0
	}
	rows, cols := r.Matrix.Dims()
	return rows * cols
}

// Estimate validates in, builds the distance matrices, evaluates net demand
// and aggregates it per facility.
func (e *Evaluator) Estimate(in Input) (*Result, error) {
	if err := in.Validate(e.opts.Metric); err != nil {
		return nil, err
	}

	facilityPts := make([]domain.Point, len(in.Facilities))
	attractiveness := make([]float64, len(in.Facilities))
	for i, f := range in.Facilities {
		facilityPts[i] = f.Location
		attractiveness[i] = f.Attractiveness
	}
	popPts := make([]domain.Point, len(in.Populations))
	population := make([]float64, len(in.Populations))
	for j, p := range in.Populations {
		popPts[j] = p.Location
		population[j] = p.Population
	}

	dist, err := DistanceMatrix(SetFacilities, facilityPts, SetPopulations, popPts, e.opts.Metric, e.opts.Workers)
	if err != nil {
		return nil, err
	}

	var comp *Competition
	if len(in.Competitors) > 0 {
		compPts := make([]domain.Point, len(in.Competitors))
		compAttr := make([]float64, len(in.Competitors))
		for k, c := range in.Competitors {
			compPts[k] = c.Location
			compAttr[k] = c.Attractiveness
		}
		cd, err := DistanceMatrix(SetFacilities, facilityPts, SetCompetitors, compPts, e.opts.Metric, e.opts.Workers)
		if err != nil {
			return nil, err
		}
		comp = &Competition{Attractiveness: compAttr, Distance: cd}
	}

	net, err := e.Evaluate(attractiveness, dist, population, comp)
	if err != nil {
		return nil, err
	}

	demand, err := Aggregate(in.Facilities, net)
	if err != nil {
		return nil, err
	}
	return &Result{Demand: demand, Matrix: net, Total: Total(demand)}, nil
}

// Estimate runs a one-off estimation with opts.
func Estimate(in Input, opts Options) (*Result, error) {
	return NewEvaluator(opts).Estimate(in)
}
