package gravity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// Competition is the optional competitor side of an evaluation: one
// attractiveness per competitor and the facility×competitor distances.
type Competition struct {
	Attractiveness []float64
	Distance       *mat.Dense
}

func (c *Competition) empty() bool {
	return c == nil || len(c.Attractiveness) == 0
}

// Evaluator computes net-demand matrices:
//
//	demand(i,j)             = A[i] * P[j] / d(i,j)²
//	competitionFactor(i,k)  = C[k] / cd(i,k)²
//	competitionDemand(i,j)  = Σk competitionFactor(i,k) * P[j] / cd(i,k)²
//	netDemand(i,j)          = demand(i,j) − competitionDemand(i,j)
//
// Competition is a facility-level drag: it depends on the facility's
// distance to each competitor, and only the population mass P[j] varies
// across columns.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates an Evaluator. Unset options take their defaults.
func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{opts: opts.normalized()}
}

// Options returns the effective options.
func (e *Evaluator) Options() Options {
	return e.opts
}

// Evaluate returns the len(attractiveness)×len(population) net-demand
// matrix. dist must be facility×population. comp may be nil.
//
// All shape and geometry checks run before the output matrix is built;
// inputs are never modified.
func (e *Evaluator) Evaluate(attractiveness []float64, dist *mat.Dense, population []float64, comp *Competition) (*mat.Dense, error) {
	if dist == nil {
		return nil, domain.NewInputError(SetPopulations, -1, "distance", "matrix is required")
	}
	rows, cols := dist.Dims()
	if len(attractiveness) != rows {
		return nil, domain.NewInputError(SetFacilities, -1, "attractiveness",
			fmt.Sprintf("length %d does not match %d distance rows", len(attractiveness), rows))
	}
	if len(population) != cols {
		return nil, domain.NewInputError(SetPopulations, -1, "population",
			fmt.Sprintf("length %d does not match %d distance columns", len(population), cols))
	}
	for i, a := range attractiveness {
		if err := checkMass(SetFacilities, i, "attractiveness", a); err != nil {
			return nil, err
		}
	}
	for j, p := range population {
		if err := checkMass(SetPopulations, j, "population", p); err != nil {
			return nil, err
		}
	}

	d, err := e.effectiveDistances(SetPopulations, dist)
	if err != nil {
		return nil, err
	}

	var pressure []float64
	if !comp.empty() {
		pressure, err = e.competitionPressure(rows, comp)
		if err != nil {
			return nil, err
		}
	}

	net := mat.NewDense(rows, cols, nil)
	err = forEachRow(rows, e.opts.Workers, func(i int) error {
		out := net.RawRowView(i)
		drow := d.RawRowView(i)
		for j := range out {
			v := attractiveness[i] * population[j] / (drow[j] * drow[j])
			if pressure != nil {
				v -= pressure[i] * population[j]
			}
			if !finite(v) {
				return domain.NewInputError(SetFacilities, i, "demand",
					fmt.Sprintf("non-finite demand against populations[%d]", j))
			}
			if e.opts.NonNegative && v < 0 {
				v = 0
			}
			out[j] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return net, nil
}

// competitionPressure returns Σk C[k]/cd(i,k)⁴ per facility, the amount of
// demand diverted per unit of population.
func (e *Evaluator) competitionPressure(rows int, comp *Competition) ([]float64, error) {
	if comp.Distance == nil {
		return nil, domain.NewInputError(SetCompetitors, -1, "distance", "matrix is required when competitors are given")
	}
	r, k := comp.Distance.Dims()
	if r != rows {
		return nil, domain.NewInputError(SetCompetitors, -1, "distance",
			fmt.Sprintf("%d rows do not match %d facilities", r, rows))
	}
	if len(comp.Attractiveness) != k {
		return nil, domain.NewInputError(SetCompetitors, -1, "attractiveness",
			fmt.Sprintf("length %d does not match %d distance columns", len(comp.Attractiveness), k))
	}
	for c, a := range comp.Attractiveness {
		if err := checkMass(SetCompetitors, c, "attractiveness", a); err != nil {
			return nil, err
		}
	}

	cd, err := e.effectiveDistances(SetCompetitors, comp.Distance)
	if err != nil {
		return nil, err
	}

	pressure := make([]float64, rows)
	for i := range pressure {
		row := cd.RawRowView(i)
		var sum float64
		for c, a := range comp.Attractiveness {
			sq := row[c] * row[c]
			factor := a / sq
			sum += factor / sq
		}
		if !finite(sum) {
			return nil, domain.NewInputError(SetCompetitors, -1, "distance",
				fmt.Sprintf("non-finite competition pressure for facilities[%d]", i))
		}
		pressure[i] = sum
	}
	return pressure, nil
}

// effectiveDistances applies the zero-distance policy. Under reject the
// input is returned as is after a row-major scan; under clamp a copy with
// every distance below Epsilon raised to Epsilon is returned.
func (e *Evaluator) effectiveDistances(set string, dist *mat.Dense) (*mat.Dense, error) {
	rows, cols := dist.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := dist.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, domain.NewInputError(set, j, "distance",
					fmt.Sprintf("non-finite distance from facilities[%d]", i))
			}
			if v < 0 {
				return nil, &domain.DegenerateGeometryError{Set: set, Row: i, Col: j, Distance: v}
			}
			if v == 0 && e.opts.ZeroDistance == RejectZeroDistance {
				return nil, &domain.DegenerateGeometryError{Set: set, Row: i, Col: j, Distance: v}
			}
		}
	}
	if e.opts.ZeroDistance != ClampZeroDistance {
		return dist, nil
	}

	clamped := mat.DenseCopyOf(dist)
	clamped.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v, e.opts.Epsilon)
	}, clamped)
	return clamped, nil
}
