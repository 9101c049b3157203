package gravity

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// Aggregate sums each row of netDemand into one value per facility, in
// facility order. Columns are summed left to right so the result does not
// depend on how the matrix was produced.
func Aggregate(facilities []domain.Facility, netDemand *mat.Dense) ([]domain.FacilityDemand, error) {
	if netDemand == nil {
		return nil, domain.NewInputError(SetFacilities, -1, "demand", "matrix is required")
	}
	rows, _ := netDemand.Dims()
	if rows != len(facilities) {
		return nil, domain.NewInputError(SetFacilities, -1, "",
			fmt.Sprintf("%d facilities do not match %d demand rows", len(facilities), rows))
	}

	out := make([]domain.FacilityDemand, rows)
	for i, f := range facilities {
		out[i] = domain.FacilityDemand{
			Name:   f.Name,
			Demand: floats.Sum(netDemand.RawRowView(i)),
		}
	}
	return out, nil
}

// Total sums aggregate demand across facilities.
func Total(demand []domain.FacilityDemand) float64 {
	var t float64
	for _, d := range demand {
		t += d.Demand
	}
	return t
}
