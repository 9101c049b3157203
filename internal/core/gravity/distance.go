package gravity

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/pkg/geospatial"
)

// DistanceMatrix returns the len(sources)×len(targets) matrix of distances
// between every source and every target under metric. The two sets play
// distinct roles and are never assumed to be the same collection.
//
// An empty set is reported as an InputError naming sourceSet or targetSet.
func DistanceMatrix(sourceSet string, sources []domain.Point, targetSet string, targets []domain.Point, metric geospatial.Metric, workers int) (*mat.Dense, error) {
	if len(sources) == 0 {
		return nil, domain.NewInputError(sourceSet, -1, "", "no coordinates")
	}
	if len(targets) == 0 {
		return nil, domain.NewInputError(targetSet, -1, "", "no coordinates")
	}
	for i, p := range sources {
		if err := checkPoint(sourceSet, i, p, metric); err != nil {
			return nil, err
		}
	}
	for j, p := range targets {
		if err := checkPoint(targetSet, j, p, metric); err != nil {
			return nil, err
		}
	}

	dist := mat.NewDense(len(sources), len(targets), nil)
	err := forEachRow(len(sources), workers, func(i int) error {
		row := dist.RawRowView(i)
		src := sources[i].Orb()
		for j, t := range targets {
			row[j] = metric.Distance(src, t.Orb())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dist, nil
}

// forEachRow runs fn for every row index. Each index is handled by exactly
// one call, so callers may write row i of a shared matrix without locking.
// When rows fail, the error of the lowest failing row is returned regardless
// of worker count or scheduling.
func forEachRow(rows, workers int, fn func(i int) error) error {
	if workers < 2 || rows < 2 {
		for i := 0; i < rows; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, rows)
	var lowest atomic.Int64
	lowest.Store(int64(rows))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < rows; i++ {
		g.Go(func() error {
			// rows past a known failure cannot change the result
			if int64(i) > lowest.Load() {
				return nil
			}
			if err := fn(i); err != nil {
				errs[i] = err
				for {
					cur := lowest.Load()
					if int64(i) >= cur || lowest.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
