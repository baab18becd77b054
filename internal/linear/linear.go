// Package linear implements the baseline exact search: a plain scan used
// directly when Params.Algorithm == AlgoLinear, and as the ground-truth
// oracle the autotuner measures recall against.
//
// It follows kdtree.go's own linear fallback in its Nearest/KNearest/Radius
// methods (the non-gonum path: a plain scan building a KNNResultSet),
// generalized to the shared vector.ResultSet types.
package linear

import "github.com/Snider/annidx/vector"

// Index is a trivial "index" that holds no structure at all: every search
// scans every active row.
type Index struct {
	rows   func(id int) (vector.Vector, bool) // false if tombstoned
	dim    int
	metric vector.Metric
}

// Build returns a linear Index over active rows. rows(id) must report
// ok=false for tombstoned rows. Build does not use n; the id space scanned
// is bounded by the n passed to each KNNSearch/RadiusSearch call.
func Build(n int, dim int, metric vector.Metric, rows func(id int) (vector.Vector, bool)) *Index {
	return &Index{rows: rows, dim: dim, metric: metric}
}

// KNNSearch fills rs by scanning every active row.
func (ix *Index) KNNSearch(query vector.Vector, n int, rs *vector.KNNResultSet) {
	for id := 0; id < n; id++ {
		row, ok := ix.rows(id)
		if !ok {
			continue
		}
		d := ix.metric.Distance(query, row, rs.WorstDist())
		if d < rs.WorstDist() {
			rs.Add(id, d)
		}
	}
}

// RadiusSearch fills rs by scanning every active row.
func (ix *Index) RadiusSearch(query vector.Vector, n int, rs *vector.RadiusResultSet) {
	for id := 0; id < n; id++ {
		row, ok := ix.rows(id)
		if !ok {
			continue
		}
		d := ix.metric.Distance(query, row, rs.WorstDist())
		rs.Add(id, d)
	}
}
