package kmeans

import "github.com/Snider/annidx/vector"

// KNNSearch descends from the root, pushing every child of an internal node
// onto one heap keyed by a pivot-adjusted bound and always expanding the
// lowest-bound entry next, until checks leaves have been examined.
func (t *Tree) KNNSearch(query vector.Vector, checks int, rs *vector.KNNResultSet) {
	t.search(query, checks, rs)
}

// RadiusSearch is the radius-result-set counterpart of KNNSearch.
func (t *Tree) RadiusSearch(query vector.Vector, checks int, rs *vector.RadiusResultSet) {
	t.search(query, checks, rs)
}

func (t *Tree) search(query vector.Vector, checks int, rs vector.ResultSet) {
	h := vector.NewMinHeap[int32](64)
	h.Push(0, t.root)

	visited := 0
	unlimited := checks < 0
	for h.Len() > 0 {
		if !unlimited && visited >= checks && rs.Full() {
			break
		}
		_, idx, ok := h.Pop()
		if !ok {
			break
		}
		n := &t.nodes[idx]
		if n.leaf {
			for _, id := range n.points {
				row, active := t.rows(id)
				if !active {
					continue
				}
				d := t.metric.Distance(query, row, rs.WorstDist())
				rs.Add(id, d)
			}
			visited++
			continue
		}

		best, bestDist := int32(-1), 0.0
		for _, c := range n.children {
			child := &t.nodes[c]
			d := t.metric.Distance(query, child.pivot, rs.WorstDist())
			bound := d - t.cbIndex*child.radius
			if best < 0 || bound < bestDist {
				if best >= 0 {
					h.Push(bestDist, best)
				}
				best, bestDist = c, bound
			} else {
				h.Push(bound, c)
			}
		}
		if best >= 0 {
			h.Push(bestDist, best)
		}
	}
}
