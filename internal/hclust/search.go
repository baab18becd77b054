package hclust

import "github.com/Snider/annidx/vector"

// nodeRef is the heap payload: which tree and which arena index.
type nodeRef struct {
	tree int
	node int32
}

// KNNSearch descends every tree jointly through one heap, each internal node
// bounded by distance-to-representative minus its radius, until checks
// leaves total have been examined.
func (f *Forest) KNNSearch(query vector.Vector, checks int, rs *vector.KNNResultSet) {
	f.search(query, checks, rs)
}

// RadiusSearch is the radius-result-set counterpart of KNNSearch.
func (f *Forest) RadiusSearch(query vector.Vector, checks int, rs *vector.RadiusResultSet) {
	f.search(query, checks, rs)
}

func (f *Forest) search(query vector.Vector, checks int, rs vector.ResultSet) {
	h := vector.NewMinHeap[nodeRef](64)
	for t := range f.trees {
		h.Push(0, nodeRef{tree: t, node: f.trees[t].root})
	}

	visited := 0
	unlimited := checks < 0
	for h.Len() > 0 {
		if !unlimited && visited >= checks && rs.Full() {
			break
		}
		_, ref, ok := h.Pop()
		if !ok {
			break
		}
		tr := &f.trees[ref.tree]
		n := &tr.nodes[ref.node]
		if n.leaf {
			for _, id := range n.points {
				row, active := f.rows(id)
				if !active {
					continue
				}
				d := f.metric.Distance(query, row, rs.WorstDist())
				rs.Add(id, d)
			}
			visited++
			continue
		}

		for _, c := range n.children {
			child := &tr.nodes[c]
			d := f.metric.Distance(query, child.pivot, rs.WorstDist())
			bound := d - child.radius
			if bound < 0 {
				bound = 0
			}
			h.Push(bound, nodeRef{tree: ref.tree, node: c})
		}
	}
}
