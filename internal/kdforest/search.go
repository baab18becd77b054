package kdforest

import "github.com/Snider/annidx/vector"

// nodeRef is the heap payload: which tree and which arena index, plus the
// per-dimension lower-bound contributions accumulated along the pruned path.
// dists[d] holds the most recent split-plane distance crossed on dimension
// d; the node's mindist (the heap priority) is always sum(dists). Keeping
// one contribution per dimension, rather than a running scalar total, is
// what lets a dimension get re-split deeper in the tree without double
// counting: the new crossing replaces the old one on that axis instead of
// adding to it.
type nodeRef struct {
	tree  int
	node  int32
	dists []float64
}

// KNNSearch performs a budgeted priority-queue descent across every tree,
// filling rs. checks bounds how many leaves are visited; eps widens pruning
// tolerance.
func (f *Forest) KNNSearch(query vector.Vector, checks int, eps float64, rs *vector.KNNResultSet) {
	f.search(query, checks, eps, rs)
}

// RadiusSearch is the radius-result-set counterpart of KNNSearch.
func (f *Forest) RadiusSearch(query vector.Vector, checks int, eps float64, rs *vector.RadiusResultSet) {
	f.search(query, checks, eps, rs)
}

func (f *Forest) search(query vector.Vector, checks int, eps float64, rs vector.ResultSet) {
	h := vector.NewMinHeap[nodeRef](64)
	for t := range f.trees {
		h.Push(0, nodeRef{tree: t, node: f.trees[t].root, dists: make([]float64, f.dim)})
	}

	visited := 0
	unlimited := checks < 0
	for h.Len() > 0 {
		if !unlimited && visited >= checks && rs.Full() {
			break
		}
		mindist, ref, ok := h.Pop()
		if !ok {
			break
		}
		if mindist*(1+eps) > rs.WorstDist() {
			continue
		}
		tr := &f.trees[ref.tree]
		n := &tr.nodes[ref.node]
		if n.leaf {
			row, active := f.rows(n.pointID)
			if active {
				d := f.metric.Distance(query, row, rs.WorstDist())
				rs.Add(n.pointID, d)
			}
			visited++
			continue
		}

		qv := float64(query[n.splitDim])
		nearIdx, farIdx := n.low, n.high
		if qv > n.splitVal {
			nearIdx, farIdx = n.high, n.low
		}

		h.Push(mindist, nodeRef{tree: ref.tree, node: nearIdx, dists: ref.dists})

		// The far child's bound on this dimension supersedes whatever
		// ancestor split last constrained it; subtract the stale
		// contribution before adding the new one so a dimension split
		// twice on one root-to-leaf path never gets counted twice.
		splitPartial := f.metric.Partial(query[n.splitDim], float32(n.splitVal))
		farDists := append([]float64(nil), ref.dists...)
		farMindist := mindist - farDists[n.splitDim] + splitPartial
		farDists[n.splitDim] = splitPartial
		h.Push(farMindist, nodeRef{tree: ref.tree, node: farIdx, dists: farDists})
	}
}
