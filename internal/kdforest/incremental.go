package kdforest

import "github.com/Snider/annidx/vector"

// Insert descends each tree to the leaf the new point's coordinates would
// reach, then splits that leaf into an internal node holding both points.
// The split dimension reuses the ancestor's preference for high variance by
// picking the dimension of maximum coordinate difference between the two
// points, a cheap substitute for resampling variance on a single-leaf
// insert.
func (f *Forest) Insert(id int) {
	row, _ := f.rows(id)
	for t := range f.trees {
		insertInto(&f.trees[t], row, id, f.rows)
	}
}

func insertInto(tr *tree, row vector.Vector, id int, rows func(int) (vector.Vector, bool)) {
	idx := tr.root
	for !tr.nodes[idx].leaf {
		n := &tr.nodes[idx]
		if float64(row[n.splitDim]) <= n.splitVal {
			idx = n.low
		} else {
			idx = n.high
		}
	}

	oldLeaf := tr.nodes[idx]
	existingRow, _ := rows(oldLeaf.pointID)

	splitDim, splitVal := maxDiffDim(row, existingRow)

	// idx is converted in place to an internal node (its parent already
	// points at it), so the original leaf's point must be re-homed to a
	// fresh arena slot alongside the new point's leaf.
	tr.nodes = append(tr.nodes, oldLeaf, node{leaf: true, pointID: id})
	oldLeafIdx := int32(len(tr.nodes) - 2)
	newLeafIdx := int32(len(tr.nodes) - 1)

	var low, high int32
	if float64(row[splitDim]) <= splitVal {
		low, high = newLeafIdx, oldLeafIdx
	} else {
		low, high = oldLeafIdx, newLeafIdx
	}
	tr.nodes[idx] = node{splitDim: splitDim, splitVal: splitVal, low: low, high: high}
}

// maxDiffDim picks the coordinate where a and b differ the most, and the
// midpoint between them on that axis.
func maxDiffDim(a, b vector.Vector) (dim int, val float64) {
	best, bestDiff := 0, -1.0
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best, (float64(a[best]) + float64(b[best])) / 2
}
