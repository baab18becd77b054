// Package hclust implements hierarchical clustering trees: like the k-means
// tree but metric-agnostic — representatives are actual data points chosen
// by the vector package's Gonzales/k-means++ choosers rather than averaged
// centroids, so any vector.Metric works, not just additive ones. Multiple
// independent trees are built to compensate for greedy splits and searched
// jointly through one heap, mirroring kdforest's multi-tree structure.
package hclust

import (
	"math"
	"math/rand"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
)

// node is one arena entry: a leaf holds point IDs; an internal node holds a
// representative point id, the cluster radius around it, and child indices.
type node struct {
	leaf     bool
	points   []int
	repID    int
	pivot    vector.Vector
	radius   float64
	children []int32
}

type tree struct {
	nodes []node
	root  int32
}

// Forest is a set of independently built hierarchical clustering trees.
type Forest struct {
	trees     []tree
	dim       int
	branching int
	init      vector.CenterInit
	metric    vector.Metric
	rows      func(id int) (vector.Vector, bool)
}

// Build constructs trees independent clustering trees over ids, to
// compensate for greedy splits.
func Build(ids []int, dim, trees, branching int, init vector.CenterInit, metric vector.Metric, rows func(id int) (vector.Vector, bool), rng *rand.Rand) (*Forest, error) {
	if len(ids) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "hclust: empty point set")
	}
	f := &Forest{dim: dim, branching: branching, init: init, metric: metric, rows: rows}
	f.trees = make([]tree, trees)
	for t := 0; t < trees; t++ {
		f.trees[t] = f.buildOneTree(ids, rng)
	}
	return f, nil
}

func (f *Forest) buildOneTree(ids []int, rng *rand.Rand) tree {
	tr := tree{nodes: make([]node, 0, 2*len(ids))}
	tr.root = f.buildNode(&tr, ids, rng)
	return tr
}

// buildNode partitions pts by nearest representative, without recomputing
// centroids, and recurses.
func (f *Forest) buildNode(tr *tree, pts []int, rng *rand.Rand) int32 {
	if len(pts) <= f.branching {
		tr.nodes = append(tr.nodes, node{leaf: true, points: append([]int(nil), pts...)})
		return int32(len(tr.nodes) - 1)
	}

	rowFn := func(id int) vector.Vector { row, _ := f.rows(id); return row }
	reps := vector.ChooseCenters(f.init, pts, rowFn, f.metric, f.branching, rng)

	assign := make([]int, len(pts))
	for i, id := range pts {
		row, _ := f.rows(id)
		best, bestDist := 0, f.metric.Distance(row, rowFn(reps[0]), math.Inf(1))
		for c := 1; c < len(reps); c++ {
			d := f.metric.Distance(row, rowFn(reps[c]), bestDist)
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		assign[i] = best
	}

	clusters := make([][]int, len(reps))
	for i, id := range pts {
		clusters[assign[i]] = append(clusters[assign[i]], id)
	}

	idx := int32(len(tr.nodes))
	tr.nodes = append(tr.nodes, node{})
	children := make([]int32, 0, len(clusters))
	for c, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		repRow := rowFn(reps[c])
		radius := 0.0
		for _, id := range cluster {
			d := f.metric.Distance(rowFn(id), repRow, math.Inf(1))
			if d > radius {
				radius = d
			}
		}
		childIdx := f.buildNode(tr, cluster, rng)
		tr.nodes[childIdx].repID = reps[c]
		tr.nodes[childIdx].pivot = repRow
		tr.nodes[childIdx].radius = radius
		children = append(children, childIdx)
	}
	tr.nodes[idx].children = children
	return idx
}
