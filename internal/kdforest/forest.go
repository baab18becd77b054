// Package kdforest implements the randomized kd-tree forest: multiple trees
// built by randomized splits on high-variance dimensions, searched jointly
// with a priority queue and a bounded leaf-check budget.
//
// It follows kdtree.go's tree-of-points shape, and uses
// gonum.org/v1/gonum/stat for the per-sample
// variance/mean computation the build step needs.
package kdforest

import (
	"math/rand"
	"sort"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
	"gonum.org/v1/gonum/stat"
)

// sampleCap bounds how many points are sampled to choose a split dimension.
const sampleCap = 100

// topVarianceDims bounds how many of the highest-variance dimensions a split
// is drawn from uniformly.
const topVarianceDims = 5

// node is one entry in a tree's arena. Leaves hold a point ID; internal
// nodes hold a split plane and child indices into the same arena, stored as
// 32-bit arena indices rather than pointers.
type node struct {
	leaf     bool
	pointID  int
	splitDim int
	splitVal float64
	low      int32
	high     int32
}

// tree is one kd-tree's arena plus its root index.
type tree struct {
	nodes []node
	root  int32
}

// Forest is a built randomized kd-tree forest.
type Forest struct {
	trees  []tree
	dim    int
	metric vector.AdditiveMetric
	rows   func(id int) (vector.Vector, bool)
}

// Build constructs trees independent randomized kd-trees over the active
// rows reachable via rows(id). metric must be kd-tree-compatible (additive);
// Build returns ErrUnsupportedMetric otherwise.
func Build(ids []int, dim int, trees int, metric vector.Metric, rows func(id int) (vector.Vector, bool), rng *rand.Rand) (*Forest, error) {
	am, ok := metric.(vector.AdditiveMetric)
	if !ok {
		return nil, errs.Wrap(errs.ErrUnsupportedMetric, "kdforest: metric is not kd-tree-compatible")
	}
	if len(ids) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "kdforest: empty point set")
	}
	f := &Forest{dim: dim, metric: am, rows: rows}
	f.trees = make([]tree, trees)
	for t := 0; t < trees; t++ {
		f.trees[t] = buildOneTree(ids, rows, dim, rng)
	}
	return f, nil
}

func buildOneTree(ids []int, rows func(int) (vector.Vector, bool), dim int, rng *rand.Rand) tree {
	tr := tree{nodes: make([]node, 0, 2*len(ids))}
	tr.root = buildSubtree(&tr, ids, rows, dim, rng)
	return tr
}

// buildSubtree recursively partitions pts, appending nodes to tr.nodes and
// returning the new subtree's root index.
func buildSubtree(tr *tree, pts []int, rows func(int) (vector.Vector, bool), dim int, rng *rand.Rand) int32 {
	if len(pts) == 1 {
		tr.nodes = append(tr.nodes, node{leaf: true, pointID: pts[0]})
		return int32(len(tr.nodes) - 1)
	}

	splitDim, splitVal, ok := chooseSplit(pts, rows, dim, rng)
	if !ok {
		// All sampled points identical on every dimension: fall back to
		// dimension 0 at the first point's coordinate; the positional
		// halving below keeps recursion terminating if that is one-sided.
		splitDim = 0
		splitVal = coordOf(rows, pts[0], 0)
	}

	var low, high []int
	for _, id := range pts {
		if coordOf(rows, id, splitDim) <= splitVal {
			low = append(low, id)
		} else {
			high = append(high, id)
		}
	}
	// Degenerate split (every point landed on one side): split pts in half
	// by position so both recursions shrink.
	if len(low) == 0 || len(high) == 0 {
		low = pts[:len(pts)/2]
		high = pts[len(pts)/2:]
	}

	idx := int32(len(tr.nodes))
	tr.nodes = append(tr.nodes, node{splitDim: splitDim, splitVal: splitVal})
	lowIdx := buildSubtree(tr, low, rows, dim, rng)
	highIdx := buildSubtree(tr, high, rows, dim, rng)
	tr.nodes[idx].low = lowIdx
	tr.nodes[idx].high = highIdx
	return idx
}

func coordOf(rows func(int) (vector.Vector, bool), id, dim int) float64 {
	row, _ := rows(id)
	return float64(row[dim])
}

// chooseSplit samples up to sampleCap points from pts, computes per-dimension
// variance over the sample, and returns a uniformly-chosen dimension among
// the top-5 highest-variance ones plus its mean over the full pts set. ok is
// false if every sampled dimension has zero variance.
func chooseSplit(pts []int, rows func(int) (vector.Vector, bool), dim int, rng *rand.Rand) (splitDim int, splitVal float64, ok bool) {
	sample := pts
	if len(sample) > sampleCap {
		perm := rng.Perm(len(pts))[:sampleCap]
		sample = make([]int, sampleCap)
		for i, p := range perm {
			sample[i] = pts[p]
		}
	}

	type dimVar struct {
		dim int
		v   float64
	}
	variances := make([]dimVar, dim)
	col := make([]float64, len(sample))
	for d := 0; d < dim; d++ {
		for i, id := range sample {
			col[i] = coordOf(rows, id, d)
		}
		variances[d] = dimVar{dim: d, v: stat.Variance(col, nil)}
	}
	sort.Slice(variances, func(i, j int) bool { return variances[i].v > variances[j].v })

	if variances[0].v == 0 {
		return 0, 0, false
	}
	top := topVarianceDims
	if top > len(variances) {
		top = len(variances)
	}
	// Only consider dims with non-zero variance among the top ones.
	for top > 1 && variances[top-1].v == 0 {
		top--
	}
	chosen := variances[rng.Intn(top)].dim

	full := make([]float64, len(pts))
	for i, id := range pts {
		full[i] = coordOf(rows, id, chosen)
	}
	return chosen, stat.Mean(full, nil), true
}
