// Package kmeans implements the hierarchical k-means tree: a tree whose
// internal nodes cluster points by k-means, searched by priority-queue
// descent with a configurable branching factor.
//
// It follows kdtree.go's recursive-structure style and uses
// gonum.org/v1/gonum/floats for the centroid arithmetic the build step
// performs over each cluster.
package kmeans

import (
	"math"
	"math/rand"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
	"gonum.org/v1/gonum/floats"
)

// node is one arena entry: a leaf holds point IDs directly; an internal node
// holds a pivot/radius/children set.
type node struct {
	leaf       bool
	points     []int
	pivot      vector.Vector
	radius     float64
	meanRadius float64
	variance   float64
	children   []int32
}

// Tree is a built hierarchical k-means tree.
type Tree struct {
	nodes      []node
	root       int32
	dim        int
	branching  int
	iterations int
	cbIndex    float64
	init       vector.CenterInit
	metric     vector.Metric
	rows       func(id int) (vector.Vector, bool)
}

// Build clusters ids recursively with Lloyd's algorithm.
func Build(ids []int, dim, branching, iterations int, cbIndex float64, init vector.CenterInit, metric vector.Metric, rows func(id int) (vector.Vector, bool), rng *rand.Rand) (*Tree, error) {
	if len(ids) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "kmeans: empty point set")
	}
	t := &Tree{
		dim: dim, branching: branching, iterations: iterations,
		cbIndex: cbIndex, init: init, metric: metric, rows: rows,
		nodes: make([]node, 0, 2*len(ids)),
	}
	t.root = t.buildNode(ids, rng)
	return t, nil
}

func (t *Tree) buildNode(pts []int, rng *rand.Rand) int32 {
	if len(pts) <= t.branching {
		t.nodes = append(t.nodes, node{leaf: true, points: append([]int(nil), pts...)})
		return int32(len(t.nodes) - 1)
	}

	centers := vector.ChooseCenters(t.init, pts, func(id int) vector.Vector { row, _ := t.rows(id); return row }, t.metric, t.branching, rng)
	pivots := make([]vector.Vector, len(centers))
	for i, c := range centers {
		row, _ := t.rows(c)
		pivots[i] = append(vector.Vector(nil), row...)
	}

	assign := make([]int, len(pts))
	maxIter := t.iterations
	if maxIter <= 0 {
		maxIter = 100
	}
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, id := range pts {
			row, _ := t.rows(id)
			best, bestDist := 0, t.metric.Distance(row, pivots[0], math.Inf(1))
			for c := 1; c < len(pivots); c++ {
				d := t.metric.Distance(row, pivots[c], bestDist)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		recomputePivots(pivots, pts, assign, t.dim, t.rows)
		if !changed {
			break
		}
	}

	clusters := make([][]int, len(pivots))
	for i, id := range pts {
		clusters[assign[i]] = append(clusters[assign[i]], id)
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{})
	children := make([]int32, 0, len(clusters))
	for c, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		radius, meanRadius, variance := clusterStats(pivots[c], cluster, t.metric, t.rows)
		childIdx := t.buildNode(cluster, rng)
		t.nodes[childIdx].pivot = pivots[c]
		t.nodes[childIdx].radius = radius
		t.nodes[childIdx].meanRadius = meanRadius
		t.nodes[childIdx].variance = variance
		children = append(children, childIdx)
	}
	t.nodes[idx].children = children
	return idx
}


func recomputePivots(pivots []vector.Vector, pts []int, assign []int, dim int, rows func(int) (vector.Vector, bool)) {
	sums := make([][]float64, len(pivots))
	counts := make([]int, len(pivots))
	for c := range pivots {
		sums[c] = make([]float64, dim)
	}
	for i, id := range pts {
		row, _ := rows(id)
		c := assign[i]
		counts[c]++
		for d := 0; d < dim; d++ {
			sums[c][d] += float64(row[d])
		}
	}
	for c := range pivots {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		newPivot := make(vector.Vector, dim)
		for d := 0; d < dim; d++ {
			newPivot[d] = float32(sums[c][d])
		}
		pivots[c] = newPivot
	}
}

// clusterStats computes radius (max distance from pivot), mean radius, and
// variance of distances for one cluster.
func clusterStats(pivot vector.Vector, cluster []int, metric vector.Metric, rows func(int) (vector.Vector, bool)) (radius, meanRadius, variance float64) {
	dists := make([]float64, len(cluster))
	var sum float64
	for i, id := range cluster {
		row, _ := rows(id)
		d := metric.Distance(row, pivot, math.Inf(1))
		dists[i] = d
		sum += d
		if d > radius {
			radius = d
		}
	}
	meanRadius = sum / float64(len(cluster))
	for _, d := range dists {
		variance += (d - meanRadius) * (d - meanRadius)
	}
	variance /= float64(len(cluster))
	return
}
