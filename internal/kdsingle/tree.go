// Package kdsingle implements a single exact kd-tree: one tree built over
// tight axis-aligned bounding boxes, searched with exact bbox pruning.
// Unlike the randomized forest, this index is built directly on top of
// gonum.org/v1/gonum/spatial/kdtree — a longstanding comment in kdtree.go
// anticipated swapping its home-grown tree for gonum's ("a future change
// can swap this implementation to use gonum.org/v1/gonum/spatial/kdtree");
// this package is that future change.
package kdsingle

import (
	"container/heap"
	"math"
	"sort"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// comparablePoint adapts a dataset row to kdtree.Comparable. Distance is the
// squared Euclidean distance, which is what gonum's own tree construction
// and pruning assume; this single-tree index therefore specializes to L2
// rather than accepting an arbitrary vector.Metric (see DESIGN.md).
type comparablePoint struct {
	id  int
	vec vector.Vector
}

func (p comparablePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(comparablePoint)
	return float64(p.vec[d]) - float64(q.vec[d])
}

func (p comparablePoint) Dims() int { return len(p.vec) }

func (p comparablePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(comparablePoint)
	var sum float64
	for i := range p.vec {
		d := float64(p.vec[i]) - float64(q.vec[i])
		sum += d * d
	}
	return sum
}

// pointList implements kdtree.Interface over a slice of comparablePoint,
// partitioning by dimension median on Pivot. gonum itself chooses the split
// dimension by extent; this type only supplies the partition gonum asks for
// on whichever dimension it picks.
type pointList []comparablePoint

func (l pointList) Index(i int) kdtree.Comparable { return l[i] }
func (l pointList) Len() int                      { return len(l) }

// Pivot sorts pts by coordinate d and reports the median index, which is
// the partition gonum's tree-builder expects back from Pivot.
func (l pointList) Pivot(d kdtree.Dim) int {
	sort.Sort(&dimSorter{pointList: l, dim: d})
	return l.Len() / 2
}

func (l pointList) Slice(start, end int) kdtree.Interface { return l[start:end] }

type dimSorter struct {
	pointList
	dim kdtree.Dim
}

func (s *dimSorter) Less(i, j int) bool {
	return s.pointList[i].vec[s.dim] < s.pointList[j].vec[s.dim]
}
func (s *dimSorter) Swap(i, j int) {
	s.pointList[i], s.pointList[j] = s.pointList[j], s.pointList[i]
}

// Tree is a built single exact kd-tree over the active rows of a dataset.
type Tree struct {
	t    *kdtree.Tree
	dim  int
	rows func(id int) (vector.Vector, bool)
}

// Build constructs the tree over ids. It takes no leaf-size parameter:
// gonum's kdtree always descends to single-point leaves, so the tight-AABB pruning
// comes from the tree's per-node Bounding rather than from a leaf-size
// cutoff.
func Build(ids []int, dim int, rows func(id int) (vector.Vector, bool)) (*Tree, error) {
	if len(ids) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "kdsingle: empty point set")
	}
	pts := make(pointList, 0, len(ids))
	for _, id := range ids {
		row, ok := rows(id)
		if !ok {
			continue
		}
		pts = append(pts, comparablePoint{id: id, vec: row})
	}
	if len(pts) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "kdsingle: no active points")
	}
	return &Tree{t: kdtree.New(pts, true), dim: dim, rows: rows}, nil
}

// Insert adds a point to the existing tree without a full rebuild.
func (tr *Tree) Insert(id int, row vector.Vector) {
	tr.t.Insert(comparablePoint{id: id, vec: row}, true)
}

// KNNSearch fills rs with up to k active neighbors of query.
func (tr *Tree) KNNSearch(query vector.Vector, k int, rs *vector.KNNResultSet) {
	kp := &skipKeeper{k: k, rows: tr.rows}
	tr.t.NearestSet(kp, comparablePoint{vec: query})
	for _, cd := range kp.items {
		rs.Add(cd.Comparable.(comparablePoint).id, cd.Dist)
	}
}

// RadiusSearch fills rs with every active point within squared distance r
// of query.
func (tr *Tree) RadiusSearch(query vector.Vector, r float64, rs *vector.RadiusResultSet) {
	kp := &skipKeeper{k: -1, maxDist: r, rows: tr.rows}
	tr.t.NearestSet(kp, comparablePoint{vec: query})
	for _, cd := range kp.items {
		rs.Add(cd.Comparable.(comparablePoint).id, cd.Dist)
	}
}

// skipKeeper implements kdtree.Keeper: a bounded max-heap of candidates
// that silently drops tombstoned rows rather than letting them occupy a
// slot a live neighbor should have. k<0 means unbounded (radius mode),
// bounded instead by maxDist.
type skipKeeper struct {
	items   resultHeap
	k       int
	maxDist float64
	rows    func(id int) (vector.Vector, bool)
}

func (s *skipKeeper) Keep(c kdtree.ComparableDist) {
	id := c.Comparable.(comparablePoint).id
	if s.rows != nil {
		if _, ok := s.rows(id); !ok {
			return
		}
	}
	if s.k < 0 {
		if c.Dist <= s.maxDist {
			s.items = append(s.items, c)
		}
		return
	}
	if len(s.items) < s.k {
		heap.Push(&s.items, c)
		return
	}
	if len(s.items) > 0 && c.Dist < s.items[0].Dist {
		heap.Pop(&s.items)
		heap.Push(&s.items, c)
	}
}

func (s *skipKeeper) Max() kdtree.ComparableDist {
	if len(s.items) == 0 {
		return kdtree.ComparableDist{Dist: math.Inf(1)}
	}
	return s.items[0]
}

func (s *skipKeeper) Len() int { return len(s.items) }

// resultHeap is a max-heap of candidates ordered by descending distance, so
// the worst current candidate is always at the root and evictable in
// O(log k).
type resultHeap []kdtree.ComparableDist

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Dist > h[j].Dist }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(kdtree.ComparableDist)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
