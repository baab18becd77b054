package kmeans

import "github.com/Snider/annidx/vector"

// NodeSnapshot mirrors node with exported fields for gob round-tripping.
type NodeSnapshot struct {
	Leaf       bool
	Points     []int
	Pivot      vector.Vector
	Radius     float64
	MeanRadius float64
	Variance   float64
	Children   []int32
}

// Snapshot is the gob-encodable structural payload persisted by Save.
type Snapshot struct {
	Dim       int
	Branching int
	CBIndex   float64
	Root      int32
	Nodes     []NodeSnapshot
}

// Snapshot captures t's arena in a form that's safe to gob-encode.
func (t *Tree) Snapshot() Snapshot {
	nodes := make([]NodeSnapshot, len(t.nodes))
	for i, n := range t.nodes {
		nodes[i] = NodeSnapshot{
			Leaf: n.leaf, Points: n.points, Pivot: n.pivot,
			Radius: n.radius, MeanRadius: n.meanRadius, Variance: n.variance,
			Children: n.children,
		}
	}
	return Snapshot{Dim: t.dim, Branching: t.branching, CBIndex: t.cbIndex, Root: t.root, Nodes: nodes}
}

// Restore reconstructs a Tree from a Snapshot plus the metric and row
// accessor, neither of which is persisted.
func Restore(snap Snapshot, metric vector.Metric, rows func(id int) (vector.Vector, bool)) *Tree {
	t := &Tree{
		dim: snap.Dim, branching: snap.Branching, cbIndex: snap.CBIndex,
		root: snap.Root, metric: metric, rows: rows,
	}
	t.nodes = make([]node, len(snap.Nodes))
	for i, ns := range snap.Nodes {
		t.nodes[i] = node{
			leaf: ns.Leaf, points: ns.Points, pivot: ns.Pivot,
			radius: ns.Radius, meanRadius: ns.MeanRadius, variance: ns.Variance,
			children: ns.Children,
		}
	}
	return t
}
