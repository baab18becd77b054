package kdforest

import "github.com/Snider/annidx/vector"

// NodeSnapshot mirrors node with exported fields, since gob only transfers
// exported struct fields and pointers/funcs are never serialized — only
// relational indices are.
type NodeSnapshot struct {
	Leaf     bool
	PointID  int
	SplitDim int
	SplitVal float64
	Low      int32
	High     int32
}

// TreeSnapshot mirrors tree.
type TreeSnapshot struct {
	Nodes []NodeSnapshot
	Root  int32
}

// Snapshot is the gob-encodable structural payload persisted by Save.
type Snapshot struct {
	Dim   int
	Trees []TreeSnapshot
}

// Snapshot captures f's arena in a form that's safe to gob-encode.
func (f *Forest) Snapshot() Snapshot {
	out := Snapshot{Dim: f.dim, Trees: make([]TreeSnapshot, len(f.trees))}
	for i, t := range f.trees {
		nodes := make([]NodeSnapshot, len(t.nodes))
		for j, n := range t.nodes {
			nodes[j] = NodeSnapshot{Leaf: n.leaf, PointID: n.pointID, SplitDim: n.splitDim, SplitVal: n.splitVal, Low: n.low, High: n.high}
		}
		out.Trees[i] = TreeSnapshot{Nodes: nodes, Root: t.root}
	}
	return out
}

// Restore reconstructs a Forest from a Snapshot plus the runtime
// dependencies save/load never persists: the metric and the row accessor.
// Saved indices reference point indices, so the original dataset must be
// presented again at load time.
func Restore(snap Snapshot, metric vector.AdditiveMetric, rows func(id int) (vector.Vector, bool)) *Forest {
	f := &Forest{dim: snap.Dim, metric: metric, rows: rows}
	f.trees = make([]tree, len(snap.Trees))
	for i, ts := range snap.Trees {
		nodes := make([]node, len(ts.Nodes))
		for j, ns := range ts.Nodes {
			nodes[j] = node{leaf: ns.Leaf, pointID: ns.PointID, splitDim: ns.SplitDim, splitVal: ns.SplitVal, low: ns.Low, high: ns.High}
		}
		f.trees[i] = tree{nodes: nodes, root: ts.Root}
	}
	return f
}
