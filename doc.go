// Package annidx provides approximate nearest-neighbor (ANN) search over
// high-dimensional vectors: a randomized kd-forest, a hierarchical k-means
// tree, a single exact kd-tree, an LSH index for Hamming data, a generic
// hierarchical clustering index, and an autotuner that picks an index type
// and its parameters for a target recall.
//
// All five indices are driven through the single Index facade in index.go:
// build once, then KNNSearch/RadiusSearch, AddPoints/RemovePoint, Save/Load.
// Distance metrics, result sets, center choosers, and the search heap live
// in the vector subpackage and are shared across every index; this package
// re-exports their public surface (see aliases.go) so callers only ever
// import one package.
package annidx
