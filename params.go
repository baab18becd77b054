package annidx

// ChecksAutotuned is the negative checks value. The facade passes it through
// unchanged, and every tree backend treats a negative checks as "no leaf
// budget": the search runs until its heap is exhausted (see DESIGN.md Open
// Questions).
const ChecksAutotuned = -1

// SearchParams configures a single search call.
type SearchParams struct {
	Checks       int     // leaf-visit budget, or ChecksAutotuned
	Eps          float64 // approximation factor
	Sorted       bool    // sort RadiusSearch output by distance
	MaxNeighbors int     // cap per query; 0 means unbounded (radius only)
	Cores        int     // 0 = all cores, 1 = caller goroutine, n>1 = fixed pool
}

// DefaultSearchParams returns a conservative set of search parameters.
// KNNSearch and RadiusSearch use whatever SearchParams they are given; a
// zero-value SearchParams is not replaced by these defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{Checks: 32, Eps: 0, Sorted: true, Cores: 1}
}

// AlgorithmKind tags which index implementation Params selects.
type AlgorithmKind string

const (
	AlgoLinear        AlgorithmKind = "linear"
	AlgoKDForest      AlgorithmKind = "kdforest"
	AlgoKMeans        AlgorithmKind = "kmeans"
	AlgoKDTreeSingle  AlgorithmKind = "kdtree_single"
	AlgoHierarchical  AlgorithmKind = "hierarchical"
	AlgoLSH           AlgorithmKind = "lsh"
	AlgoAutotuned     AlgorithmKind = "autotuned"
)

// Params configures Index construction. Only the fields relevant to
// Algorithm are consulted; zero values fall back to the documented
// defaults for that algorithm.
type Params struct {
	Algorithm AlgorithmKind

	// KDForest
	Trees int // default 4

	// KMeans / Hierarchical
	Branching  int        // default 32
	Iterations int        // default 11; <0 means "until convergence" (at most 100 passes)
	CBIndex    float64    // default 0.2
	CentersInit CenterInit // default CenterRandom (KMeans), CenterGonzales (Hierarchical)
	LeafSize   int        // Hierarchical only, default 1

	// KDTreeSingle
	LeafMaxSize int  // default 10
	Reorder     bool // no default is applied; the kdsingle backend does not read it

	// LSH
	TableNumber     int // default 12
	KeySize         int // default 20 bits
	MultiProbeLevel int // 0 probes only the exact bucket; a negative value becomes 2

	// Autotuned
	TargetPrecision float64 // in [0,1]
	BuildWeight     float64
	MemoryWeight    float64
	SampleFraction  float64 // in (0,1]
}

// Option configures a Params under construction: functional options over a
// single resolved struct rather than a builder type.
type Option func(*Params)

// WithTrees sets the kd-forest or hierarchical tree count.
func WithTrees(n int) Option { return func(p *Params) { p.Trees = n } }

// WithBranching sets the k-means/hierarchical branching factor.
func WithBranching(n int) Option { return func(p *Params) { p.Branching = n } }

// WithIterations sets the k-means Lloyd's-iteration cap.
func WithIterations(n int) Option { return func(p *Params) { p.Iterations = n } }

// WithCentersInit selects the center-choosing strategy for k-means and
// hierarchical clustering.
func WithCentersInit(c CenterInit) Option { return func(p *Params) { p.CentersInit = c } }

// WithLeafMaxSize sets the single-kd-tree leaf size threshold.
func WithLeafMaxSize(n int) Option { return func(p *Params) { p.LeafMaxSize = n } }

// WithLSHTables sets the LSH table count.
func WithLSHTables(n int) Option { return func(p *Params) { p.TableNumber = n } }

// WithKeySize sets the LSH hash key width in bits.
func WithKeySize(n int) Option { return func(p *Params) { p.KeySize = n } }

// WithMultiProbeLevel sets the LSH multi-probe search radius.
func WithMultiProbeLevel(n int) Option { return func(p *Params) { p.MultiProbeLevel = n } }

// WithTargetPrecision sets the autotuner's recall target.
func WithTargetPrecision(p0 float64) Option { return func(p *Params) { p.TargetPrecision = p0 } }

// NewParams builds a Params for algo, applying opts over the documented
// defaults.
func NewParams(algo AlgorithmKind, opts ...Option) Params {
	p := Params{Algorithm: algo}
	for _, opt := range opts {
		opt(&p)
	}
	return p.withDefaults()
}

// withDefaults fills in the documented per-algorithm defaults for any field
// left at its zero value.
func (p Params) withDefaults() Params {
	switch p.Algorithm {
	case AlgoKDForest:
		if p.Trees <= 0 {
			p.Trees = 4
		}
	case AlgoKMeans:
		if p.Branching <= 0 {
			p.Branching = 32
		}
		if p.Iterations == 0 {
			p.Iterations = 11
		}
		if p.CBIndex == 0 {
			p.CBIndex = 0.2
		}
		if p.CentersInit == "" {
			p.CentersInit = CenterRandom
		}
	case AlgoHierarchical:
		if p.Branching <= 0 {
			p.Branching = 32
		}
		if p.Trees <= 0 {
			p.Trees = 4
		}
		if p.LeafSize <= 0 {
			p.LeafSize = 1
		}
		if p.CentersInit == "" {
			p.CentersInit = CenterGonzales
		}
	case AlgoKDTreeSingle:
		if p.LeafMaxSize <= 0 {
			p.LeafMaxSize = 10
		}
	case AlgoLSH:
		if p.TableNumber <= 0 {
			p.TableNumber = 12
		}
		if p.KeySize <= 0 {
			p.KeySize = 20
		}
		if p.MultiProbeLevel < 0 {
			p.MultiProbeLevel = 2
		}
	case AlgoAutotuned:
		if p.SampleFraction <= 0 {
			p.SampleFraction = 0.1
		}
	}
	return p
}
