// Package autotune implements the autotuner: grid search over kd-forest and
// k-means configurations, each tuned to the smallest checks budget that
// clears a target recall on a held-out sample, scored by a
// build/search/memory cost function. It operates directly on the
// internal/linear, internal/kdforest, and internal/kmeans packages rather
// than through the Index facade, so the facade can call it without an
// import cycle.
package autotune

import (
	"math/rand"
	"time"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/internal/kdforest"
	"github.com/Snider/annidx/internal/kmeans"
	"github.com/Snider/annidx/internal/linear"
	"github.com/Snider/annidx/vector"
)

// Kind is the candidate algorithm family the grid searches over.
type Kind string

const (
	KindKDForest Kind = "kdforest"
	KindKMeans   Kind = "kmeans"
)

// Config parameterizes the tuning run: TargetPrecision, BuildWeight,
// MemoryWeight, and SampleFraction drive the grid search, plus K for how
// many neighbors each held-out query measures recall against.
type Config struct {
	TargetPrecision float64
	BuildWeight     float64
	MemoryWeight    float64
	SampleFraction  float64
	K               int
}

// Result is the winning candidate: which algorithm, its parameters, the
// checks budget that clears TargetPrecision, and the measurements used to
// score it.
type Result struct {
	Kind        Kind
	Trees       int
	Branching   int
	Iterations  int
	Init        vector.CenterInit
	Checks      int
	Precision   float64
	BuildTime   time.Duration
	SearchTime  time.Duration
	MemoryBytes uint64
	Cost        float64
}

var (
	treeCounts  = []int{1, 4, 8, 16}
	branchings  = []int{16, 32, 64, 128, 256}
	iterCounts  = []int{1, 5, 10, 15}
	inits       = []vector.CenterInit{vector.CenterRandom, vector.CenterGonzales, vector.CenterKMeansPP}
	maxQueries  = 50
)

// Tune draws a tuning sample and a held-out query set from ids, evaluates
// every grid candidate, and returns the lowest-cost one that meets
// TargetPrecision; if none does, it returns the candidate with the highest
// precision.
func Tune(ids []int, dim int, metric vector.Metric, rows func(id int) (vector.Vector, bool), cfg Config, rng *rand.Rand) (Result, error) {
	if len(ids) == 0 {
		return Result{}, errs.Wrap(errs.ErrInvalidInput, "autotune: empty point set")
	}
	if cfg.SampleFraction <= 0 {
		cfg.SampleFraction = 0.1
	}
	if cfg.K <= 0 {
		cfg.K = 10
	}

	sampleSize := int(cfg.SampleFraction * float64(len(ids)))
	if sampleSize < cfg.K+1 {
		sampleSize = minInt(len(ids), cfg.K+1)
	}
	perm := rng.Perm(len(ids))
	sample := make([]int, sampleSize)
	for i := 0; i < sampleSize; i++ {
		sample[i] = ids[perm[i]]
	}

	numQueries := minInt(maxQueries, sampleSize/5+1)
	queries := sample[:numQueries]
	base := sample[numQueries:]
	if len(base) == 0 {
		base = sample
	}

	groundTruth := computeGroundTruth(base, queries, dim, metric, rows, cfg.K)

	var best Result
	haveBest, bestMet := false, false
	consider := func(r Result, ok bool) {
		if !ok {
			return
		}
		r.Cost = r.SearchTime.Seconds() + cfg.BuildWeight*r.BuildTime.Seconds() + cfg.MemoryWeight*float64(r.MemoryBytes)
		met := r.Precision >= cfg.TargetPrecision
		better := !haveBest || (met && !bestMet) ||
			(met && bestMet && r.Cost < best.Cost) ||
			(!met && !bestMet && r.Precision > best.Precision)
		if better {
			best, haveBest, bestMet = r, true, met
		}
	}

	for _, trees := range treeCounts {
		r, ok := evalKDForest(base, queries, groundTruth, dim, trees, metric, rows, cfg, rng)
		consider(r, ok)
	}
	for _, branching := range branchings {
		for _, iters := range iterCounts {
			for _, init := range inits {
				r, ok := evalKMeans(base, queries, groundTruth, dim, branching, iters, init, metric, rows, cfg, rng)
				consider(r, ok)
			}
		}
	}

	if !haveBest {
		return Result{}, errs.Wrap(errs.ErrResourceExhausted, "autotune: no candidate achieved target precision %.3f", cfg.TargetPrecision)
	}
	return best, nil
}

func computeGroundTruth(base, queries []int, dim int, metric vector.Metric, rows func(int) (vector.Vector, bool), k int) [][]int {
	scoped := scopedRows(base, rows)
	n := maxID(base) + 1
	lin := linear.Build(n, dim, metric, scoped)
	truth := make([][]int, len(queries))
	for i, qid := range queries {
		qrow, _ := rows(qid)
		rs := vector.NewKNNResultSet(k)
		lin.KNNSearch(qrow, n, rs)
		ids, _ := rs.Results()
		truth[i] = ids
	}
	return truth
}

// scopedRows restricts rows to exactly the ids in set, so a linear scan
// over [0, n) used as ground truth only ever sees the tuning sample, not
// every active point in the full dataset.
func scopedRows(set []int, rows func(int) (vector.Vector, bool)) func(int) (vector.Vector, bool) {
	allowed := make(map[int]bool, len(set))
	for _, id := range set {
		allowed[id] = true
	}
	return func(id int) (vector.Vector, bool) {
		if !allowed[id] {
			return nil, false
		}
		return rows(id)
	}
}

func evalKDForest(base, queries []int, truth [][]int, dim, trees int, metric vector.Metric, rows func(int) (vector.Vector, bool), cfg Config, rng *rand.Rand) (Result, bool) {
	buildStart := time.Now()
	forest, err := kdforest.Build(base, dim, trees, metric, rows, rng)
	buildTime := time.Since(buildStart)
	if err != nil {
		return Result{}, false
	}

	measure := func(checks int) (float64, time.Duration) {
		start := time.Now()
		total := 0.0
		for i, qid := range queries {
			qrow, _ := rows(qid)
			rs := vector.NewKNNResultSet(cfg.K)
			forest.KNNSearch(qrow, checks, 0, rs)
			got, _ := rs.Results()
			total += recall(got, truth[i])
		}
		elapsed := time.Since(start)
		return total / float64(len(queries)), elapsed
	}

	checks, precision, searchTime, ok := binarySearchChecks(len(base), cfg.TargetPrecision, measure)
	if !ok {
		return Result{}, false
	}
	return Result{
		Kind: KindKDForest, Trees: trees, Checks: checks, Precision: precision,
		BuildTime: buildTime, SearchTime: searchTime,
		MemoryBytes: uint64(len(base) * dim * 4 * trees),
	}, true
}

func evalKMeans(base, queries []int, truth [][]int, dim, branching, iters int, init vector.CenterInit, metric vector.Metric, rows func(int) (vector.Vector, bool), cfg Config, rng *rand.Rand) (Result, bool) {
	buildStart := time.Now()
	tree, err := kmeans.Build(base, dim, branching, iters, 0.2, init, metric, rows, rng)
	buildTime := time.Since(buildStart)
	if err != nil {
		return Result{}, false
	}

	measure := func(checks int) (float64, time.Duration) {
		start := time.Now()
		total := 0.0
		for i, qid := range queries {
			qrow, _ := rows(qid)
			rs := vector.NewKNNResultSet(cfg.K)
			tree.KNNSearch(qrow, checks, rs)
			got, _ := rs.Results()
			total += recall(got, truth[i])
		}
		elapsed := time.Since(start)
		return total / float64(len(queries)), elapsed
	}

	checks, precision, searchTime, ok := binarySearchChecks(len(base), cfg.TargetPrecision, measure)
	if !ok {
		return Result{}, false
	}
	return Result{
		Kind: KindKMeans, Branching: branching, Iterations: iters, Init: init,
		Checks: checks, Precision: precision, BuildTime: buildTime, SearchTime: searchTime,
		MemoryBytes: uint64(len(base) * dim * 4),
	}, true
}

// binarySearchChecks finds the smallest checks in [1, maxChecks] for which
// measure reports precision >= target. If even a full unpruned scan
// (maxChecks) fails to clear target, it still returns that best-effort
// candidate so the caller has a fallback rather than nothing.
func binarySearchChecks(maxChecks int, target float64, measure func(checks int) (float64, time.Duration)) (checks int, precision float64, elapsed time.Duration, ok bool) {
	lo, hi := 1, maxChecks
	var lastPrecision float64
	var lastElapsed time.Duration
	for lo < hi {
		mid := (lo + hi) / 2
		p, t := measure(mid)
		lastPrecision, lastElapsed = p, t
		if p >= target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	finalPrecision, finalElapsed := measure(lo)
	if finalPrecision >= target {
		return lo, finalPrecision, finalElapsed, true
	}
	return lo, finalPrecision, finalElapsed, finalPrecision > 0
}

func recall(got, truth []int) float64 {
	if len(truth) == 0 {
		return 1
	}
	want := make(map[int]bool, len(truth))
	for _, id := range truth {
		want[id] = true
	}
	hit := 0
	for _, id := range got {
		if want[id] {
			hit++
		}
	}
	return float64(hit) / float64(len(truth))
}

func maxID(ids []int) int {
	m := 0
	for _, id := range ids {
		if id > m {
			m = id
		}
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
