package annidx

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Snider/annidx/autotune"
	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/internal/hclust"
	"github.com/Snider/annidx/internal/kdforest"
	"github.com/Snider/annidx/internal/kdsingle"
	"github.com/Snider/annidx/internal/kmeans"
	"github.com/Snider/annidx/internal/linear"
	"github.com/Snider/annidx/internal/lsh"
	"github.com/Snider/annidx/internal/pool"
	"github.com/Snider/annidx/vector"
	"github.com/google/uuid"
)

// state is the Index lifecycle: Empty -> Built -> (Built+Dirty via
// add/remove) -> Rebuilt.
type state int

const (
	stateEmpty state = iota
	stateBuilt
	stateDirty
	stateRebuilt
)

// Index is the common facade over every algorithm. One Index holds exactly
// one built backend at a time, selected by Params.Algorithm.
type Index[T any] struct {
	mu sync.RWMutex

	dataset *Dataset[T]
	metric  Metric
	params  Params
	state   state
	rng     *rand.Rand

	rebuildThreshold float64
	buildID          uuid.UUID
	builtAt          time.Time
	analytics        *IndexAnalytics

	linearIdx *linear.Index
	forest    *kdforest.Forest
	kmeansT   *kmeans.Tree
	single    *kdsingle.Tree
	hier      *hclust.Forest
	lshIdx    *lsh.LSH
}

// New constructs an Index over dataset under metric, selecting the backend
// Params.Algorithm names. The index starts Empty; call Build to populate
// it.
func New[T any](dataset *Dataset[T], metric Metric, params Params) *Index[T] {
	return &Index[T]{
		dataset:          dataset,
		metric:           metric,
		params:           params.withDefaults(),
		state:            stateEmpty,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		rebuildThreshold: 2.0,
		analytics:        newIndexAnalytics(),
	}
}

// rowsFn adapts the dataset to the internal/* packages' (id) -> (row, ok)
// convention, reporting ok=false for tombstoned rows.
func (ix *Index[T]) rowsFn() func(id int) (vector.Vector, bool) {
	return func(id int) (vector.Vector, bool) {
		if id < 0 || id >= ix.dataset.Len() || ix.dataset.Removed(id) {
			return nil, false
		}
		return ix.dataset.Row(id), true
	}
}

func (ix *Index[T]) activeIDs() []int {
	ids := make([]int, 0, ix.dataset.Len())
	ix.dataset.EachActive(func(id int, _ Vector) { ids = append(ids, id) })
	return ids
}

// Build constructs the selected backend from the dataset's current active
// rows. Build failures on invalid input leave the index Empty.
func (ix *Index[T]) Build() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.buildLocked()
}

// buildLocked is Build's body, callable by other methods that already hold
// ix.mu (e.g. AddPoints triggering a rebuild).
func (ix *Index[T]) buildLocked() error {
	start := time.Now()
	// Compact discards tombstones and renumbers survivors before the
	// backend is built, so the structures below and the dataset agree on
	// IDs.
	ix.dataset.Compact()

	ids := ix.activeIDs()
	if len(ids) == 0 {
		ix.state = stateEmpty
		return errs.Wrap(errs.ErrInvalidInput, "annidx: cannot build an empty dataset")
	}
	dim := ix.dataset.Dim()
	rows := ix.rowsFn()
	params := ix.params

	if params.Algorithm == AlgoAutotuned {
		tuned, err := autotune.Tune(ids, dim, ix.metric, rows, autotune.Config{
			TargetPrecision: params.TargetPrecision,
			BuildWeight:     params.BuildWeight,
			MemoryWeight:    params.MemoryWeight,
			SampleFraction:  params.SampleFraction,
		}, ix.rng)
		if err != nil {
			ix.state = stateEmpty
			return err
		}
		switch tuned.Kind {
		case autotune.KindKDForest:
			params.Algorithm, params.Trees = AlgoKDForest, tuned.Trees
		case autotune.KindKMeans:
			params.Algorithm = AlgoKMeans
			params.Branching, params.Iterations, params.CentersInit = tuned.Branching, tuned.Iterations, tuned.Init
		}
		ix.params = params
	}

	ix.resetBackends()

	var err error
	switch params.Algorithm {
	case AlgoLinear:
		ix.linearIdx = linear.Build(ix.dataset.Len(), dim, ix.metric, rows)
	case AlgoKDForest:
		ix.forest, err = kdforest.Build(ids, dim, params.Trees, ix.metric, rows, ix.rng)
	case AlgoKMeans:
		ix.kmeansT, err = kmeans.Build(ids, dim, params.Branching, params.Iterations, params.CBIndex, params.CentersInit, ix.metric, rows, ix.rng)
	case AlgoKDTreeSingle:
		ix.single, err = kdsingle.Build(ids, dim, rows)
	case AlgoHierarchical:
		ix.hier, err = hclust.Build(ids, dim, params.Trees, params.Branching, params.CentersInit, ix.metric, rows, ix.rng)
	case AlgoLSH:
		ix.lshIdx, err = lsh.Build(ids, dim, params.TableNumber, params.KeySize, params.MultiProbeLevel, rows, ix.rng)
	default:
		ix.linearIdx = linear.Build(ix.dataset.Len(), dim, ix.metric, rows)
		params.Algorithm = AlgoLinear
		ix.params = params
	}
	if err != nil {
		ix.state = stateEmpty
		return err
	}

	wasBuilt := ix.state != stateEmpty
	ix.state = stateBuilt
	if wasBuilt {
		ix.state = stateRebuilt
	}
	ix.buildID = uuid.New()
	ix.builtAt = time.Now()
	if wasBuilt {
		ix.analytics.recordRebuild()
	}
	logger().Debug("annidx: build complete",
		"algorithm", ix.params.Algorithm, "points", len(ids), "dim", dim,
		"build_id", ix.buildID, "elapsed", time.Since(start))
	return nil
}

func (ix *Index[T]) resetBackends() {
	ix.linearIdx, ix.forest, ix.kmeansT, ix.single, ix.hier, ix.lshIdx = nil, nil, nil, nil, nil, nil
}

// KNNSearch runs k-NN for every query, fanning out across sp.Cores
// goroutines. Search is legal only in Built or Built+Dirty state.
func (ix *Index[T]) KNNSearch(queries []Vector, k int, sp SearchParams) ([][]int, [][]float64, error) {
	start := time.Now()
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.checkSearchable(queries, k); err != nil {
		return nil, nil, err
	}

	// Each worker borrows a scratch result set from a call-scoped pool
	// rather than allocating one per query.
	rsPool := pool.New(func() *vector.KNNResultSet { return vector.NewKNNResultSet(k) })
	outIDs := make([][]int, len(queries))
	outDists := make([][]float64, len(queries))
	ix.parallelEach(len(queries), sp.Cores, func(i int) {
		rs := rsPool.Get()
		ix.knnOne(queries[i], k, sp, rs)
		outIDs[i], outDists[i] = rs.Results()
		rsPool.Put(rs)
	})
	ix.analytics.recordQuery(time.Since(start))
	logger().Debug("annidx: knn search", "queries", len(queries), "k", k, "checks", sp.Checks)
	return outIDs, outDists, nil
}

// RadiusSearch runs radius search for every query.
func (ix *Index[T]) RadiusSearch(queries []Vector, radius float64, sp SearchParams) ([][]int, [][]float64, error) {
	start := time.Now()
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.checkSearchable(queries, 1); err != nil {
		return nil, nil, err
	}

	rsPool := pool.New(func() *vector.RadiusResultSet { return vector.NewRadiusResultSet(radius) })
	outIDs := make([][]int, len(queries))
	outDists := make([][]float64, len(queries))
	ix.parallelEach(len(queries), sp.Cores, func(i int) {
		rs := rsPool.Get()
		ix.radiusOne(queries[i], sp, rs)
		ids, dists := rs.Results(sp.Sorted)
		if sp.MaxNeighbors > 0 && len(ids) > sp.MaxNeighbors {
			ids, dists = ids[:sp.MaxNeighbors], dists[:sp.MaxNeighbors]
		}
		outIDs[i], outDists[i] = ids, dists
		rsPool.Put(rs)
	})
	ix.analytics.recordQuery(time.Since(start))
	logger().Debug("annidx: radius search", "queries", len(queries), "radius", radius, "checks", sp.Checks)
	return outIDs, outDists, nil
}

func (ix *Index[T]) checkSearchable(queries []Vector, k int) error {
	if ix.state != stateBuilt && ix.state != stateDirty && ix.state != stateRebuilt {
		return errs.Wrap(errs.ErrInvalidInput, "annidx: search requires a built index, have state %d", ix.state)
	}
	if k <= 0 {
		return errs.Wrap(errs.ErrInvalidInput, "annidx: k must be positive")
	}
	dim := ix.dataset.Dim()
	for i, q := range queries {
		if len(q) != dim {
			return errs.Wrap(errs.ErrInvalidInput, "annidx: query %d has dim %d, want %d", i, len(q), dim)
		}
	}
	return nil
}

// parallelEach runs fn(i) for i in [0, n) across a worker pool sized by
// cores (0 = all cores, 1 = the caller's own goroutine, n>1 = a fixed
// pool).
func (ix *Index[T]) parallelEach(n, cores int, fn func(i int)) {
	if n == 0 {
		return
	}
	if cores == 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	workers := cores
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	wg.Wait()
}

func (ix *Index[T]) knnOne(query Vector, k int, sp SearchParams, rs *vector.KNNResultSet) {
	checks := sp.Checks
	switch ix.params.Algorithm {
	case AlgoLinear:
		ix.linearIdx.KNNSearch(query, ix.dataset.Len(), rs)
	case AlgoKDForest:
		ix.forest.KNNSearch(query, checks, sp.Eps, rs)
	case AlgoKMeans:
		ix.kmeansT.KNNSearch(query, checks, rs)
	case AlgoKDTreeSingle:
		ix.single.KNNSearch(query, k, rs)
	case AlgoHierarchical:
		ix.hier.KNNSearch(query, checks, rs)
	case AlgoLSH:
		ix.lshIdx.KNNSearch(query, rs)
	}
}

func (ix *Index[T]) radiusOne(query Vector, sp SearchParams, rs *vector.RadiusResultSet) {
	checks := sp.Checks
	switch ix.params.Algorithm {
	case AlgoLinear:
		ix.linearIdx.RadiusSearch(query, ix.dataset.Len(), rs)
	case AlgoKDForest:
		ix.forest.RadiusSearch(query, checks, sp.Eps, rs)
	case AlgoKMeans:
		ix.kmeansT.RadiusSearch(query, checks, rs)
	case AlgoKDTreeSingle:
		ix.single.RadiusSearch(query, rs.WorstDist(), rs)
	case AlgoHierarchical:
		ix.hier.RadiusSearch(query, checks, rs)
	case AlgoLSH:
		ix.lshIdx.RadiusSearch(query, rs)
	}
}

// AddPoints appends rows to the dataset and either inserts them
// incrementally or triggers a full rebuild, depending on rebuildThreshold.
// rebuildThreshold<=0 keeps the index's current threshold (default 2.0).
func (ix *Index[T]) AddPoints(rows []Vector, values []T, rebuildThreshold float64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if rebuildThreshold > 0 {
		ix.rebuildThreshold = rebuildThreshold
	}
	ids, err := ix.dataset.Append(rows, values)
	if err != nil {
		return err
	}

	if float64(ix.dataset.Overflow()) > ix.rebuildThreshold*float64(ix.dataset.BaseSize()) {
		return ix.buildLocked()
	}

	rowsFn := ix.rowsFn()
	switch ix.params.Algorithm {
	case AlgoKDForest:
		for _, id := range ids {
			ix.forest.Insert(id)
		}
	case AlgoKDTreeSingle:
		for _, id := range ids {
			row, _ := rowsFn(id)
			ix.single.Insert(id, row)
		}
	case AlgoLSH:
		for _, id := range ids {
			row, _ := rowsFn(id)
			ix.lshIdx.Insert(id, row)
		}
	default:
		// KMeans and Hierarchical have no incremental insert path; the new
		// points are already visible to a future linear/autotune rebuild
		// via the dataset, but stay invisible to search until one happens.
	}
	if ix.state == stateBuilt || ix.state == stateRebuilt {
		ix.state = stateDirty
	}
	ix.analytics.recordInsert(len(ids))
	return nil
}

// RemovePoint tombstones row i; a subsequent Build compacts it away.
func (ix *Index[T]) RemovePoint(i int) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ok := ix.dataset.MarkRemoved(i)
	if ok && (ix.state == stateBuilt || ix.state == stateRebuilt) {
		ix.state = stateDirty
	}
	if ok {
		ix.analytics.recordRemove()
	}
	return ok
}

// Size reports the logical row count, tombstones included.
func (ix *Index[T]) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dataset.Len()
}

// Veclen reports the shared vector dimensionality.
func (ix *Index[T]) Veclen() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dataset.Dim()
}

func (ix *Index[T]) String() string {
	return fmt.Sprintf("Index[%s](size=%d, dim=%d, state=%d)", ix.params.Algorithm, ix.dataset.Len(), ix.dataset.Dim(), ix.state)
}
