package annidx

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// IndexAnalytics tracks operational statistics for an Index: atomic
// counters plus best-effort min/max timing, safe for concurrent reads
// without touching Index.mu.
type IndexAnalytics struct {
	QueryCount   atomic.Int64
	InsertCount  atomic.Int64
	RemoveCount  atomic.Int64
	RebuildCount atomic.Int64

	TotalQueryTimeNs atomic.Int64
	LastQueryTimeNs  atomic.Int64
	MinQueryTimeNs   atomic.Int64
	MaxQueryTimeNs   atomic.Int64
	LastQueryAt      atomic.Int64

	CreatedAt time.Time
}

func newIndexAnalytics() *IndexAnalytics {
	a := &IndexAnalytics{CreatedAt: time.Now()}
	a.MinQueryTimeNs.Store(math.MaxInt64)
	return a
}

func (a *IndexAnalytics) recordQuery(d time.Duration) {
	ns := d.Nanoseconds()
	a.QueryCount.Add(1)
	a.TotalQueryTimeNs.Add(ns)
	a.LastQueryTimeNs.Store(ns)
	a.LastQueryAt.Store(time.Now().UnixNano())
	for {
		cur := a.MinQueryTimeNs.Load()
		if ns >= cur || a.MinQueryTimeNs.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := a.MaxQueryTimeNs.Load()
		if ns <= cur || a.MaxQueryTimeNs.CompareAndSwap(cur, ns) {
			break
		}
	}
}

func (a *IndexAnalytics) recordInsert(n int) { a.InsertCount.Add(int64(n)) }
func (a *IndexAnalytics) recordRemove()      { a.RemoveCount.Add(1) }
func (a *IndexAnalytics) recordRebuild()     { a.RebuildCount.Add(1) }

// AnalyticsSnapshot is an immutable, JSON-friendly point-in-time view.
type AnalyticsSnapshot struct {
	QueryCount      int64     `json:"queryCount"`
	InsertCount     int64     `json:"insertCount"`
	RemoveCount     int64     `json:"removeCount"`
	RebuildCount    int64     `json:"rebuildCount"`
	AvgQueryTimeNs  int64     `json:"avgQueryTimeNs"`
	MinQueryTimeNs  int64     `json:"minQueryTimeNs"`
	MaxQueryTimeNs  int64     `json:"maxQueryTimeNs"`
	LastQueryTimeNs int64     `json:"lastQueryTimeNs"`
	LastQueryAt     time.Time `json:"lastQueryAt"`
	CreatedAt       time.Time `json:"createdAt"`

	BuildID     string    `json:"buildId"`
	BuiltAt     time.Time `json:"builtAt"`
	Algorithm   string    `json:"algorithm"`
	Size        int       `json:"size"`
	Dim         int       `json:"dim"`
	UsedMemory  uint64    `json:"usedMemoryBytes"`
	UsedMemoryH string    `json:"usedMemory"`
}

// Snapshot returns a point-in-time view of ix's analytics, including a
// used-memory estimate.
func (ix *Index[T]) Snapshot() AnalyticsSnapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	a := ix.analytics
	avgNs := int64(0)
	qc := a.QueryCount.Load()
	if qc > 0 {
		avgNs = a.TotalQueryTimeNs.Load() / qc
	}
	minNs := a.MinQueryTimeNs.Load()
	if minNs == math.MaxInt64 {
		minNs = 0
	}
	mem := ix.usedMemoryLocked()
	return AnalyticsSnapshot{
		QueryCount:      qc,
		InsertCount:     a.InsertCount.Load(),
		RemoveCount:     a.RemoveCount.Load(),
		RebuildCount:    a.RebuildCount.Load(),
		AvgQueryTimeNs:  avgNs,
		MinQueryTimeNs:  minNs,
		MaxQueryTimeNs:  a.MaxQueryTimeNs.Load(),
		LastQueryTimeNs: a.LastQueryTimeNs.Load(),
		LastQueryAt:     time.Unix(0, a.LastQueryAt.Load()),
		CreatedAt:       a.CreatedAt,
		BuildID:         ix.buildID.String(),
		BuiltAt:         ix.builtAt,
		Algorithm:       string(ix.params.Algorithm),
		Size:            ix.dataset.Len(),
		Dim:             ix.dataset.Dim(),
		UsedMemory:      mem,
		UsedMemoryH:     humanize.Bytes(mem),
	}
}

// usedMemoryLocked estimates resident bytes: the dataset's row storage plus
// a per-algorithm overhead term. It is a rough accounting, not an
// instrumented allocator hook — every backend only stores point IDs and a
// handful of floats per node, so the dataset itself dominates.
func (ix *Index[T]) usedMemoryLocked() uint64 {
	const float32Size = 4
	rows := uint64(ix.dataset.Len())
	dim := uint64(ix.dataset.Dim())
	base := rows * dim * float32Size

	var overhead uint64
	switch ix.params.Algorithm {
	case AlgoKDForest:
		overhead = rows * uint64(ix.params.Trees) * 48
	case AlgoKMeans:
		overhead = rows * 32
	case AlgoHierarchical:
		overhead = rows * uint64(ix.params.Trees) * 40
	case AlgoLSH:
		overhead = rows * uint64(ix.params.TableNumber) * 16
	case AlgoKDTreeSingle:
		overhead = rows * 40
	default:
		overhead = 0
	}
	return base + overhead
}

// DistributionStats summarizes a sample of distances: used to eyeball
// whether a radius or checks budget is well calibrated for a dataset.
type DistributionStats struct {
	Count      int       `json:"count"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	StdDev     float64   `json:"stdDev"`
	P90        float64   `json:"p90"`
	P99        float64   `json:"p99"`
	ComputedAt time.Time `json:"computedAt"`
}

// ComputeDistributionStats computes summary statistics over a batch of
// result distances, e.g. the flattened output of a KNNSearch call.
func ComputeDistributionStats(distances []float64) DistributionStats {
	n := len(distances)
	if n == 0 {
		return DistributionStats{ComputedAt: time.Now()}
	}
	sorted := append([]float64(nil), distances...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, d := range sorted {
		sum += d
	}
	mean := sum / float64(n)

	sumSq := 0.0
	for _, d := range sorted {
		diff := d - mean
		sumSq += diff * diff
	}
	variance := sumSq / float64(n)

	return DistributionStats{
		Count:      n,
		Min:        sorted[0],
		Max:        sorted[n-1],
		Mean:       mean,
		Median:     percentile(sorted, 0.5),
		StdDev:     math.Sqrt(variance),
		P90:        percentile(sorted, 0.90),
		P99:        percentile(sorted, 0.99),
		ComputedAt: time.Now(),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p * float64(len(sorted)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
