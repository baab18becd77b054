package autotune

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Snider/annidx/vector"
	"github.com/stretchr/testify/require"
)

// clusteredRows builds two well-separated, well-populated clusters so any
// reasonable candidate (kd-forest or k-means, at a generous checks budget)
// clears a modest recall target.
func clusteredRows(n int) (map[int]vector.Vector, []int) {
	rows := make(map[int]vector.Vector, n)
	ids := make([]int, n)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		center := vector.Vector{0, 0}
		if i%2 == 1 {
			center = vector.Vector{50, 50}
		}
		rows[i] = vector.Vector{
			center[0] + float32(rng.NormFloat64()),
			center[1] + float32(rng.NormFloat64()),
		}
		ids[i] = i
	}
	return rows, ids
}

func TestTuneRejectsEmptyInput(t *testing.T) {
	_, err := Tune(nil, 2, vector.L2Distance{}, func(int) (vector.Vector, bool) { return nil, false }, Config{}, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}

func TestTuneFindsLowCostCandidateMeetingTarget(t *testing.T) {
	rows, ids := clusteredRows(120)
	rf := func(id int) (vector.Vector, bool) {
		v, ok := rows[id]
		return v, ok
	}

	cfg := Config{
		TargetPrecision: 0.5,
		BuildWeight:     0.01,
		MemoryWeight:    1e-9,
		SampleFraction:  1.0,
		K:               5,
	}
	res, err := Tune(ids, 2, vector.L2Distance{}, rf, cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Precision, cfg.TargetPrecision)
	require.Greater(t, res.Checks, 0)
	require.Contains(t, []Kind{KindKDForest, KindKMeans}, res.Kind)
}

func TestRecallComputesFractionOfTruthFound(t *testing.T) {
	require.Equal(t, 1.0, recall([]int{1, 2, 3}, []int{1, 2, 3}))
	require.Equal(t, 0.5, recall([]int{1, 9}, []int{1, 2}))
	require.Equal(t, 1.0, recall([]int{1}, nil))
}

func TestBinarySearchChecksFindsSmallestPassingBudget(t *testing.T) {
	measure := func(checks int) (float64, time.Duration) {
		if checks >= 10 {
			return 1.0, time.Microsecond
		}
		return 0.0, time.Microsecond
	}
	checks, precision, _, ok := binarySearchChecks(20, 0.9, measure)
	require.True(t, ok)
	require.Equal(t, 10, checks)
	require.Equal(t, 1.0, precision)
}

func TestBinarySearchChecksFallsBackWhenTargetUnreachable(t *testing.T) {
	measure := func(checks int) (float64, time.Duration) { return 0.1, time.Microsecond }
	checks, precision, _, ok := binarySearchChecks(10, 0.9, measure)
	require.True(t, ok)
	require.Equal(t, 10, checks)
	require.Equal(t, 0.1, precision)
}
