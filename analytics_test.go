package annidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeDistributionStatsEmpty(t *testing.T) {
	stats := ComputeDistributionStats(nil)
	require.Equal(t, 0, stats.Count)
}

func TestComputeDistributionStatsBasic(t *testing.T) {
	stats := ComputeDistributionStats([]float64{1, 2, 3, 4, 5})
	require.Equal(t, 5, stats.Count)
	require.Equal(t, 1.0, stats.Min)
	require.Equal(t, 5.0, stats.Max)
	require.Equal(t, 3.0, stats.Mean)
	require.Equal(t, 3.0, stats.Median)
}

func TestUsedMemoryLockedScalesWithAlgorithmOverhead(t *testing.T) {
	ds := gridDataset(t)
	linear := New(ds, L2Distance{}, NewParams(AlgoLinear))
	require.NoError(t, linear.Build())

	forest := New(ds, L2Distance{}, NewParams(AlgoKDForest, WithTrees(8)))
	require.NoError(t, forest.Build())

	require.Greater(t, forest.usedMemoryLocked(), linear.usedMemoryLocked())
}

func TestAnalyticsRecordQueryTracksMinMax(t *testing.T) {
	a := newIndexAnalytics()
	a.recordQuery(10)
	a.recordQuery(5)
	a.recordQuery(20)

	require.Equal(t, int64(3), a.QueryCount.Load())
	require.Equal(t, int64(5), a.MinQueryTimeNs.Load())
	require.Equal(t, int64(20), a.MaxQueryTimeNs.Load())
}
