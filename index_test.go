package annidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func gridDataset(t *testing.T) *Dataset[string] {
	t.Helper()
	rows := []Vector{{1, 1}, {3, 3}, {3, 4}, {7, 7}, {7, 6}}
	values := []string{"a", "b", "c", "d", "e"}
	ds, err := NewDataset(rows, values)
	require.NoError(t, err)
	return ds
}

func TestBuildThenKNNSearchOnGridFixture(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoKDForest, WithTrees(2)))
	require.NoError(t, ix.Build())

	ids, _, err := ix.KNNSearch([]Vector{{3, 3}}, 3, SearchParams{Checks: -1, Cores: 1})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.ElementsMatch(t, []int{0, 1, 2}, ids[0])
}

func TestSearchBeforeBuildFails(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	_, _, err := ix.KNNSearch([]Vector{{3, 3}}, 1, DefaultSearchParams())
	require.Error(t, err)
}

func TestBuildRejectsEmptyDataset(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	for i := 0; i < 5; i++ {
		ix.RemovePoint(i)
	}
	require.Error(t, ix.Build())
}

func TestAddPointsTriggersRebuildAboveThreshold(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	require.NoError(t, ix.Build())

	err := ix.AddPoints([]Vector{{8, 8}, {9, 9}, {10, 10}, {11, 11}, {12, 12}, {13, 13}}, []string{"f", "g", "h", "i", "j", "k"}, 1.0)
	require.NoError(t, err)

	ids, _, err := ix.KNNSearch([]Vector{{13, 13}}, 1, DefaultSearchParams())
	require.NoError(t, err)
	require.Equal(t, []int{10}, ids[0])
}

func TestAddPointsBelowThresholdStaysDirtyForKDForest(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoKDForest, WithTrees(2)))
	require.NoError(t, ix.Build())

	err := ix.AddPoints([]Vector{{3, 3.1}}, []string{"new"}, 10.0)
	require.NoError(t, err)
	require.Equal(t, stateDirty, ix.state)

	ids, _, err := ix.KNNSearch([]Vector{{3, 3.1}}, 1, SearchParams{Checks: -1, Cores: 1})
	require.NoError(t, err)
	require.Equal(t, []int{5}, ids[0])
}

func TestRemovePointTombstonesAndExcludesFromSearchAfterRebuild(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	require.NoError(t, ix.Build())

	require.True(t, ix.RemovePoint(1))
	require.False(t, ix.RemovePoint(1))
	require.NoError(t, ix.Build())

	ids, _, err := ix.KNNSearch([]Vector{{3, 3}}, 1, DefaultSearchParams())
	require.NoError(t, err)
	require.NotEqual(t, "b", ix.dataset.Value(ids[0][0]))
}

func TestKNNSearchRejectsDimensionMismatch(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	require.NoError(t, ix.Build())

	_, _, err := ix.KNNSearch([]Vector{{1, 2, 3}}, 1, DefaultSearchParams())
	require.Error(t, err)
}

func TestSnapshotReportsSizeDimAndAlgorithm(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoKDForest, WithTrees(2)))
	require.NoError(t, ix.Build())

	_, _, err := ix.KNNSearch([]Vector{{3, 3}}, 2, SearchParams{Checks: -1, Cores: 1})
	require.NoError(t, err)

	snap := ix.Snapshot()
	require.Equal(t, 5, snap.Size)
	require.Equal(t, 2, snap.Dim)
	require.Equal(t, string(AlgoKDForest), snap.Algorithm)
	require.Equal(t, int64(1), snap.QueryCount)
	require.Greater(t, snap.UsedMemory, uint64(0))
}

func TestStringReportsAlgorithmSizeDimState(t *testing.T) {
	ds := gridDataset(t)
	ix := New(ds, L2Distance{}, NewParams(AlgoLinear))
	require.Contains(t, ix.String(), "size=5")
}
