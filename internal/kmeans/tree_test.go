package kmeans

import (
	"math/rand"
	"testing"

	"github.com/Snider/annidx/vector"
	"github.com/stretchr/testify/require"
)

func twoClusterRows() (map[int]vector.Vector, []int) {
	rows := map[int]vector.Vector{
		0: {0, 0}, 1: {0.1, 0}, 2: {0, 0.1}, 3: {0.1, 0.1},
		4: {10, 10}, 5: {10.1, 10}, 6: {10, 10.1}, 7: {10.1, 10.1},
	}
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7}
	return rows, ids
}

func kmeansRowsFn(rows map[int]vector.Vector) func(int) (vector.Vector, bool) {
	return func(id int) (vector.Vector, bool) {
		v, ok := rows[id]
		return v, ok
	}
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(nil, 2, 2, 10, 0.2, vector.CenterRandom, vector.L2Distance{}, func(int) (vector.Vector, bool) { return nil, false }, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}

func TestKNNSearchFindsNearestCluster(t *testing.T) {
	rows, ids := twoClusterRows()
	tr, err := Build(ids, 2, 2, 10, 0.2, vector.CenterGonzales, vector.L2Distance{}, kmeansRowsFn(rows), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	rs := vector.NewKNNResultSet(4)
	tr.KNNSearch(vector.Vector{0, 0}, -1, rs)
	got, _ := rs.Results()
	require.Subset(t, []int{0, 1, 2, 3}, got)
	require.Len(t, got, 4)
}

func TestRadiusSearchReturnsOnlyNearbyCluster(t *testing.T) {
	rows, ids := twoClusterRows()
	tr, err := Build(ids, 2, 2, 10, 0.2, vector.CenterGonzales, vector.L2Distance{}, kmeansRowsFn(rows), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	rs := vector.NewRadiusResultSet(1)
	tr.RadiusSearch(vector.Vector{0, 0}, -1, rs)
	got, _ := rs.Results(true)
	for _, id := range got {
		require.Less(t, id, 4)
	}
}
