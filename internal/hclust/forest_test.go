package hclust

import (
	"math/rand"
	"testing"

	"github.com/Snider/annidx/vector"
	"github.com/stretchr/testify/require"
)

func gridRows() (map[int]vector.Vector, []int) {
	rows := map[int]vector.Vector{
		0: {1, 1}, 1: {3, 3}, 2: {3, 4}, 3: {7, 7}, 4: {7, 6},
	}
	return rows, []int{0, 1, 2, 3, 4}
}

func rowsFn(rows map[int]vector.Vector) func(int) (vector.Vector, bool) {
	return func(id int) (vector.Vector, bool) {
		v, ok := rows[id]
		return v, ok
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	_, err := Build(nil, 2, 4, 2, vector.CenterGonzales, vector.L2Distance{}, func(int) (vector.Vector, bool) { return nil, false }, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}

func TestKNNSearchFindsExactNeighborsUnderFullChecks(t *testing.T) {
	rows, ids := gridRows()
	f, err := Build(ids, 2, 4, 2, vector.CenterGonzales, vector.L2Distance{}, rowsFn(rows), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	rs := vector.NewKNNResultSet(3)
	f.KNNSearch(vector.Vector{3, 3}, -1, rs)
	got, _ := rs.Results()
	require.ElementsMatch(t, []int{1, 2, 0}, got)
}

func TestWorksWithNonAdditiveMetric(t *testing.T) {
	rows := map[int]vector.Vector{0: {1, 0, 1}, 1: {1, 1, 1}, 2: {0, 0, 0}, 3: {0, 0, 1}}
	ids := []int{0, 1, 2, 3}
	f, err := Build(ids, 3, 2, 2, vector.CenterGonzales, vector.HammingDistance{}, rowsFn(rows), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	rs := vector.NewKNNResultSet(1)
	f.KNNSearch(vector.Vector{1, 0, 1}, -1, rs)
	got, _ := rs.Results()
	require.Equal(t, []int{0}, got)
}

func TestRadiusSearchRespectsRadius(t *testing.T) {
	rows, ids := gridRows()
	f, err := Build(ids, 2, 4, 2, vector.CenterGonzales, vector.L2Distance{}, rowsFn(rows), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	rs := vector.NewRadiusResultSet(2)
	f.RadiusSearch(vector.Vector{3, 3}, -1, rs)
	got, _ := rs.Results(true)
	require.ElementsMatch(t, []int{1, 2}, got)
}
