package linear

import (
	"testing"

	"github.com/Snider/annidx/vector"
	"github.com/stretchr/testify/require"
)

func gridRowsFn() func(int) (vector.Vector, bool) {
	rows := map[int]vector.Vector{
		0: {1, 1}, 1: {3, 3}, 2: {3, 4}, 3: {7, 7}, 4: {7, 6},
	}
	return func(id int) (vector.Vector, bool) {
		v, ok := rows[id]
		return v, ok
	}
}

func TestKNNSearchScansAllRows(t *testing.T) {
	ix := Build(5, 2, vector.L2Distance{}, gridRowsFn())

	rs := vector.NewKNNResultSet(3)
	ix.KNNSearch(vector.Vector{3, 3}, 5, rs)
	got, _ := rs.Results()
	require.ElementsMatch(t, []int{1, 2, 0}, got)
}

func TestRadiusSearchScansAllRows(t *testing.T) {
	ix := Build(5, 2, vector.L2Distance{}, gridRowsFn())

	rs := vector.NewRadiusResultSet(2)
	ix.RadiusSearch(vector.Vector{3, 3}, 5, rs)
	got, _ := rs.Results(true)
	require.ElementsMatch(t, []int{1, 2}, got)
}

func TestKNNSearchSkipsTombstonedRows(t *testing.T) {
	rows := map[int]vector.Vector{0: {1, 1}, 1: {3, 3}, 2: {3, 4}}
	active := map[int]bool{0: true, 1: false, 2: true}
	rf := func(id int) (vector.Vector, bool) {
		v, ok := rows[id]
		return v, ok && active[id]
	}
	ix := Build(3, 2, vector.L2Distance{}, rf)

	rs := vector.NewKNNResultSet(1)
	ix.KNNSearch(vector.Vector{3, 3}, 3, rs)
	got, _ := rs.Results()
	require.NotContains(t, got, 1)
}
