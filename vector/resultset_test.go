package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKNNResultSetOrdering(t *testing.T) {
	rs := NewKNNResultSet(3)
	rs.Add(1, 5)
	rs.Add(2, 1)
	rs.Add(3, 3)
	rs.Add(4, 10) // worse than current worst once full, should be dropped
	ids, dists := rs.Results()
	require.Equal(t, []int{2, 3, 1}, ids)
	require.Equal(t, []float64{1, 3, 5}, dists)
}

func TestKNNResultSetTieBreaksOnLowerID(t *testing.T) {
	rs := NewKNNResultSet(2)
	rs.Add(5, 1)
	rs.Add(2, 1)
	ids, _ := rs.Results()
	require.Equal(t, []int{2, 5}, ids)
}

func TestKNNResultSetWorstDistBeforeFull(t *testing.T) {
	rs := NewKNNResultSet(3)
	require.Equal(t, math.Inf(1), rs.WorstDist())
	rs.Add(1, 2)
	require.False(t, rs.Full())
}

func TestKNNResultSetReset(t *testing.T) {
	rs := NewKNNResultSet(2)
	rs.Add(1, 1)
	rs.Reset()
	require.Equal(t, 0, rs.Len())
	require.True(t, math.IsInf(rs.WorstDist(), 1))
}

func TestRadiusResultSetFiltersByRadius(t *testing.T) {
	rs := NewRadiusResultSet(5)
	rs.Add(1, 3)
	rs.Add(2, 10)
	rs.Add(3, 5)
	ids, dists := rs.Results(true)
	require.Equal(t, []int{1, 3}, ids)
	require.Equal(t, []float64{3, 5}, dists)
}

func TestRadiusResultSetSortedVsUnsorted(t *testing.T) {
	rs := NewRadiusResultSet(100)
	rs.Add(3, 9)
	rs.Add(1, 1)
	rs.Add(2, 5)
	ids, _ := rs.Results(true)
	require.Equal(t, []int{1, 2, 3}, ids)
}
