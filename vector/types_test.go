package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRows() []Vector {
	return []Vector{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}}
}

func TestNewDatasetValidation(t *testing.T) {
	_, err := NewDataset([]Vector{}, []int{})
	require.Error(t, err)

	_, err = NewDataset(sampleRows(), []int{1, 2})
	require.Error(t, err)

	_, err = NewDataset([]Vector{{1, 2}, {1}}, []int{1, 2})
	require.Error(t, err)
}

func TestDatasetAppendAndRemove(t *testing.T) {
	ds, err := NewDataset(sampleRows(), []int{0, 1, 2, 3, 4})
	require.NoError(t, err)

	ids, err := ds.Append([]Vector{{5, 5}}, []int{5})
	require.NoError(t, err)
	require.Equal(t, []int{5}, ids)
	require.Equal(t, 1, ds.Overflow())

	require.True(t, ds.MarkRemoved(0))
	require.False(t, ds.MarkRemoved(0)) // already removed
	require.True(t, ds.Removed(0))
}

func TestDatasetCompactRenumbers(t *testing.T) {
	ds, err := NewDataset(sampleRows(), []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	ds.MarkRemoved(1)
	ds.MarkRemoved(3)

	oldToNew := ds.Compact()
	require.Equal(t, -1, oldToNew[1])
	require.Equal(t, -1, oldToNew[3])
	require.Equal(t, 3, ds.Len())
	require.Equal(t, 0, ds.Overflow())
	require.Equal(t, 3, ds.BaseSize())

	var seen []int
	ds.EachActive(func(id int, _ Vector) { seen = append(seen, id) })
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestDatasetEachActiveSkipsTombstones(t *testing.T) {
	ds, err := NewDataset(sampleRows(), []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	ds.MarkRemoved(2)

	var seen []int
	ds.EachActive(func(id int, _ Vector) { seen = append(seen, id) })
	require.NotContains(t, seen, 2)
	require.Len(t, seen, 4)
}
