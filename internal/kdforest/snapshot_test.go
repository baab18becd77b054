package kdforest

import (
	"math/rand"
	"testing"

	"github.com/Snider/annidx/vector"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	rows, ids := gridRows()
	f, err := Build(ids, 2, 4, vector.L2Distance{}, rowsFn(rows), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	snap := f.Snapshot()
	restored := Restore(snap, vector.L2Distance{}, rowsFn(rows))

	rsWant := vector.NewKNNResultSet(3)
	f.KNNSearch(vector.Vector{3, 3}, -1, 0, rsWant)
	wantIDs, _ := rsWant.Results()

	rsGot := vector.NewKNNResultSet(3)
	restored.KNNSearch(vector.Vector{3, 3}, -1, 0, rsGot)
	gotIDs, _ := rsGot.Results()

	require.ElementsMatch(t, wantIDs, gotIDs)
}
