package vector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func centersTestRows() ([]int, func(int) Vector) {
	data := map[int]Vector{
		0: {0, 0}, 1: {0.1, 0}, 2: {10, 10}, 3: {10.1, 10}, 4: {5, 5},
	}
	ids := []int{0, 1, 2, 3, 4}
	return ids, func(id int) Vector { return data[id] }
}

func TestChooseCentersReturnsDistinctIDs(t *testing.T) {
	ids, rows := centersTestRows()
	rng := rand.New(rand.NewSource(1))

	for _, init := range []CenterInit{CenterRandom, CenterGonzales, CenterKMeansPP} {
		got := ChooseCenters(init, ids, rows, L2Distance{}, 3, rng)
		require.Len(t, got, 3)
		seen := map[int]bool{}
		for _, id := range got {
			require.False(t, seen[id], "duplicate center %d for init %s", id, init)
			seen[id] = true
		}
	}
}

func TestChooseCentersNRequestExceedsPool(t *testing.T) {
	ids, rows := centersTestRows()
	rng := rand.New(rand.NewSource(1))
	got := ChooseCenters(CenterRandom, ids, rows, L2Distance{}, 10, rng)
	require.ElementsMatch(t, ids, got)
}

func TestChooseGonzalesSpreadsOutClusters(t *testing.T) {
	ids, rows := centersTestRows()
	rng := rand.New(rand.NewSource(7))
	got := ChooseCenters(CenterGonzales, ids, rows, L2Distance{}, 2, rng)
	require.Len(t, got, 2)
	// Gonzales is farthest-first: the two chosen points should not both be
	// in the same tight cluster ({0,1} or {2,3}).
	inA := map[int]bool{0: true, 1: true}
	inB := map[int]bool{2: true, 3: true}
	require.False(t, inA[got[0]] && inA[got[1]])
	require.False(t, inB[got[0]] && inB[got[1]])
}

func TestChooseCentersDegenerateInput(t *testing.T) {
	ids := []int{0, 1, 2, 3}
	rows := func(int) Vector { return Vector{1, 1} }
	rng := rand.New(rand.NewSource(1))
	got := ChooseCenters(CenterKMeansPP, ids, rows, L2Distance{}, 3, rng)
	require.Len(t, got, 3)
}
