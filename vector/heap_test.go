package vector

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinHeapPopsAscending(t *testing.T) {
	h := NewMinHeap[int](4)
	dists := []float64{5, 1, 3, 2, 4}
	for i, d := range dists {
		h.Push(d, i)
	}
	require.Equal(t, 5, h.Len())

	var got []float64
	for h.Len() > 0 {
		d, _, ok := h.Pop()
		require.True(t, ok)
		got = append(got, d)
	}
	want := append([]float64(nil), dists...)
	sort.Float64s(want)
	require.Equal(t, want, got)
}

func TestMinHeapPopEmpty(t *testing.T) {
	h := NewMinHeap[int](0)
	_, _, ok := h.Pop()
	require.False(t, ok)
	require.True(t, math.IsInf(h.PeekDist(), 1))
}

func TestMinHeapReset(t *testing.T) {
	h := NewMinHeap[int](2)
	h.Push(1, 1)
	h.Reset()
	require.Equal(t, 0, h.Len())
}

func TestMinHeapRandomOrderingFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewMinHeap[int](0)
	n := 200
	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		dists[i] = rng.Float64() * 1000
		h.Push(dists[i], i)
	}
	sort.Float64s(dists)
	for i := 0; i < n; i++ {
		d, _, ok := h.Pop()
		require.True(t, ok)
		require.InDelta(t, dists[i], d, 1e-9)
	}
}
