package annidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParamsAppliesOptionsOverDefaults(t *testing.T) {
	p := NewParams(AlgoKDForest, WithTrees(16))
	require.Equal(t, 16, p.Trees)
}

func TestNewParamsFillsDefaultsWhenNoOptionsGiven(t *testing.T) {
	p := NewParams(AlgoKMeans)
	require.Equal(t, 32, p.Branching)
	require.Equal(t, 11, p.Iterations)
	require.Equal(t, 0.2, p.CBIndex)
	require.Equal(t, CenterRandom, p.CentersInit)
}

func TestWithLSHOptionsOverrideDefaults(t *testing.T) {
	p := NewParams(AlgoLSH, WithLSHTables(4), WithKeySize(8), WithMultiProbeLevel(0))
	require.Equal(t, 4, p.TableNumber)
	require.Equal(t, 8, p.KeySize)
	require.Equal(t, 0, p.MultiProbeLevel)
}

func TestDefaultSearchParamsAreConservative(t *testing.T) {
	sp := DefaultSearchParams()
	require.Equal(t, 32, sp.Checks)
	require.True(t, sp.Sorted)
	require.Equal(t, 1, sp.Cores)
}
