package vector

import (
	"math"
	"math/rand"
)

// CenterInit selects which chooser Index builds a KMeans/Hierarchical index
// with.
type CenterInit string

const (
	CenterRandom   CenterInit = "random"
	CenterGonzales CenterInit = "gonzales"
	CenterKMeansPP CenterInit = "kmeanspp"
)

// maxChooserAttempts bounds the weighted-sampling loop in chooseKMeansPP:
// if no draw lands on an unused point within this many tries, or the input
// is degenerate (all points identical, so every weight is zero), it falls
// back to the next unused point by index. chooseGonzales uses the same
// next-unused fallback without a retry loop; chooseRandom draws from a
// permutation and needs neither.
const maxChooserAttempts = 100

// ChooseCenters picks n representative row-indices out of ids (a candidate
// pool, typically a node's point set) under metric m, using init's strategy.
// It always returns min(n, len(ids)) distinct indices.
func ChooseCenters(init CenterInit, ids []int, rows func(int) Vector, m Metric, n int, rng *rand.Rand) []int {
	if n >= len(ids) {
		return append([]int(nil), ids...)
	}
	switch init {
	case CenterGonzales:
		return chooseGonzales(ids, rows, m, n, rng)
	case CenterKMeansPP:
		return chooseKMeansPP(ids, rows, m, n, rng)
	default:
		return chooseRandom(ids, n, rng)
	}
}

// chooseRandom draws n distinct indices from ids uniformly at random.
func chooseRandom(ids []int, n int, rng *rand.Rand) []int {
	perm := rng.Perm(len(ids))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = ids[perm[i]]
	}
	return out
}

// chooseGonzales implements farthest-first traversal: start from a random
// point, repeatedly add the point farthest (by min-distance) from the
// centers chosen so far.
func chooseGonzales(ids []int, rows func(int) Vector, m Metric, n int, rng *rand.Rand) []int {
	used := make(map[int]bool, n)
	out := make([]int, 0, n)

	first := ids[rng.Intn(len(ids))]
	out = append(out, first)
	used[first] = true

	minDist := make(map[int]float64, len(ids))
	for _, id := range ids {
		if id == first {
			continue
		}
		minDist[id] = m.Distance(rows(id), rows(first), math.Inf(1))
	}

	for len(out) < n {
		best, bestDist := -1, -1.0
		for _, id := range ids {
			if used[id] {
				continue
			}
			if d := minDist[id]; d > bestDist {
				best, bestDist = id, d
			}
		}
		if best < 0 {
			best = firstUnused(ids, used)
			if best < 0 {
				break
			}
		}
		out = append(out, best)
		used[best] = true
		for _, id := range ids {
			if used[id] {
				continue
			}
			d := m.Distance(rows(id), rows(best), minDist[id])
			if d < minDist[id] {
				minDist[id] = d
			}
		}
	}
	return out
}

// chooseKMeansPP implements k-means++ seeding: each subsequent center is
// drawn with probability proportional to its squared distance to the
// nearest already-chosen center.
func chooseKMeansPP(ids []int, rows func(int) Vector, m Metric, n int, rng *rand.Rand) []int {
	used := make(map[int]bool, n)
	out := make([]int, 0, n)

	first := ids[rng.Intn(len(ids))]
	out = append(out, first)
	used[first] = true

	minDist := make(map[int]float64, len(ids))
	for _, id := range ids {
		if id != first {
			minDist[id] = m.Distance(rows(id), rows(first), math.Inf(1))
		}
	}

	for len(out) < n {
		var total float64
		for _, id := range ids {
			if !used[id] {
				total += minDist[id]
			}
		}
		next := -1
		if total > 0 {
			for attempt := 0; attempt < maxChooserAttempts && next < 0; attempt++ {
				target := rng.Float64() * total
				var acc float64
				for _, id := range ids {
					if used[id] {
						continue
					}
					acc += minDist[id]
					if acc >= target {
						next = id
						break
					}
				}
			}
		}
		if next < 0 {
			next = firstUnused(ids, used)
			if next < 0 {
				break
			}
		}
		out = append(out, next)
		used[next] = true
		for _, id := range ids {
			if used[id] {
				continue
			}
			d := m.Distance(rows(id), rows(next), minDist[id])
			if d < minDist[id] {
				minDist[id] = d
			}
		}
	}
	return out
}

func firstUnused(ids []int, used map[int]bool) int {
	for _, id := range ids {
		if !used[id] {
			return id
		}
	}
	return -1
}
