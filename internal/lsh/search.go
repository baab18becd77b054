package lsh

import (
	"github.com/Snider/annidx/vector"
	"golang.org/x/exp/maps"
)

// KNNSearch probes every table's exact bucket plus its multi-probe
// neighborhood, unions the candidates, and ranks them by full Hamming
// distance.
func (l *LSH) KNNSearch(query vector.Vector, rs *vector.KNNResultSet) {
	l.search(query, rs)
}

// RadiusSearch is the radius-result-set counterpart of KNNSearch.
func (l *LSH) RadiusSearch(query vector.Vector, rs *vector.RadiusResultSet) {
	l.search(query, rs)
}

func (l *LSH) search(query vector.Vector, rs vector.ResultSet) {
	candidates := make(map[int]struct{})
	for t := range l.tables {
		bits := l.tables[t].bits
		queryKey := keyBits(query, bits)
		for _, key := range probeKeys(queryKey, len(bits), l.multiProbeLevel) {
			for _, id := range l.tables[t].buckets[hashKey(key)] {
				candidates[id] = struct{}{}
			}
		}
	}

	hamming := vector.HammingDistance{}
	for _, id := range maps.Keys(candidates) {
		row, active := l.rows(id)
		if !active {
			continue
		}
		d := hamming.Distance(query, row, rs.WorstDist())
		rs.Add(id, d)
	}
}

// probeKeys returns queryKey plus every key reachable by flipping
// combinations of up to level of the ceil(keyLen/2) lowest-ranked bit
// positions.
func probeKeys(queryKey uint64, keyLen, level int) []uint64 {
	keys := []uint64{queryKey}
	if level <= 0 {
		return keys
	}
	half := (keyLen + 1) / 2
	positions := make([]int, half)
	for i := range positions {
		positions[i] = i
	}

	var combos func(start, depth int, mask uint64)
	combos = func(start, depth int, mask uint64) {
		if depth == 0 {
			return
		}
		for i := start; i < len(positions); i++ {
			flipped := mask | (1 << uint(positions[i]))
			keys = append(keys, queryKey^flipped)
			combos(i+1, depth-1, flipped)
		}
	}
	combos(0, level, 0)
	return keys
}
