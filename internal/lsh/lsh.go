// Package lsh implements the multi-table, multi-probe Hamming LSH index.
// Each table samples key_size bit positions without replacement from the
// vector's bit representation (vector.Vector treats any non-zero
// coordinate as bit 1); a point's key is those bits packed into a uint64,
// hashed with zeebo/xxh3 to spread keys across buckets.
package lsh

import (
	"math/rand"

	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
	"github.com/zeebo/xxh3"
)

// table is one hash table: a fixed set of sampled bit positions and the
// buckets points fall into under that key.
type table struct {
	bits    []int
	buckets map[uint64][]int
}

// LSH is a built multi-table Hamming index.
type LSH struct {
	tables          []table
	dim             int
	keySize         int
	multiProbeLevel int
	rows            func(id int) (vector.Vector, bool)
}

// Build samples tableNumber independent bit-position sets of size keySize
// from [0, dim) and buckets every id under each table.
func Build(ids []int, dim, tableNumber, keySize, multiProbeLevel int, rows func(id int) (vector.Vector, bool), rng *rand.Rand) (*LSH, error) {
	if len(ids) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "lsh: empty point set")
	}
	if keySize <= 0 || keySize > 64 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "lsh: key_size must be in (0, 64]")
	}
	if keySize > dim {
		keySize = dim
	}

	l := &LSH{dim: dim, keySize: keySize, multiProbeLevel: multiProbeLevel, rows: rows}
	l.tables = make([]table, tableNumber)
	for t := 0; t < tableNumber; t++ {
		l.tables[t] = table{
			bits:    samplePositions(dim, keySize, rng),
			buckets: make(map[uint64][]int),
		}
		for _, id := range ids {
			row, ok := rows(id)
			if !ok {
				continue
			}
			key := bucketKey(row, l.tables[t].bits)
			l.tables[t].buckets[key] = append(l.tables[t].buckets[key], id)
		}
	}
	return l, nil
}

// Insert appends id to the bucket each table's key maps it to.
func (l *LSH) Insert(id int, row vector.Vector) {
	for t := range l.tables {
		key := bucketKey(row, l.tables[t].bits)
		l.tables[t].buckets[key] = append(l.tables[t].buckets[key], id)
	}
}

// samplePositions draws k distinct bit positions from [0, dim) without
// replacement.
func samplePositions(dim, k int, rng *rand.Rand) []int {
	perm := rng.Perm(dim)
	return append([]int(nil), perm[:k]...)
}

// keyBits packs the sampled bit positions of row into an unhashed key,
// lowest-ranked bit first, treating any non-zero coordinate as 1.
func keyBits(row vector.Vector, bits []int) uint64 {
	var key uint64
	for i, b := range bits {
		if row[b] != 0 {
			key |= 1 << uint(i)
		}
	}
	return key
}

// bucketKey hashes the packed bit key with xxh3 to spread it across the
// bucket map's key space.
func bucketKey(row vector.Vector, bits []int) uint64 {
	return hashKey(keyBits(row, bits))
}

// hashKey hashes a raw packed bit key into a bucket map key.
func hashKey(raw uint64) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(raw >> (8 * i))
	}
	return xxh3.Hash(buf[:])
}
