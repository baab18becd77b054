package vector

import (
	"github.com/Snider/annidx/errs"
	"github.com/bits-and-blooms/bitset"
)

// Vector is a dense row in the dataset. All indices built over a Dataset
// share one dimensionality; LSH treats a non-zero coordinate as bit 1.
type Vector []float32

// Point pairs a stable dataset row with an arbitrary caller payload: ID +
// Vec + Value, with ID being the dataset's own 0-based row index rather
// than a caller-supplied string.
type Point[T any] struct {
	ID    int
	Vec   Vector
	Value T
}

// Dataset owns the row storage and the removal bitmap. Index i stays stable
// under Add/Remove; removed slots are never reused until a full Rebuild
// compacts them out.
type Dataset[T any] struct {
	rows    []Vector
	values  []T
	dim     int
	removed *bitset.BitSet

	// overflow tracks rows appended since the last Rebuild, for the
	// rebuild_threshold comparison in Index.AddPoints.
	baseSize int
	overflow int
}

// NewDataset builds a Dataset from rows/values of equal length and uniform
// dimensionality. Returns ErrInvalidInput on an empty set, zero dimension, or
// a dimension mismatch between rows.
func NewDataset[T any](rows []Vector, values []T) (*Dataset[T], error) {
	if len(rows) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: empty point set")
	}
	if len(values) != len(rows) {
		return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: %d rows but %d values", len(rows), len(values))
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: zero-dimensional points")
	}
	for i, r := range rows {
		if len(r) != dim {
			return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: row %d has dim %d, want %d", i, len(r), dim)
		}
	}
	d := &Dataset[T]{
		rows:     append([]Vector(nil), rows...),
		values:   append([]T(nil), values...),
		dim:      dim,
		removed:  bitset.New(uint(len(rows))),
		baseSize: len(rows),
	}
	return d, nil
}

// Dim returns the shared dimensionality of every row.
func (d *Dataset[T]) Dim() int { return d.dim }

// Len returns the logical size, including tombstoned rows.
func (d *Dataset[T]) Len() int { return len(d.rows) }

// Removed reports whether row i has been tombstoned.
func (d *Dataset[T]) Removed(i int) bool { return d.removed.Test(uint(i)) }

// Row returns the vector stored at row i, regardless of tombstone state.
func (d *Dataset[T]) Row(i int) Vector { return d.rows[i] }

// Value returns the payload stored at row i.
func (d *Dataset[T]) Value(i int) T { return d.values[i] }

// Append adds rows starting at the current Len and returns their new IDs.
// It does not reset the overflow counter; callers compare Overflow against
// rebuild_threshold × baseSize to decide whether to trigger Index.Build again.
func (d *Dataset[T]) Append(rows []Vector, values []T) ([]int, error) {
	if len(rows) != len(values) {
		return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: %d rows but %d values", len(rows), len(values))
	}
	ids := make([]int, len(rows))
	for i, r := range rows {
		if len(r) != d.dim {
			return nil, errs.Wrap(errs.ErrInvalidInput, "dataset: row has dim %d, want %d", len(r), d.dim)
		}
		id := len(d.rows)
		d.rows = append(d.rows, r)
		d.values = append(d.values, values[i])
		ids[i] = id
	}
	d.removed.Extend(uint(len(d.rows) - 1))
	d.overflow += len(rows)
	return ids, nil
}

// MarkRemoved tombstones row i. Returns false if i is out of range or
// already removed.
func (d *Dataset[T]) MarkRemoved(i int) bool {
	if i < 0 || i >= len(d.rows) || d.removed.Test(uint(i)) {
		return false
	}
	d.removed.Set(uint(i))
	return true
}

// Overflow returns the count of rows appended since the last Compact.
func (d *Dataset[T]) Overflow() int { return d.overflow }

// BaseSize returns the dataset size as of the last Compact.
func (d *Dataset[T]) BaseSize() int { return d.baseSize }

// Compact discards tombstoned rows, renumbering the survivors from 0, and
// resets the overflow counter. It returns the old->new ID mapping (-1 for
// rows that were dropped), for callers that must relabel external state.
func (d *Dataset[T]) Compact() []int {
	oldToNew := make([]int, len(d.rows))
	newRows := make([]Vector, 0, len(d.rows))
	newValues := make([]T, 0, len(d.rows))
	for i := range d.rows {
		if d.removed.Test(uint(i)) {
			oldToNew[i] = -1
			continue
		}
		oldToNew[i] = len(newRows)
		newRows = append(newRows, d.rows[i])
		newValues = append(newValues, d.values[i])
	}
	d.rows = newRows
	d.values = newValues
	d.removed = bitset.New(uint(len(newRows)))
	d.baseSize = len(newRows)
	d.overflow = 0
	return oldToNew
}

// EachActive calls fn for every non-tombstoned row, in ascending ID order.
func (d *Dataset[T]) EachActive(fn func(id int, row Vector)) {
	for i, r := range d.rows {
		if !d.removed.Test(uint(i)) {
			fn(i, r)
		}
	}
}
