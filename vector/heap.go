package vector

import "math"

// heapEntry pairs a search-queue payload (a node reference, opaque to this
// package) with the lower-bound distance used to order it.
type heapEntry[P any] struct {
	dist    float64
	payload P
}

// MinHeap is a binary min-heap over (distance, payload), shared by every
// search implementation. Entries are stored by value rather than boxed,
// which Go's slice-of-struct already gives us.
type MinHeap[P any] struct {
	entries []heapEntry[P]
}

// NewMinHeap returns an empty heap with capacity preallocated.
func NewMinHeap[P any](capacity int) *MinHeap[P] {
	return &MinHeap[P]{entries: make([]heapEntry[P], 0, capacity)}
}

// Reset empties the heap without releasing its backing array, so a pooled
// heap can be reused across queries.
func (h *MinHeap[P]) Reset() { h.entries = h.entries[:0] }

// Len reports the number of queued entries.
func (h *MinHeap[P]) Len() int { return len(h.entries) }

// Push inserts (dist, payload), sifting up to restore the heap property.
func (h *MinHeap[P]) Push(dist float64, payload P) {
	h.entries = append(h.entries, heapEntry[P]{dist: dist, payload: payload})
	i := len(h.entries) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.entries[parent].dist <= h.entries[i].dist {
			break
		}
		h.entries[parent], h.entries[i] = h.entries[i], h.entries[parent]
		i = parent
	}
}

// Pop removes and returns the minimum-distance entry. ok is false on an
// empty heap.
func (h *MinHeap[P]) Pop() (dist float64, payload P, ok bool) {
	n := len(h.entries)
	if n == 0 {
		return 0, payload, false
	}
	top := h.entries[0]
	last := h.entries[n-1]
	h.entries = h.entries[:n-1]
	n--
	if n > 0 {
		h.entries[0] = last
		i := 0
		for {
			left, right := 2*i+1, 2*i+2
			smallest := i
			if left < n && h.entries[left].dist < h.entries[smallest].dist {
				smallest = left
			}
			if right < n && h.entries[right].dist < h.entries[smallest].dist {
				smallest = right
			}
			if smallest == i {
				break
			}
			h.entries[i], h.entries[smallest] = h.entries[smallest], h.entries[i]
			i = smallest
		}
	}
	return top.dist, top.payload, true
}

// PeekDist returns the minimum distance without popping, or +Inf if empty.
func (h *MinHeap[P]) PeekDist() float64 {
	if len(h.entries) == 0 {
		return math.Inf(1)
	}
	return h.entries[0].dist
}
