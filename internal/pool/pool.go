// Package pool provides a generic per-worker scratch pool, grounding spec
// §9's "pool heaps per worker to amortize allocation" on
// original_source/src/cpp/flann/util/free_size_heap.h: rather than
// reallocate a heap/buffer on every query, a worker borrows one from the
// pool, resets it, and returns it when the query completes.
package pool

import "sync"

// Resettable is anything a Pool can recycle: it must be able to clear its
// own state for reuse by the next borrower.
type Resettable interface {
	Reset()
}

// Pool lends out T values backed by a sync.Pool, resetting them before
// reuse. New is called to mint a fresh value when the pool is empty.
type Pool[T Resettable] struct {
	p sync.Pool
}

// New constructs a Pool whose New function is newFn.
func New[T Resettable](newFn func() T) *Pool[T] {
	return &Pool[T]{p: sync.Pool{New: func() any { return newFn() }}}
}

// Get borrows a value, resetting it first so prior contents never leak
// across borrowers.
func (p *Pool[T]) Get() T {
	v := p.p.Get().(T)
	v.Reset()
	return v
}

// Put returns a value to the pool for reuse.
func (p *Pool[T]) Put(v T) {
	p.p.Put(v)
}
