// Package: annidx
//
// errors.go — sentinel errors for the annidx error taxonomy.
//
// Error policy:
//   - Only sentinel variables are exposed; callers branch with errors.Is.
//   - Sentinels are never wrapped with formatted strings at definition site.
//   - Call sites attach context with fmt.Errorf("%w", ...) via errorf below.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers shape mismatches, unknown enum values, and
	// missing required parameters detected before any work is attempted.
	ErrInvalidInput = errors.New("annidx: invalid input")

	// ErrUnsupportedMetric covers a metric/algorithm pairing that cannot
	// work together, e.g. LSH requested over non-bitstring data.
	ErrUnsupportedMetric = errors.New("annidx: unsupported metric for this index")

	// ErrSerialization covers bad magic, version mismatch, truncated
	// streams, and LZ4 decode failures during Save/Load.
	ErrSerialization = errors.New("annidx: serialization error")

	// ErrResourceExhausted covers allocation failure encountered while
	// building an index (arena growth, sample allocation, etc).
	ErrResourceExhausted = errors.New("annidx: resource exhausted")

	// ErrInternalInvariant indicates an assertion tripped that should be
	// unreachable in released code (e.g. a leaf with zero points).
	ErrInternalInvariant = errors.New("annidx: internal invariant violated")
)

// Wrap attaches call-site context to a sentinel, preserving errors.Is.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
