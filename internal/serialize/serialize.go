// Package serialize implements the on-disk index format: a fixed binary
// header followed by an LZ4-compressed structural payload. Pointers are
// never serialized, only relational indices — the payload is whatever
// arena/bucket structure the calling algorithm package hands in,
// gob-encoded then LZ4-block-compressed as a whole, grounded on the
// teacher's straightforward use of encoding/gob for its own peer-state
// snapshots and on github.com/pierrec/lz4/v4 for the block codec.
package serialize

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/Snider/annidx/errs"
	"github.com/pierrec/lz4/v4"
)

// Algorithm tags the index kind stored in a header.
type Algorithm uint32

const (
	AlgoLinear Algorithm = iota
	AlgoKDForest
	AlgoKMeans
	AlgoKDTreeSingle
	AlgoHierarchical
	AlgoLSH
)

// ElementType tags the stored vector element representation. annidx
// collapses every element type into Vector ([]float32, see DESIGN.md), so
// only one value is ever used, but the field is retained for on-disk
// forward compatibility.
type ElementType uint32

const ElementFloat32 ElementType = 0

const (
	magicText   = "ANNIDX-BINARY-INDEX-FMT"
	versionText = "1.0.0"

	// compressionNone and compressionLZ4 tag the payload codec; annidx
	// always writes LZ4.
	compressionNone = 0
	compressionLZ4  = 1
)

// Header is the fixed-layout prefix of a saved index.
type Header struct {
	Magic            [24]byte
	Version          [16]byte
	ElementType      uint32
	Algorithm        uint32
	Rows             uint64
	Cols             uint64
	Compression      uint64
	UncompressedSize uint64
}

func newHeader(algo Algorithm, rows, cols int, uncompressedSize int) Header {
	var h Header
	copy(h.Magic[:], magicText)
	copy(h.Version[:], versionText)
	h.ElementType = uint32(ElementFloat32)
	h.Algorithm = uint32(algo)
	h.Rows = uint64(rows)
	h.Cols = uint64(cols)
	h.Compression = compressionLZ4
	h.UncompressedSize = uint64(uncompressedSize)
	return h
}

// Write gob-encodes payload, LZ4-block-compresses it, and writes the
// header, a length-prefixed compressed block, and the block itself to w.
func Write(w io.Writer, algo Algorithm, rows, cols int, payload any) error {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload); err != nil {
		return errs.Wrap(errs.ErrSerialization, "serialize: encode payload: %v", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(raw.Len()))
	var c lz4.Compressor
	n, err := c.CompressBlock(raw.Bytes(), compressed)
	if err != nil {
		return errs.Wrap(errs.ErrSerialization, "serialize: lz4 compress: %v", err)
	}
	if n == 0 && raw.Len() > 0 {
		return errs.Wrap(errs.ErrSerialization, "serialize: lz4 produced no output for non-empty payload")
	}
	compressed = compressed[:n]

	h := newHeader(algo, rows, cols, raw.Len())
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return errs.Wrap(errs.ErrSerialization, "serialize: write header: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(compressed))); err != nil {
		return errs.Wrap(errs.ErrSerialization, "serialize: write block length: %v", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return errs.Wrap(errs.ErrSerialization, "serialize: write block: %v", err)
	}
	return nil
}

// PeekAlgorithm decodes just the header's Algorithm tag from the start of a
// saved stream, without touching the compressed payload. Callers that must
// pick a concrete Go type to decode into (Load, dispatching on algorithm)
// read the whole stream into memory first, call PeekAlgorithm, then hand the
// same bytes to Read.
func PeekAlgorithm(data []byte) (Algorithm, error) {
	var h Header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return 0, errs.Wrap(errs.ErrSerialization, "serialize: peek header: %v", err)
	}
	if string(bytes.TrimRight(h.Magic[:], "\x00")) != magicText {
		return 0, errs.Wrap(errs.ErrSerialization, "serialize: bad magic")
	}
	return Algorithm(h.Algorithm), nil
}

// Read parses a header, LZ4-decompresses the payload block, and gob-decodes
// it into payload (a pointer). Any structural failure, including a
// negative LZ4 decode return, maps to ErrSerialization.
func Read(r io.Reader, payload any) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: read header: %v", err)
	}
	if string(bytes.TrimRight(h.Magic[:], "\x00")) != magicText {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: bad magic")
	}

	var blockLen uint64
	if err := binary.Read(r, binary.LittleEndian, &blockLen); err != nil {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: read block length: %v", err)
	}
	compressed := make([]byte, blockLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: truncated stream: %v", err)
	}

	raw := make([]byte, h.UncompressedSize)
	n, err := lz4.UncompressBlock(compressed, raw)
	if err != nil || n < 0 {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: lz4 decompress: %v", err)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw[:n])).Decode(payload); err != nil {
		return h, errs.Wrap(errs.ErrSerialization, "serialize: decode payload: %v", err)
	}
	return h, nil
}
