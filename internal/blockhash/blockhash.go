// Package blockhash implements the strong hash used for block identity and
// whole-file integrity (spec §4.2): a BLAKE3 digest truncated to its first 16
// bytes. The same truncation is used for both roles, as required.
//
// This swaps the teacher engine's SHA-1 (pkg/synchronization/rsync/engine.go
// uses crypto/sha1 for its strongHasher) for BLAKE3, since the spec pins the
// algorithm explicitly. Unlike Engine.strongHash, per-block hashing does not
// reuse a hash.Hash: Of computes each digest in one call to blake3.Sum256.
// Hasher wraps a streaming hash.Hash for whole-file digests; it has no reset.
package blockhash

import (
	"hash"

	"lukechampine.com/blake3"
)

// Size is the length in bytes of a truncated strong hash.
const Size = 16

// Sum is a 16-byte truncated BLAKE3 digest.
type Sum [Size]byte

// IsZero reports whether s is the zero digest (used to distinguish an unset
// hash from a real one in a few call sites that zero-initialize a Sum).
func (s Sum) IsZero() bool {
	return s == Sum{}
}

// Of computes the strong hash of data directly.
func Of(data []byte) Sum {
	full := blake3.Sum256(data)
	var s Sum
	copy(s[:], full[:Size])
	return s
}

// Hasher is a reusable strong-hash accumulator, for computing the
// whole-file hash of a stream (base or reconstructed output) without holding
// the entire stream in memory at once.
type Hasher struct {
	h hash.Hash
}

// NewHasher creates a Hasher ready to accept writes.
func NewHasher() *Hasher {
	return &Hasher{h: blake3.New(32, nil)}
}

// Write implements io.Writer.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the truncated digest of everything written so far. It does not
// reset the Hasher.
func (h *Hasher) Sum() Sum {
	full := h.h.Sum(nil)
	var s Sum
	copy(s[:], full[:Size])
	return s
}
