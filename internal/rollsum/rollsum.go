// Package rollsum implements the rolling weak checksum used to fingerprint
// and scan for reusable blocks (spec §4.1). It is an adler-32 family
// checksum: two 16-bit sums mod 65521, packed into a 32-bit result, with an
// O(1) update that subtracts the outgoing byte and adds the incoming one.
//
// The algorithm is grounded on the weakHash/rollWeakHash pair in mutagen's
// rsync engine, generalized from private Engine methods into a standalone,
// reusable type so that it can be shared between the block-hashing pass (see
// internal/delta.ComputeSignature) and the scanning pass (internal/delta's
// scanBase) without requiring both to hold an *Engine.
package rollsum

// modulus is the weak hash modulus. It doesn't need to be prime for the
// checksum to function (many rsync implementations use 1<<16 directly), but
// using the largest prime below 2^16 reduces systematic collisions slightly.
const modulus = 65521

// Hash is a rolling checksum over a fixed-size window of bytes.
type Hash struct {
	blockSize uint64
	r1, r2    uint32
}

// New creates a Hash for windows of the given size. The size must remain
// constant for the lifetime of the Hash; rolling in a differently-sized
// window produces a meaningless result.
func New(blockSize uint64) *Hash {
	return &Hash{blockSize: blockSize}
}

// Reset recomputes the checksum from scratch over window, which must have
// length equal to the Hash's configured block size (or the final short
// block's length — see spec §4.4, which still computes the weak hash using
// the full block size in the length term even for a short final window).
func (h *Hash) Reset(window []byte) {
	var r1, r2 uint32
	for i, b := range window {
		r1 += uint32(b)
		r2 += (uint32(h.blockSize) - uint32(i)) * uint32(b)
	}
	h.r1 = r1 % modulus
	h.r2 = r2 % modulus
}

// Roll advances the window by one byte, removing out (the byte leaving the
// window at its start) and adding in (the byte entering at its end).
func (h *Hash) Roll(out, in byte) {
	h.r1 = (h.r1 - uint32(out) + uint32(in)) % modulus
	h.r2 = (h.r2 - uint32(h.blockSize)*uint32(out) + h.r1) % modulus
}

// Sum returns the current 32-bit checksum value.
func (h *Hash) Sum() uint32 {
	return h.r1 + modulus*h.r2
}

// Of computes the weak hash of window directly, as if by New(blockSize) then
// Reset(window). It's a convenience for one-shot computation (e.g. hashing
// each block of other while building a signature).
func Of(window []byte, blockSize uint64) uint32 {
	h := &Hash{blockSize: blockSize}
	h.Reset(window)
	return h.Sum()
}
