// Package delta implements the core rsync-style delta engine described in
// spec §4: block fingerprinting of other, the single-pass rolling-hash scan
// of base, canonicalization of the resulting plan, and deterministic replay
// on apply. It is grounded on mutagen's
// pkg/synchronization/rsync/engine.go (Engine.Signature, Engine.Deltafy,
// Engine.Patch), restructured per spec §4.4 to separate the base-side scan
// from a destination-ordered assembly pass (see scan.go).
package delta

import (
	"github.com/pkg/errors"

	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/rollsum"
)

const (
	// MinBlockLog is the smallest permitted B_log (spec §3).
	MinBlockLog = 6
	// MaxBlockLog is the largest permitted B_log (spec §3).
	MaxBlockLog = 24
	// DefaultBlockLog is used by the diff subcommand when -b is omitted
	// (spec §6).
	DefaultBlockLog = 11
)

// BlockHash is the per-block descriptor computed while fingerprinting other
// (spec §3): a weak, rollable checksum plus a strong confirmation hash.
type BlockHash struct {
	// Weak is the rolling checksum of the block.
	Weak uint32
	// Strong is the truncated BLAKE3 digest of the block.
	Strong blockhash.Sum
}

// Signature is the set of block fingerprints computed for other, sufficient
// to drive a scan of base (spec §3, §4.3).
type Signature struct {
	// BlockLog is B_log: block size is 1<<BlockLog.
	BlockLog uint8
	// BlockSize is 1<<BlockLog, cached for convenience.
	BlockSize uint64
	// LastBlockSize is the length of the final block, which may be shorter
	// than BlockSize. It equals BlockSize if other's length is an exact
	// multiple of the block size.
	LastBlockSize uint64
	// Hashes holds one BlockHash per block of other, in block order.
	Hashes []BlockHash
}

// isEmpty reports whether the signature represents an empty other.
func (s *Signature) isEmpty() bool {
	return len(s.Hashes) == 0
}

// EnsureValid verifies that the signature's invariants hold. It's intended
// for signatures arriving from an untrusted patch artifact; signatures
// computed locally by ComputeSignature satisfy it by construction.
func (s *Signature) EnsureValid() error {
	if s == nil {
		return errors.New("nil signature")
	}
	if s.BlockLog < MinBlockLog || s.BlockLog > MaxBlockLog {
		return errors.Errorf("block size log %d out of range [%d, %d]", s.BlockLog, MinBlockLog, MaxBlockLog)
	}
	if s.BlockSize != uint64(1)<<s.BlockLog {
		return errors.New("block size does not match block size log")
	}
	if s.isEmpty() {
		if s.LastBlockSize != 0 {
			return errors.New("empty signature with non-zero last block size")
		}
		return nil
	}
	if s.LastBlockSize == 0 || s.LastBlockSize > s.BlockSize {
		return errors.New("invalid last block size")
	}
	return nil
}

// ComputeSignature fingerprints other, per spec §4.3: for each block in
// order, compute its weak and strong hash. The final partial block is
// included. blockLog must be in [MinBlockLog, MaxBlockLog].
func ComputeSignature(other []byte, blockLog uint8) (*Signature, error) {
	if blockLog < MinBlockLog || blockLog > MaxBlockLog {
		return nil, errors.Errorf("block size log %d out of range [%d, %d]", blockLog, MinBlockLog, MaxBlockLog)
	}

	blockSize := uint64(1) << blockLog
	sig := &Signature{BlockLog: blockLog, BlockSize: blockSize}

	n := uint64(len(other))
	for offset := uint64(0); offset < n; offset += blockSize {
		end := offset + blockSize
		if end > n {
			end = n
		}
		block := other[offset:end]

		// Weak hashes always use the full block size in their length term,
		// even for the short final block, so that a later tail match in
		// scanBase computes the same value (see scan.go and spec §4.4).
		weak := rollsum.Of(block, blockSize)
		strong := blockhash.Of(block)

		sig.Hashes = append(sig.Hashes, BlockHash{Weak: weak, Strong: strong})
		sig.LastBlockSize = uint64(len(block))
	}

	return sig, nil
}
