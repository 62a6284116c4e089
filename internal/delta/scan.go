package delta

import (
	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/rollsum"
)

// buildWeakIndex maps each full-size block's weak hash to the ordered
// (ascending block index) list of blocks sharing it, per spec §4.3's block
// index contract. It is grounded on the weakToBlockHashes map built inside
// mutagen's Engine.Deltafy, pulled out into its own helper since scanBase
// performs the same lookup without the surrounding streaming machinery.
func buildWeakIndex(hashes []BlockHash) map[uint32][]int {
	index := make(map[uint32][]int, len(hashes))
	for i, h := range hashes {
		index[h.Weak] = append(index[h.Weak], i)
	}
	return index
}

// findMatch looks for a block among candidates (all sharing the given weak
// hash) whose content strongly matches window and whose destination slot is
// not yet covered by matched. Ties are broken by taking the smallest block
// index, per spec §4.4. Strong-hash computation is gated on there being at
// least one weak-hash candidate.
func findMatch(weak uint32, window []byte, hashes []BlockHash, index map[uint32][]int, matched []int64) (int, bool) {
	candidates, ok := index[weak]
	if !ok {
		return 0, false
	}

	var strong blockhash.Sum
	haveStrong := false
	best := -1
	for _, c := range candidates {
		if matched[c] != -1 {
			continue
		}
		if !haveStrong {
			strong = blockhash.Of(window)
			haveStrong = true
		}
		if hashes[c].Strong == strong && (best == -1 || c < best) {
			best = c
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// scanBase performs the single-pass rolling-hash scan of base described in
// spec §4.4. It returns, for each block of other (by index), the base
// offset it was matched against, or -1 if no match was found. Matches are
// block-aligned on the destination side, so a plain slice doubles as the
// "covered" interval set spec §9 calls for: matched[i] != -1 iff block i's
// destination slot is covered.
//
// The loop shape — an initial from-scratch hash, O(1) rolling while sliding
// by one byte, and a from-scratch reset after accepting a match and jumping
// past it — is grounded on Engine.Deltafy's buffered scan in
// pkg/synchronization/rsync/engine.go, adapted to operate over an in-memory
// base slice and to record matches by block index rather than transmitting
// coalesced operations immediately (that coalescing instead happens in
// Canonicalize, after the destination-ordered assembly pass in assemblePlan).
func scanBase(base []byte, sig *Signature) []int64 {
	matched := make([]int64, len(sig.Hashes))
	for i := range matched {
		matched[i] = -1
	}

	n := uint64(len(base))
	blockSize := sig.BlockSize
	if n < blockSize || len(sig.Hashes) == 0 {
		return matched
	}

	hasShortLast := sig.LastBlockSize != sig.BlockSize
	lastIndex := len(sig.Hashes) - 1
	fullHashes := sig.Hashes
	if hasShortLast {
		fullHashes = sig.Hashes[:lastIndex]
	}
	weakIndex := buildWeakIndex(fullHashes)

	roll := rollsum.New(blockSize)
	p := uint64(0)
	roll.Reset(base[:blockSize])

	for p+blockSize <= n {
		window := base[p : p+blockSize]
		if idx, ok := findMatch(roll.Sum(), window, fullHashes, weakIndex, matched); ok {
			matched[idx] = int64(p)
			p += blockSize
			if p+blockSize <= n {
				roll.Reset(base[p : p+blockSize])
			}
			continue
		}

		if p+blockSize < n {
			roll.Roll(base[p], base[p+blockSize])
		}
		p++
	}

	// Handle the tail: the spec permits (but does not require) matching
	// other's short final block against a same-length window at the very
	// end of base (see spec §9's Open Question). Patchy implements the
	// match since the teacher already tracks exactly this case
	// (haveShortLastBlock/shortLastBlock in Engine.Deltafy).
	if hasShortLast && n >= sig.LastBlockSize {
		tail := base[n-sig.LastBlockSize:]
		w := rollsum.Of(tail, blockSize)
		last := sig.Hashes[lastIndex]
		if w == last.Weak && blockhash.Of(tail) == last.Strong {
			matched[lastIndex] = int64(n - sig.LastBlockSize)
		}
	}

	return matched
}

// assemblePlan walks other's destination blocks in ascending order (spec
// §4.4, §9 "Deterministic output") and turns the per-block match results
// from scanBase into a raw (pre-canonicalization) Plan: a CopyBase command
// for each matched block, and a CopyLiteral command — with bytes appended to
// the literal pool — for each maximal run of unmatched blocks.
func assemblePlan(matched []int64, sig *Signature, other []byte) *Plan {
	plan := &Plan{}
	n := uint64(len(other))
	blockSize := sig.BlockSize

	var literalStart uint64
	flushLiteral := func(end uint64) {
		if end <= literalStart {
			return
		}
		litOffset := uint64(len(plan.Literals))
		plan.Literals = append(plan.Literals, other[literalStart:end]...)
		plan.Commands = append(plan.Commands, Command{
			Tag:       TagCopyLiteral,
			Offset:    litOffset,
			DstOffset: literalStart,
			Length:    uint32(end - literalStart),
		})
	}

	for i := range sig.Hashes {
		offset := uint64(i) * blockSize
		length := blockSize
		if i == len(sig.Hashes)-1 {
			length = sig.LastBlockSize
		}

		if matched[i] == -1 {
			continue
		}

		flushLiteral(offset)
		plan.Commands = append(plan.Commands, Command{
			Tag:       TagCopyBase,
			Offset:    uint64(matched[i]),
			DstOffset: offset,
			Length:    uint32(length),
		})
		literalStart = offset + length
	}
	flushLiteral(n)

	return plan
}

// Diff computes the canonical delta plan that reconstructs other from base,
// per spec §4.3-§4.5. blockLog fixes B_log for this invocation (spec does
// not call for automatic tuning — see SPEC_FULL.md's Non-goals).
func Diff(base, other []byte, blockLog uint8) (*Signature, *Plan, error) {
	sig, err := ComputeSignature(other, blockLog)
	if err != nil {
		return nil, nil, err
	}

	matched := scanBase(base, sig)
	raw := assemblePlan(matched, sig, other)
	plan := Canonicalize(raw)

	return sig, plan, nil
}
