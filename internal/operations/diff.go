// Package operations wires together internal/delta, internal/container, and
// internal/atomicfile into the two end-to-end pathways named in spec §6:
// diff (base, other -> patch) and patch (base, patch -> output). It owns the
// file I/O, hashing, and verification contracts from spec §4.6/§4.7/§7 that
// the lower-level packages deliberately stay agnostic of.
package operations

import (
	"bytes"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/kayru/patchy/internal/atomicfile"
	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/container"
	"github.com/kayru/patchy/internal/delta"
	"github.com/kayru/patchy/internal/logging"
	"github.com/kayru/patchy/internal/perr"
)

// outputPermissions is the mode used for patch and reconstructed-output
// files.
const outputPermissions = 0o644

// Diff computes the delta that reconstructs otherPath from basePath, per
// spec §4.3-§4.6. If patchPath is empty, the full pipeline still runs
// (including in-memory verification) but nothing is written, per spec §6.
func Diff(logger *logging.Logger, basePath, otherPath, patchPath string, blockLog uint8, level int) error {
	base, err := os.ReadFile(basePath)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to read base file")
	}
	other, err := os.ReadFile(otherPath)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to read other file")
	}

	logger.Debugf("computing delta: base=%d bytes, other=%d bytes, block_log=%d", len(base), len(other), blockLog)

	sig, plan, err := delta.Diff(base, other, blockLog)
	if err != nil {
		return perr.Wrap(perr.BadOption, err, "unable to compute delta")
	}
	logger.Debugf("plan: %d blocks fingerprinted, %d commands, %d literal bytes", len(sig.Hashes), len(plan.Commands), len(plan.Literals))

	baseHash := blockhash.Of(base)
	otherHash := blockhash.Of(other)

	if err := verifyPlan(base, other, otherHash, plan); err != nil {
		return err
	}
	logger.Debugln("in-memory verification succeeded")

	if patchPath == "" {
		logger.Println("verification succeeded; no patch written (PATCH omitted)")
		return nil
	}

	meta := &container.Metadata{
		BaseSize:  uint64(len(base)),
		BaseHash:  baseHash,
		OtherSize: uint64(len(other)),
		OtherHash: otherHash,
		BlockLog:  blockLog,
		Commands:  plan.Commands,
		Literals:  plan.Literals,
	}

	out, err := atomicfile.Create(patchPath, outputPermissions)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to create patch file")
	}
	if err := container.Write(out, meta, level); err != nil {
		out.Abort()
		return perr.Wrap(perr.IoError, err, "unable to write patch container")
	}
	if err := out.Close(); err != nil {
		return perr.Wrap(perr.IoError, err, "unable to finalize patch file")
	}

	literalBytes := uint64(len(plan.Literals))
	var patchSize uint64
	if info, statErr := os.Stat(patchPath); statErr == nil {
		patchSize = uint64(info.Size())
	}
	logger.Printf("wrote patch: %s base, %s other, %s literal, %s on disk",
		humanize.Bytes(uint64(len(base))), humanize.Bytes(uint64(len(other))),
		humanize.Bytes(literalBytes), humanize.Bytes(patchSize))

	return nil
}

// verifyPlan performs the in-memory apply-and-compare that spec §4.6/§8
// requires of diff before it can trust the plan it just generated
// (DiffVerificationFailed should never trigger; it exists to catch an
// engine bug rather than a data problem).
func verifyPlan(base, other []byte, otherHash blockhash.Sum, plan *delta.Plan) error {
	var reconstructed bytes.Buffer
	if _, err := delta.Apply(bytes.NewReader(base), plan.Literals, plan.Commands, &reconstructed); err != nil {
		return perr.Wrap(perr.DiffVerificationFailed, err, "in-memory apply failed")
	}
	if !bytes.Equal(reconstructed.Bytes(), other) {
		return perr.New(perr.DiffVerificationFailed, "reconstructed output does not match other byte-for-byte")
	}
	if blockhash.Of(reconstructed.Bytes()) != otherHash {
		return perr.New(perr.DiffVerificationFailed, "reconstructed output hash does not match")
	}
	return nil
}
