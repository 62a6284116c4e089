package operations

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/kayru/patchy/internal/atomicfile"
	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/container"
	"github.com/kayru/patchy/internal/delta"
	"github.com/kayru/patchy/internal/logging"
	"github.com/kayru/patchy/internal/perr"
)

// Patch reconstructs other from basePath and the artifact at patchPath, per
// spec §4.7. If outputPath is empty, decoding and verification still run but
// nothing is written, per spec §6.
func Patch(logger *logging.Logger, basePath, patchPath, outputPath string) error {
	patchFile, err := os.Open(patchPath)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to open patch file")
	}
	defer patchFile.Close()

	meta, err := container.Read(patchFile)
	if err != nil {
		return perr.Wrap(perr.PatchMalformed, err, "unable to parse patch file")
	}
	logger.Debugf("patch parsed: base=%d bytes, other=%d bytes, %d commands, %d literal bytes",
		meta.BaseSize, meta.OtherSize, len(meta.Commands), len(meta.Literals))

	baseFile, err := os.Open(basePath)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to open base file")
	}
	defer baseFile.Close()

	if err := verifyBase(baseFile, meta); err != nil {
		return err
	}
	logger.Debugln("base file verified against patch metadata")

	if outputPath == "" {
		if err := replay(baseFile, meta, io.Discard); err != nil {
			return err
		}
		logger.Println("verification succeeded; no output written (OUTPUT omitted)")
		return nil
	}

	out, err := atomicfile.Create(outputPath, outputPermissions)
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to create output file")
	}
	if err := replay(baseFile, meta, out); err != nil {
		out.Abort()
		return err
	}
	if err := out.Close(); err != nil {
		return perr.Wrap(perr.IoError, err, "unable to finalize output file")
	}

	logger.Printf("reconstructed %s output from %s base", humanize.Bytes(meta.OtherSize), humanize.Bytes(meta.BaseSize))

	return nil
}

// verifyBase checks the preconditions spec §4.7 requires before any output
// is produced: the base file's size and whole-file strong hash must match
// what the patch's metadata recorded at diff time.
func verifyBase(base *os.File, meta *container.Metadata) error {
	info, err := base.Stat()
	if err != nil {
		return perr.Wrap(perr.IoError, err, "unable to stat base file")
	}
	if uint64(info.Size()) != meta.BaseSize {
		return perr.New(perr.BaseMismatch, "base file size does not match patch metadata")
	}

	hasher := blockhash.NewHasher()
	if _, err := io.Copy(hasher, base); err != nil {
		return perr.Wrap(perr.IoError, err, "unable to hash base file")
	}
	if hasher.Sum() != meta.BaseHash {
		return perr.New(perr.BaseMismatch, "base file hash does not match patch metadata")
	}

	return nil
}

// replay executes the patch's command list against base, writing to dst
// while tracking the running strong hash of everything written, and checks
// the postconditions spec §4.7 requires: total bytes written equals
// other_size, and the hash of those bytes equals other_hash.
func replay(base *os.File, meta *container.Metadata, dst io.Writer) error {
	hasher := blockhash.NewHasher()
	tee := io.MultiWriter(dst, hasher)

	written, err := delta.Apply(base, meta.Literals, meta.Commands, tee)
	if err != nil {
		return perr.Wrap(perr.PatchMalformed, err, "unable to apply patch commands")
	}
	if written != meta.OtherSize {
		return perr.New(perr.OutputMismatch, "reconstructed output size does not match patch metadata")
	}
	if hasher.Sum() != meta.OtherHash {
		return perr.New(perr.OutputMismatch, "reconstructed output hash does not match patch metadata")
	}

	return nil
}
