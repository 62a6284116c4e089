// Package container implements Patchy's on-disk patch artifact: a small
// uncompressed header followed by a zstd-compressed body carrying whole-file
// hashes, the command vector, and the literal pool (spec §3, §6, §4.6).
//
// Framing is little-endian fixed-width fields, grounded on the
// Operation.Serialize/Unserialize style seen in kovidgoyal/kitty's
// tools/rsync/algorithm.go (explicit encoding/binary field-by-field
// marshaling rather than a generic codec). Compression replaces mutagen's
// pkg/compression (compress/flate, no level control) with
// github.com/DataDog/zstd, whose SetCompressionLevel/NewWriterLevel API
// takes a literal 1-22 zstd level matching spec §4.6/§6 exactly; klauspost's
// zstd package was considered but only exposes coarse EncoderLevel buckets,
// not the numeric levels the spec's CLI surface requires.
package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"

	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/delta"
)

const (
	// Magic identifies a Patchy patch artifact.
	Magic = "PTCY"
	// FormatVersion is incremented on any wire-incompatible change. Per
	// spec §1's Non-goals, cross-version compatibility is not promised
	// prior to a 1.0 release.
	FormatVersion uint16 = 1

	// DefaultLevel is the zstd compression level used when the caller
	// doesn't specify one (spec §6).
	DefaultLevel = 15
	// MinLevel and MaxLevel bound the accepted compression level (spec §6).
	MinLevel = 1
	MaxLevel = 22

	headerSize = 4 + 2 + 1 + 1 // magic + format_version + b_log + reserved
)

// Metadata is the fully decoded content of a patch artifact.
type Metadata struct {
	BaseSize  uint64
	BaseHash  blockhash.Sum
	OtherSize uint64
	OtherHash blockhash.Sum
	BlockLog  uint8
	Commands  []delta.Command
	Literals  []byte
}

// Write serializes meta to w: an uncompressed header followed by a
// zstd-compressed body, per spec §6's table. level must be in
// [MinLevel, MaxLevel].
func Write(w io.Writer, meta *Metadata, level int) error {
	if level < MinLevel || level > MaxLevel {
		return errors.Errorf("compression level %d out of range [%d, %d]", level, MinLevel, MaxLevel)
	}

	header := make([]byte, headerSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint16(header[4:6], FormatVersion)
	header[6] = meta.BlockLog
	header[7] = 0
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "unable to write header")
	}

	compressor := zstd.NewWriterLevel(w, level)
	if err := writeBody(compressor, meta); err != nil {
		compressor.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		return errors.Wrap(err, "unable to close compressor")
	}

	return nil
}

func writeBody(w io.Writer, meta *Metadata) error {
	buffered := bufio.NewWriter(w)

	var fixed [8]byte
	putU64 := func(v uint64) error {
		binary.LittleEndian.PutUint64(fixed[:], v)
		_, err := buffered.Write(fixed[:])
		return err
	}

	if err := putU64(meta.BaseSize); err != nil {
		return errors.Wrap(err, "unable to write base size")
	}
	if _, err := buffered.Write(meta.BaseHash[:]); err != nil {
		return errors.Wrap(err, "unable to write base hash")
	}
	if err := putU64(meta.OtherSize); err != nil {
		return errors.Wrap(err, "unable to write other size")
	}
	if _, err := buffered.Write(meta.OtherHash[:]); err != nil {
		return errors.Wrap(err, "unable to write other hash")
	}
	if err := putU64(uint64(len(meta.Commands))); err != nil {
		return errors.Wrap(err, "unable to write command count")
	}

	var command [21]byte
	for i := range meta.Commands {
		c := &meta.Commands[i]
		command[0] = byte(c.Tag)
		binary.LittleEndian.PutUint64(command[1:9], c.Offset)
		binary.LittleEndian.PutUint64(command[9:17], c.DstOffset)
		binary.LittleEndian.PutUint32(command[17:21], c.Length)
		if _, err := buffered.Write(command[:]); err != nil {
			return errors.Wrapf(err, "unable to write command %d", i)
		}
	}

	if err := putU64(uint64(len(meta.Literals))); err != nil {
		return errors.Wrap(err, "unable to write literal pool size")
	}
	if _, err := buffered.Write(meta.Literals); err != nil {
		return errors.Wrap(err, "unable to write literal pool")
	}

	return buffered.Flush()
}

// Read parses a patch artifact produced by Write. It validates that the
// command list tiles [0, OtherSize) exactly and that every command's source
// range is in bounds, per spec §4.6, returning PatchMalformed-classified
// errors (via the caller, which should wrap with perr.PatchMalformed) on any
// structural problem.
func Read(r io.Reader) (*Metadata, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}
	if string(header[0:4]) != Magic {
		return nil, errors.New("bad magic")
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	if version != FormatVersion {
		return nil, errors.Errorf("unsupported format version %d", version)
	}
	blockLog := header[6]
	if blockLog < delta.MinBlockLog || blockLog > delta.MaxBlockLog {
		return nil, errors.Errorf("block size log %d out of range", blockLog)
	}

	decompressor := zstd.NewReader(r)
	defer decompressor.Close()

	meta, err := readBody(decompressor, blockLog)
	if err != nil {
		return nil, err
	}

	if err := delta.ValidateTiling(meta.Commands, meta.OtherSize, meta.BaseSize, uint64(len(meta.Literals))); err != nil {
		return nil, errors.Wrap(err, "invalid command tiling")
	}

	return meta, nil
}

func readBody(r io.Reader, blockLog uint8) (*Metadata, error) {
	buffered := bufio.NewReader(r)
	meta := &Metadata{BlockLog: blockLog}

	var fixed [8]byte
	readU64 := func(what string) (uint64, error) {
		if _, err := io.ReadFull(buffered, fixed[:]); err != nil {
			return 0, errors.Wrapf(err, "unable to read %s", what)
		}
		return binary.LittleEndian.Uint64(fixed[:]), nil
	}

	baseSize, err := readU64("base size")
	if err != nil {
		return nil, err
	}
	meta.BaseSize = baseSize

	if _, err := io.ReadFull(buffered, meta.BaseHash[:]); err != nil {
		return nil, errors.Wrap(err, "unable to read base hash")
	}

	otherSize, err := readU64("other size")
	if err != nil {
		return nil, err
	}
	meta.OtherSize = otherSize

	if _, err := io.ReadFull(buffered, meta.OtherHash[:]); err != nil {
		return nil, errors.Wrap(err, "unable to read other hash")
	}

	commandCount, err := readU64("command count")
	if err != nil {
		return nil, err
	}
	// Guard against a corrupted/adversarial count causing an enormous
	// allocation before the (cheap) per-command reads would otherwise fail.
	if commandCount > otherSize+1 {
		return nil, errors.Errorf("implausible command count %d for other size %d", commandCount, otherSize)
	}

	meta.Commands = make([]delta.Command, commandCount)
	var command [21]byte
	for i := uint64(0); i < commandCount; i++ {
		if _, err := io.ReadFull(buffered, command[:]); err != nil {
			return nil, errors.Wrapf(err, "unable to read command %d", i)
		}
		meta.Commands[i] = delta.Command{
			Tag:       delta.CommandTag(command[0]),
			Offset:    binary.LittleEndian.Uint64(command[1:9]),
			DstOffset: binary.LittleEndian.Uint64(command[9:17]),
			Length:    binary.LittleEndian.Uint32(command[17:21]),
		}
	}

	literalSize, err := readU64("literal pool size")
	if err != nil {
		return nil, err
	}
	meta.Literals = make([]byte, literalSize)
	if _, err := io.ReadFull(buffered, meta.Literals); err != nil {
		return nil, errors.Wrap(err, "unable to read literal pool")
	}

	return meta, nil
}
