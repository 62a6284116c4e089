package delta

import (
	"io"

	"github.com/pkg/errors"
)

// Apply replays commands against base, writing the reconstructed stream to
// dst, per spec §4.7. Because commands are known to tile the destination
// range with no gaps or overlaps (see ValidateTiling, which callers must run
// on untrusted plans before calling Apply), output can be written as a pure
// forward stream: each command's DstOffset is checked against a running
// cursor, and any mismatch indicates corruption.
//
// This generalizes Engine.Patch/PatchBytes in mutagen's rsync engine (which
// seeks into base per operation and writes straight to an io.Writer) into a
// single loop driving both CopyBase (read from base via io.ReaderAt) and
// CopyLiteral (read from the in-memory literal pool) commands, since a
// single Patchy command already carries everything Engine.Patch needed two
// separate types (Signature context plus an Operation) to express.
func Apply(base io.ReaderAt, literals []byte, commands []Command, dst io.Writer) (uint64, error) {
	var cursor uint64
	var buffer []byte

	for i := range commands {
		c := &commands[i]
		if c.DstOffset != cursor {
			return cursor, errors.Errorf("command %d destination %d does not match running cursor %d", i, c.DstOffset, cursor)
		}

		length := int(c.Length)
		if cap(buffer) < length {
			buffer = make([]byte, length)
		} else {
			buffer = buffer[:length]
		}

		switch c.Tag {
		case TagCopyBase:
			if _, err := io.ReadFull(io.NewSectionReader(base, int64(c.Offset), int64(length)), buffer); err != nil {
				return cursor, errors.Wrapf(err, "command %d: unable to read base range", i)
			}
		case TagCopyLiteral:
			end := c.Offset + uint64(length)
			if end > uint64(len(literals)) {
				return cursor, errors.Errorf("command %d: literal range [%d, %d) exceeds pool size %d", i, c.Offset, end, len(literals))
			}
			copy(buffer, literals[c.Offset:end])
		default:
			return cursor, errors.Errorf("command %d: unknown tag %d", i, c.Tag)
		}

		if _, err := dst.Write(buffer); err != nil {
			return cursor, errors.Wrapf(err, "command %d: unable to write output", i)
		}
		cursor += uint64(length)
	}

	return cursor, nil
}
