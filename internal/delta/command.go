package delta

import "github.com/pkg/errors"

// CommandTag identifies the variant of a Command (spec §3, §6).
type CommandTag uint8

const (
	// TagCopyBase copies bytes from base.
	TagCopyBase CommandTag = 0
	// TagCopyLiteral copies bytes from the plan's literal pool.
	TagCopyLiteral CommandTag = 1
)

// Command is a single entry in a plan: a contiguous run of destination bytes
// sourced either from base or from the literal pool (spec §3). Offset holds
// src_offset for a CopyBase command or lit_offset for a CopyLiteral command,
// matching the wire layout in spec §6 so that internal/container can
// serialize it without further translation.
type Command struct {
	Tag       CommandTag
	Offset    uint64
	DstOffset uint64
	Length    uint32
}

// EnsureValid verifies that a single command's fields are internally
// consistent.
func (c *Command) EnsureValid() error {
	if c == nil {
		return errors.New("nil command")
	}
	if c.Length == 0 {
		return errors.New("zero-length command")
	}
	if c.Tag != TagCopyBase && c.Tag != TagCopyLiteral {
		return errors.Errorf("unknown command tag %d", c.Tag)
	}
	return nil
}

// Plan is the full ordered command list plus the literal pool it references
// (spec §3). A canonical Plan (see Canonicalize) has no two adjacent
// commands that could be merged.
type Plan struct {
	Commands []Command
	Literals []byte
}

// ValidateTiling verifies the "Tiling" invariant from spec §8: destination
// intervals in commands must partition [0, otherSize) exactly, with commands
// appearing in ascending dst_offset order, and every source range must lie
// within bounds (baseSize for CopyBase, len(literals) for CopyLiteral).
func ValidateTiling(commands []Command, otherSize uint64, baseSize uint64, literalsSize uint64) error {
	var cursor uint64
	for i := range commands {
		c := &commands[i]
		if err := c.EnsureValid(); err != nil {
			return errors.Wrapf(err, "command %d", i)
		}
		if c.DstOffset != cursor {
			return errors.Errorf("command %d leaves a gap or overlap at destination offset %d (expected %d)", i, c.DstOffset, cursor)
		}
		length := uint64(c.Length)
		switch c.Tag {
		case TagCopyBase:
			if c.Offset > baseSize || length > baseSize-c.Offset {
				return errors.Errorf("command %d base range [%d, %d) out of bounds (base size %d)", i, c.Offset, c.Offset+length, baseSize)
			}
		case TagCopyLiteral:
			if c.Offset > literalsSize || length > literalsSize-c.Offset {
				return errors.Errorf("command %d literal range [%d, %d) out of bounds (literal pool size %d)", i, c.Offset, c.Offset+length, literalsSize)
			}
		}
		cursor += length
	}
	if cursor != otherSize {
		return errors.Errorf("commands cover [0, %d) but other size is %d", cursor, otherSize)
	}
	return nil
}
