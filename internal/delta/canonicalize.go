package delta

import "math"

// Canonicalize merges adjacent commands of the same variant whose
// destination and source ranges both abut, per spec §4.5. It never
// rearranges the literal pool — only descriptors collapse. The result is
// stable: feeding the same raw plan through Canonicalize always yields a
// bit-identical canonical plan, and canonicalizing an already-canonical plan
// is a no-op (spec §8's Determinism and Idempotence properties).
//
// This generalizes the coalescing closures (sendBlock's coalescedStart/
// coalescedCount bookkeeping) in mutagen's Engine.Deltafy into an explicit
// second pass over a materialized command slice, since Patchy assembles the
// whole raw plan before canonicalizing rather than coalescing while
// streaming operations to a transmitter.
func Canonicalize(plan *Plan) *Plan {
	if len(plan.Commands) == 0 {
		return &Plan{Literals: plan.Literals}
	}

	merged := make([]Command, 0, len(plan.Commands))
	current := plan.Commands[0]

	for _, next := range plan.Commands[1:] {
		if mergeable(current, next) {
			current.Length = uint32(uint64(current.Length) + uint64(next.Length))
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return &Plan{Commands: merged, Literals: plan.Literals}
}

// mergeable reports whether b can be folded into a: same variant, abutting
// destination ranges, abutting source ranges in matching direction, and no
// u32 overflow in the merged length.
func mergeable(a, b Command) bool {
	if a.Tag != b.Tag {
		return false
	}
	if a.DstOffset+uint64(a.Length) != b.DstOffset {
		return false
	}
	if a.Offset+uint64(a.Length) != b.Offset {
		return false
	}
	return uint64(a.Length)+uint64(b.Length) <= math.MaxUint32
}
