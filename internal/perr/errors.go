// Package perr defines the distinct, fatal error kinds that Patchy's diff
// and patch pathways can surface (spec §7). Each kind is a sentinel that
// errors.Is can match against after github.com/pkg/errors wrapping, which is
// how the rest of the engine annotates errors with context as they propagate.
package perr

import "github.com/pkg/errors"

// Kind identifies one of the fatal error categories a Patchy invocation can
// terminate with.
type Kind struct {
	name string
}

// String returns the human-readable name of the error kind.
func (k Kind) String() string {
	return k.name
}

// Error implements the error interface so a Kind can be used directly as the
// sentinel cause wrapped by github.com/pkg/errors.
func (k Kind) Error() string {
	return k.name
}

var (
	// BadOption indicates an out-of-range or missing CLI argument.
	BadOption = Kind{"bad option"}
	// IoError wraps any read/write/open failure.
	IoError = Kind{"I/O error"}
	// BaseMismatch indicates that the supplied base file does not match the
	// size or hash recorded in a patch's metadata.
	BaseMismatch = Kind{"base mismatch"}
	// OutputMismatch indicates that a reconstructed output's hash disagrees
	// with the other_hash recorded in a patch.
	OutputMismatch = Kind{"output mismatch"}
	// PatchMalformed indicates a structurally invalid patch artifact: bad
	// magic/version, truncated fields, a command list that doesn't tile the
	// output, out-of-range offsets, or a decompression failure.
	PatchMalformed = Kind{"patch malformed"}
	// DiffVerificationFailed indicates that diff's in-memory self-check of
	// the generated plan did not reproduce other exactly. This should never
	// occur and indicates an engine bug.
	DiffVerificationFailed = Kind{"diff verification failed"}
)

// Wrap annotates err with message and associates it with kind so that
// errors.Is(wrapped, kind) succeeds.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return errors.Wrap(kind, message)
	}
	return errors.Wrap(&kindedError{kind: kind, cause: err}, message)
}

// New creates a new error of the given kind with the given message.
func New(kind Kind, message string) error {
	return errors.Wrap(kind, message)
}

// kindedError associates an arbitrary cause with one of the declared kinds,
// so that the original error text survives while errors.Is(err, kind) still
// matches.
type kindedError struct {
	kind  Kind
	cause error
}

func (e *kindedError) Error() string {
	return e.cause.Error()
}

func (e *kindedError) Unwrap() error {
	return e.cause
}

func (e *kindedError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}
