package hsprot

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the taxonomy of a decode failure. Every error this
// module produces is exactly one of these kinds.
type Kind int

const (
	// FileError: the archive path is missing, unreadable, or an I/O error
	// occurred reading the archive's user data.
	FileError Kind = iota
	// ArchiveError: archive listing failed, or one of the internal files
	// is missing or unreadable.
	ArchiveError
	// ReaderError: the BitReader saw premature EOF, invalid UTF-8 in a
	// length-prefixed string, or an impossible bit-width request.
	ReaderError
	// StructureError: a grammar violation — an unknown TrackerValue tag,
	// an unknown game-event type code, an unknown attribute sub-variant
	// code, or an unexpected enum string.
	StructureError
	// IntegrityError: the random-seed verification in Init failed.
	IntegrityError
	// OutputError: serialization of the decoded Replay failed.
	OutputError
)

func (k Kind) String() string {
	switch k {
	case FileError:
		return "FileError"
	case ArchiveError:
		return "ArchiveError"
	case ReaderError:
		return "ReaderError"
	case StructureError:
		return "StructureError"
	case IntegrityError:
		return "IntegrityError"
	case OutputError:
		return "OutputError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type every decode failure surfaces as. It
// carries the taxonomy kind, a human-readable message, and (via
// github.com/pkg/errors) a captured stack trace for diagnostics.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func newError(kind Kind, msg string, cause error) error {
	return errors.WithStack(&Error{Kind: kind, Msg: msg, cause: cause})
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return newError(kind, fmt.Sprintf(format, args...), nil)
}

// WrapError builds an Error of the given kind wrapping an underlying cause.
func WrapError(kind Kind, msg string, cause error) error {
	return newError(kind, msg, cause)
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("hsprot: %s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("hsprot: %s: %s", e.Kind, e.Msg)
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}
