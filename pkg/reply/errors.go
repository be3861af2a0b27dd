package reply

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDecode matches every error returned by this package:
//
//	if errors.Is(err, reply.ErrDecode) { ... }
var ErrDecode = errors.New("malformed graph reply")

// DecodeError describes where in a reply decoding stopped and why.
//
// Path holds the location from the outside in, for example
// ["row 2", "column 0", "node property 'age'"]. Err, when set, is the
// underlying cause (a strconv error, a redis.Error element, an
// *UnknownIDError, ...).
type DecodeError struct {
	Path   []string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("decode reply")
	if len(e.Path) > 0 {
		sb.WriteString(" at ")
		sb.WriteString(strings.Join(e.Path, ", "))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrDecode as a match.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Location returns the human-readable path, e.g. "row 2, column 0".
func (e *DecodeError) Location() string { return strings.Join(e.Path, ", ") }

// UnknownIDError is the cause of a DecodeError when a compact reply refers to
// a label, property key or relationship type id the Resolver does not know.
// Callers usually refresh their schema catalog and decode the same reply again.
type UnknownIDError struct {
	Kind IDKind
	ID   int64
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown %s id %d", e.Kind, e.ID)
}

// IsUnknownID reports whether err was caused by an unresolved schema id.
func IsUnknownID(err error) bool {
	var u *UnknownIDError
	return errors.As(err, &u)
}
