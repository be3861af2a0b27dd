package query

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrMissingParameter     = errors.New("missing query parameter")
	ErrUnsupportedParameter = errors.New("unsupported query parameter")
	ErrInvalidLiteral       = errors.New("invalid literal")
)

// MissingParameterError reports a $name placeholder with no value in the
// supplied parameter map.
type MissingParameterError struct {
	Name   string
	Offset int // byte offset of the '$' in the template
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing query parameter $%s at offset %d", e.Name, e.Offset)
}

// Is reports ErrMissingParameter as a match.
func (e *MissingParameterError) Is(target error) bool { return target == ErrMissingParameter }

// UnsupportedParameterError reports a value that has no literal form.
type UnsupportedParameterError struct {
	Name   string // parameter name, empty when Literal is called directly
	Type   string // Go type or graph kind of the offending value
	Reason string
}

func (e *UnsupportedParameterError) Error() string {
	msg := "unsupported query parameter"
	if e.Name != "" {
		msg += " $" + e.Name
	}
	msg += " of type " + e.Type
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports ErrUnsupportedParameter as a match.
func (e *UnsupportedParameterError) Is(target error) bool { return target == ErrUnsupportedParameter }

// SyntaxError reports where ParseLiteral gave up.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid literal at offset %d: %s", e.Offset, e.Msg)
}

// Is reports ErrInvalidLiteral as a match.
func (e *SyntaxError) Is(target error) bool { return target == ErrInvalidLiteral }
