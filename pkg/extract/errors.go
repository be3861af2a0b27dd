package extract

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// Sentinel errors for errors.Is checks.
var (
	ErrConversion       = errors.New("conversion failed")
	ErrPropertyNotFound = errors.New("property not found")
	ErrColumnNotFound   = errors.New("column not found")
)

// ConversionError reports a value whose kind does not fit the requested
// target type.
type ConversionError struct {
	Expected string     // target description, e.g. "Integer" or "Array of 2"
	Actual   graph.Kind // kind that was found
	Detail   string     // optional extra context
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s to %s", e.Actual, e.Expected)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Is reports ErrConversion as a match.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func mismatch(expected string, v graph.Value) error {
	return &ConversionError{Expected: expected, Actual: v.Kind()}
}

func outOfRange(target string, v graph.Value) error {
	return &ConversionError{Expected: target, Actual: v.Kind(), Detail: v.String() + " out of range"}
}

// PropertyNotFoundError reports a missing property index or name.
type PropertyNotFoundError struct {
	Index  int    // -1 when looked up by name
	Name   string // empty when looked up by index
	ByName bool   // the lookup was by Name, which may itself be empty
	Len    int    // number of properties the holder has
}

func (e *PropertyNotFoundError) Error() string {
	if e.ByName {
		return "property not found: " + strconv.Quote(e.Name)
	}
	return fmt.Sprintf("property index %d out of range [0,%d)", e.Index, e.Len)
}

// Is reports ErrPropertyNotFound as a match.
func (e *PropertyNotFoundError) Is(target error) bool { return target == ErrPropertyNotFound }
