// Package convert normalizes Go values handed in as query parameters.
//
// Callers pass whatever Go types they have at hand: int, uint16, float32,
// []string, map[string]int... The query builder only wants to reason about a
// handful of shapes, so this package folds the numeric kinds into int64 and
// float64 and the slice and map kinds into []any and map[string]any.
//
// Unlike a general purpose converter, nothing here parses strings or crosses
// between integers and floats. An integer stays an integer so it is rendered
// as an integer literal, and a float stays a float.
//
// Key Functions:
//   - ToInt64: any Go integer kind to int64
//   - ToFloat64: float32/float64 to float64
//   - ToAnySlice: any slice or array to []any
//   - ToAnyMap: any string-keyed map to map[string]any
//
// Example:
//
//	if n, ok := convert.ToInt64(uint16(7)); ok {
//		// n == int64(7)
//	}
//	_, ok := convert.ToInt64(7.0) // ok == false, floats are not integers
//
// ELI12:
//
// Go has lots of different number boxes: small ones, big ones, ones that can't
// be negative. This package pours them all into one big box of the same shape
// so the code rendering a query only has to know about one box.
package convert

import "math"

// ToInt64 converts any Go integer kind to int64.
// Returns (value, true) on success, (0, false) for non-integers and for
// unsigned values larger than math.MaxInt64.
//
// Example:
//
//	n, ok := ToInt64(int8(-3))      // Returns (-3, true)
//	n, ok := ToInt64(uint64(1<<63)) // Returns (0, false), overflow
//	n, ok := ToInt64("3")           // Returns (0, false)
func ToInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int16:
		return int64(val), true
	case int8:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	}
	return 0, false
}

// IsInteger reports whether v is any Go integer kind, regardless of range.
func IsInteger(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// ToFloat64 converts float32 and float64 to float64.
// Integers are rejected; use ToInt64 for them.
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	}
	return 0, false
}
