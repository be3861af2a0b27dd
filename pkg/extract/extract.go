// Package extract converts decoded graph values into ordinary Go types.
//
// A Converter[T] is the "can be built from a graph.Value" capability of one
// target type. This package ships one Converter per supported type plus a few
// generic rules that combine them: Optional for nullable values, List for
// arrays, Tuple2..Tuple4 for fixed-size rows and arrays, and Into for user
// types that implement Unmarshaler.
//
// Conversions are strict. The only widening performed is Integer to a float
// target; a Double is never truncated into an integer, a Null is never turned
// into a zero value (wrap the converter in Optional instead) and a String is
// never parsed as a number. Every failure is a returned error, never a panic.
//
// Example:
//
//	rows, err := extract.Rows(result, extract.Tuple2(
//		extract.String,
//		extract.Optional(extract.Int64),
//	))
//	for _, r := range rows {
//		fmt.Println(r.First, r.Second)
//	}
//
// ELI12:
//
// The decoder hands you labelled boxes (graph.Value). A Converter is a helper
// that checks the label and, if it is the one you asked for, gives you what
// is inside as a normal Go value. Ask for a number and get text, and the
// helper says "that's not a number" instead of guessing.
package extract

import (
	"math"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// Converter builds a T from a graph value.
type Converter[T any] func(graph.Value) (T, error)

// Convert applies c to v. It exists so converters read well at call sites:
//
//	n, err := extract.Int64.Convert(v)
func (c Converter[T]) Convert(v graph.Value) (T, error) { return c(v) }

// Unit is the result of Ignore.
type Unit struct{}

var (
	// Value returns the value unchanged.
	Value Converter[graph.Value] = func(v graph.Value) (graph.Value, error) { return v, nil }

	// Ignore accepts any value and discards it.
	Ignore Converter[Unit] = func(graph.Value) (Unit, error) { return Unit{}, nil }

	// Bool accepts Boolean.
	Bool Converter[bool] = func(v graph.Value) (bool, error) {
		b, ok := v.AsBool()
		if !ok {
			return false, mismatch("Boolean", v)
		}
		return b, nil
	}

	// Int64 accepts Integer.
	Int64 Converter[int64] = func(v graph.Value) (int64, error) {
		n, ok := v.AsInt()
		if !ok {
			return 0, mismatch("Integer", v)
		}
		return n, nil
	}

	// Int accepts Integer values that fit the platform int.
	Int Converter[int] = func(v graph.Value) (int, error) {
		n, ok := v.AsInt()
		if !ok {
			return 0, mismatch("Integer", v)
		}
		if n < math.MinInt || n > math.MaxInt {
			return 0, outOfRange("int", v)
		}
		return int(n), nil
	}

	// Int32 accepts Integer values within the int32 range.
	Int32 Converter[int32] = func(v graph.Value) (int32, error) {
		n, ok := v.AsInt()
		if !ok {
			return 0, mismatch("Integer", v)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, outOfRange("int32", v)
		}
		return int32(n), nil
	}

	// Uint64 accepts non-negative Integer values.
	Uint64 Converter[uint64] = func(v graph.Value) (uint64, error) {
		n, ok := v.AsInt()
		if !ok {
			return 0, mismatch("Integer", v)
		}
		if n < 0 {
			return 0, outOfRange("uint64", v)
		}
		return uint64(n), nil
	}

	// Float64 accepts Double, and Integer widened to float64.
	Float64 Converter[float64] = func(v graph.Value) (float64, error) {
		if f, ok := v.AsDouble(); ok {
			return f, nil
		}
		if n, ok := v.AsInt(); ok {
			return float64(n), nil
		}
		return 0, mismatch("Double", v)
	}

	// Float32 accepts Double and Integer. Precision beyond float32 is lost;
	// finite values beyond its range are an error. Infinities and NaN pass
	// through.
	Float32 Converter[float32] = func(v graph.Value) (float32, error) {
		f, err := Float64(v)
		if err != nil {
			return 0, err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return 0, outOfRange("float32", v)
		}
		return float32(f), nil
	}

	// String accepts String.
	String Converter[string] = func(v graph.Value) (string, error) {
		s, ok := v.AsString()
		if !ok {
			return "", mismatch("String", v)
		}
		return s, nil
	}

	// Node accepts Node.
	Node Converter[graph.Node] = func(v graph.Value) (graph.Node, error) {
		n, ok := v.AsNode()
		if !ok {
			return graph.Node{}, mismatch("Node", v)
		}
		return n, nil
	}

	// Edge accepts Edge.
	Edge Converter[graph.Edge] = func(v graph.Value) (graph.Edge, error) {
		e, ok := v.AsEdge()
		if !ok {
			return graph.Edge{}, mismatch("Edge", v)
		}
		return e, nil
	}

	// Path accepts Path.
	Path Converter[graph.Path] = func(v graph.Value) (graph.Path, error) {
		p, ok := v.AsPath()
		if !ok {
			return graph.Path{}, mismatch("Path", v)
		}
		return p, nil
	}

	// Map accepts Map.
	Map Converter[graph.Map] = func(v graph.Value) (graph.Map, error) {
		m, ok := v.AsMap()
		if !ok {
			return graph.Map{}, mismatch("Map", v)
		}
		return m, nil
	}

	// Point accepts Point.
	Point Converter[graph.Point] = func(v graph.Value) (graph.Point, error) {
		p, ok := v.AsPoint()
		if !ok {
			return graph.Point{}, mismatch("Point", v)
		}
		return p, nil
	}
)
