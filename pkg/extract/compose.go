package extract

import (
	"fmt"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// Optional maps Null to nil and anything else through c.
func Optional[T any](c Converter[T]) Converter[*T] {
	return func(v graph.Value) (*T, error) {
		if v.IsNull() {
			return nil, nil
		}
		out, err := c(v)
		if err != nil {
			return nil, err
		}
		return &out, nil
	}
}

// OrDefault maps Null to def and anything else through c.
func OrDefault[T any](c Converter[T], def T) Converter[T] {
	return func(v graph.Value) (T, error) {
		if v.IsNull() {
			return def, nil
		}
		return c(v)
	}
}

// List converts an Array element by element.
func List[T any](c Converter[T]) Converter[[]T] {
	return func(v graph.Value) ([]T, error) {
		if v.Kind() != graph.KindArray {
			return nil, mismatch("Array", v)
		}
		n := v.Len()
		out := make([]T, n)
		for i := 0; i < n; i++ {
			item, _ := v.Index(i)
			conv, err := c(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	}
}

// Pair is the result of Tuple2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of Tuple3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad is the result of Tuple4.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

func tupleItems(v graph.Value, n int) ([]graph.Value, error) {
	if v.Kind() != graph.KindArray {
		return nil, mismatch(fmt.Sprintf("Array of %d", n), v)
	}
	if v.Len() != n {
		return nil, &ConversionError{
			Expected: fmt.Sprintf("Array of %d", n),
			Actual:   graph.KindArray,
			Detail:   fmt.Sprintf("got %d elements", v.Len()),
		}
	}
	items, _ := v.AsArray()
	return items, nil
}

func tupleElem[T any](c Converter[T], items []graph.Value, i int, dst *T) error {
	out, err := c(items[i])
	if err != nil {
		return fmt.Errorf("tuple element %d: %w", i, err)
	}
	*dst = out
	return nil
}

// Tuple2 converts an Array of exactly two elements.
func Tuple2[A, B any](ca Converter[A], cb Converter[B]) Converter[Pair[A, B]] {
	return func(v graph.Value) (Pair[A, B], error) {
		var out Pair[A, B]
		items, err := tupleItems(v, 2)
		if err != nil {
			return out, err
		}
		if err := tupleElem(ca, items, 0, &out.First); err != nil {
			return Pair[A, B]{}, err
		}
		if err := tupleElem(cb, items, 1, &out.Second); err != nil {
			return Pair[A, B]{}, err
		}
		return out, nil
	}
}

// Tuple3 converts an Array of exactly three elements.
func Tuple3[A, B, C any](ca Converter[A], cb Converter[B], cc Converter[C]) Converter[Triple[A, B, C]] {
	return func(v graph.Value) (Triple[A, B, C], error) {
		var out Triple[A, B, C]
		items, err := tupleItems(v, 3)
		if err != nil {
			return out, err
		}
		if err := tupleElem(ca, items, 0, &out.First); err != nil {
			return Triple[A, B, C]{}, err
		}
		if err := tupleElem(cb, items, 1, &out.Second); err != nil {
			return Triple[A, B, C]{}, err
		}
		if err := tupleElem(cc, items, 2, &out.Third); err != nil {
			return Triple[A, B, C]{}, err
		}
		return out, nil
	}
}

// Tuple4 converts an Array of exactly four elements.
func Tuple4[A, B, C, D any](ca Converter[A], cb Converter[B], cc Converter[C], cd Converter[D]) Converter[Quad[A, B, C, D]] {
	return func(v graph.Value) (Quad[A, B, C, D], error) {
		var out Quad[A, B, C, D]
		items, err := tupleItems(v, 4)
		if err != nil {
			return out, err
		}
		if err := tupleElem(ca, items, 0, &out.First); err != nil {
			return Quad[A, B, C, D]{}, err
		}
		if err := tupleElem(cb, items, 1, &out.Second); err != nil {
			return Quad[A, B, C, D]{}, err
		}
		if err := tupleElem(cc, items, 2, &out.Third); err != nil {
			return Quad[A, B, C, D]{}, err
		}
		if err := tupleElem(cd, items, 3, &out.Fourth); err != nil {
			return Quad[A, B, C, D]{}, err
		}
		return out, nil
	}
}

// Unmarshaler is implemented by types that build themselves from a value.
type Unmarshaler interface {
	UnmarshalGraphValue(graph.Value) error
}

// Into returns a Converter for a type whose pointer implements Unmarshaler.
//
//	type Rider struct{ Name string }
//
//	func (r *Rider) UnmarshalGraphValue(v graph.Value) error {
//		n, err := extract.Node(v)
//		if err != nil {
//			return err
//		}
//		r.Name, err = extract.PropertyByName(n, "name", extract.String)
//		return err
//	}
//
//	riders, err := extract.Rows(result, extract.Row1(extract.Into[Rider]()))
func Into[T any, PT interface {
	*T
	Unmarshaler
}]() Converter[T] {
	return func(v graph.Value) (T, error) {
		var out T
		if err := PT(&out).UnmarshalGraphValue(v); err != nil {
			var zero T
			return zero, err
		}
		return out, nil
	}
}

// Row adapts c to a result row. The row is presented to c as an Array, so
// a two-column row pairs naturally with Tuple2.
func Row[T any](c Converter[T]) func(graph.Row) (T, error) {
	return func(r graph.Row) (T, error) {
		return c(graph.ArrayValue(r))
	}
}

// Row1 converts single-column rows by applying c to the only cell.
func Row1[T any](c Converter[T]) Converter[T] {
	return func(v graph.Value) (T, error) {
		items, err := tupleItems(v, 1)
		if err != nil {
			var zero T
			return zero, err
		}
		return c(items[0])
	}
}

// Rows converts every row of a result with c.
func Rows[T any](res *graph.QueryResult, c Converter[T]) ([]T, error) {
	if res == nil {
		return nil, nil
	}
	conv := Row(c)
	out := make([]T, len(res.Rows))
	for i, r := range res.Rows {
		v, err := conv(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Column converts every value of the named column with c.
func Column[T any](res *graph.QueryResult, name string, c Converter[T]) ([]T, error) {
	if res == nil {
		return nil, nil
	}
	vals, ok := res.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]T, len(vals))
	for i, v := range vals {
		conv, err := c(v)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", i, name, err)
		}
		out[i] = conv
	}
	return out, nil
}
