// Package graph defines the typed value model for RedisGraph query results.
//
// Every cell of a result set decodes into exactly one Value. A Value is a small
// tagged union: the Kind says which variant it holds and the matching accessor
// (AsInt, AsNode, ...) returns the payload. Nothing is coerced implicitly; an
// Integer is never reported as a Double and a Null is never reported as an
// empty string.
//
// Example:
//
//	v := graph.IntValue(42)
//	if n, ok := v.AsInt(); ok {
//		fmt.Println(n + 1) // 43
//	}
//	_, ok := v.AsDouble() // ok == false
//
// All types in this package are immutable once constructed. Accessors that
// expose slices return copies so a caller cannot change a decoded result by
// accident.
//
// ELI12:
//
// A Value is like a labelled box. The label (Kind) tells you what is inside:
// a number, some text, a node of the graph... You read the label first and
// then take the thing out with the right hands.
package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindDouble
	KindString
	KindArray
	KindNode
	KindEdge
	KindPath
	KindMap
	KindPoint
)

var kindNames = [...]string{
	KindNull:    "Null",
	KindBool:    "Boolean",
	KindInteger: "Integer",
	KindDouble:  "Double",
	KindString:  "String",
	KindArray:   "Array",
	KindNode:    "Node",
	KindEdge:    "Edge",
	KindPath:    "Path",
	KindMap:     "Map",
	KindPoint:   "Point",
}

// String returns the variant name, e.g. "Integer".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one decoded query result value.
//
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64   // Integer payload, Boolean as 0/1
	f    float64 // Double payload
	s    string  // String payload
	ref  any     // []Value, Node, Edge, Path, Map or Point
}

// NullValue returns the Null value.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// IntValue wraps a 64-bit signed integer.
func IntValue(i int64) Value { return Value{kind: KindInteger, i: i} }

// DoubleValue wraps a 64-bit float.
func DoubleValue(f float64) Value { return Value{kind: KindDouble, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue wraps an ordered sequence of values. The slice is copied.
func ArrayValue(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, ref: cp}
}

// NodeValue wraps a node.
func NodeValue(n Node) Value { return Value{kind: KindNode, ref: n} }

// EdgeValue wraps an edge.
func EdgeValue(e Edge) Value { return Value{kind: KindEdge, ref: e} }

// PathValue wraps a path.
func PathValue(p Path) Value { return Value{kind: KindPath, ref: p} }

// MapValue wraps an ordered map.
func MapValue(m Map) Value { return Value{kind: KindMap, ref: m} }

// PointValue wraps a geographic point.
func PointValue(p Point) Value { return Value{kind: KindPoint, ref: p} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.i == 1, true
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// AsDouble returns the double payload. Integers are not widened here; use
// the extract package for numeric conversion rules.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.f, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns a copy of the array elements.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	items := v.ref.([]Value)
	cp := make([]Value, len(items))
	copy(cp, items)
	return cp, true
}

// Len returns the number of elements of an Array or entries of a Map, and 0
// for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.ref.([]Value))
	case KindMap:
		return v.ref.(Map).Len()
	}
	return 0
}

// Index returns the i-th element of an Array without copying the array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray {
		return Value{}, false
	}
	items := v.ref.([]Value)
	if i < 0 || i >= len(items) {
		return Value{}, false
	}
	return items[i], true
}

// AsNode returns the node payload.
func (v Value) AsNode() (Node, bool) {
	n, ok := v.ref.(Node)
	return n, ok && v.kind == KindNode
}

// AsEdge returns the edge payload.
func (v Value) AsEdge() (Edge, bool) {
	e, ok := v.ref.(Edge)
	return e, ok && v.kind == KindEdge
}

// AsPath returns the path payload.
func (v Value) AsPath() (Path, bool) {
	p, ok := v.ref.(Path)
	return p, ok && v.kind == KindPath
}

// AsMap returns the map payload.
func (v Value) AsMap() (Map, bool) {
	m, ok := v.ref.(Map)
	return m, ok && v.kind == KindMap
}

// AsPoint returns the point payload.
func (v Value) AsPoint() (Point, bool) {
	p, ok := v.ref.(Point)
	return p, ok && v.kind == KindPoint
}

// Interface converts v into plain Go data: nil, bool, int64, float64, string,
// []any, map[string]any, or a map describing a node, edge, path or point.
//
// Map ordering is lost in the conversion. It is meant for encoders
// (encoding/json, yaml) and debugging output, not for round-tripping.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.i == 1
	case KindInteger:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		items := v.ref.([]Value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	case KindNode:
		n := v.ref.(Node)
		return map[string]any{
			"id":         n.ID,
			"labels":     n.Labels(),
			"properties": n.Properties.Interface(),
		}
	case KindEdge:
		e := v.ref.(Edge)
		return map[string]any{
			"id":          e.ID,
			"type":        e.Type,
			"source":      e.Source,
			"destination": e.Destination,
			"properties":  e.Properties.Interface(),
		}
	case KindPath:
		p := v.ref.(Path)
		elems := p.Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		return v.ref.(Map).Interface()
	case KindPoint:
		p := v.ref.(Point)
		return map[string]any{"latitude": p.Latitude, "longitude": p.Longitude}
	}
	return nil
}

// String renders v in a Cypher-like notation for logs and CLI output.
func (v Value) String() string {
	var sb strings.Builder
	v.writeTo(&sb)
	return sb.String()
}

func (v Value) writeTo(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.i == 1))
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		sb.WriteString(formatDouble(v.f))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.ref.([]Value) {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.writeTo(sb)
		}
		sb.WriteByte(']')
	case KindNode:
		sb.WriteString(v.ref.(Node).String())
	case KindEdge:
		sb.WriteString(v.ref.(Edge).String())
	case KindPath:
		sb.WriteString(v.ref.(Path).String())
	case KindMap:
		v.ref.(Map).writeTo(sb)
	case KindPoint:
		p := v.ref.(Point)
		fmt.Fprintf(sb, "point({latitude: %s, longitude: %s})", formatDouble(p.Latitude), formatDouble(p.Longitude))
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
