package query

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/orneryd/redisgraphio/pkg/convert"
	"github.com/orneryd/redisgraphio/pkg/graph"
	"github.com/orneryd/redisgraphio/pkg/pool"
)

// KeyValue is one entry of an OrderedMap.
type KeyValue struct {
	Key   string
	Value interface{}
}

// OrderedMap is a map parameter that keeps its entry order when rendered.
// Plain Go maps are rendered with their keys sorted.
type OrderedMap []KeyValue

// Literal renders v as a query-language literal.
//
// # Type Conversions
//
//	nil, nil pointer     → null
//	true                 → true
//	42, uint8(7)         → 42, 7
//	3.0, float32(0.5)    → 3.0, 0.5
//	1e21                 → 1e21
//	"it's"               → 'it\'s'
//	[]int{1, 2}          → [1, 2]
//	map[string]any{...}  → {a: 1, b: 'x'} (sorted keys)
//	OrderedMap{...}      → {b: 'x', a: 1} (given order)
//	graph.Value          → the literal of its scalar, array, map or point payload
//	type Team string     → as its underlying string, bool, integer or float kind
//
// Strings are single-quoted. Single quote, backslash, newline, carriage return
// and tab are backslash-escaped; every other byte is copied unchanged, so no
// value can terminate the literal early.
//
// Non-finite floats, unsigned integers above math.MaxInt64, nodes, edges,
// paths and any other Go type return *UnsupportedParameterError.
func Literal(v interface{}) (string, error) {
	sb := pool.GetBuilder()
	defer pool.PutBuilder(sb)
	if err := writeLiteral(sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLiteral(sb *pool.Builder, v interface{}) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
		return nil
	case string:
		writeString(sb, val)
		return nil
	case []byte:
		writeString(sb, string(val))
		return nil
	case bool:
		sb.WriteString(strconv.FormatBool(val))
		return nil
	case graph.Value:
		return writeValue(sb, val)
	case OrderedMap:
		return writeOrderedMap(sb, val)
	}

	if convert.IsInteger(v) {
		n, ok := convert.ToInt64(v)
		if !ok {
			return &UnsupportedParameterError{Type: fmt.Sprintf("%T", v), Reason: "integer out of int64 range"}
		}
		sb.WriteString(strconv.FormatInt(n, 10))
		return nil
	}
	if f, ok := convert.ToFloat64(v); ok {
		return writeDouble(sb, f)
	}
	if m, ok := convert.ToAnyMap(v); ok {
		keys := convert.SortedKeys(m)
		entries := make(OrderedMap, len(keys))
		for i, k := range keys {
			entries[i] = KeyValue{Key: k, Value: m[k]}
		}
		return writeOrderedMap(sb, entries)
	}
	if items, ok := convert.ToAnySlice(v); ok {
		sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeLiteral(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			sb.WriteString("null")
			return nil
		}
		return writeLiteral(sb, rv.Elem().Interface())

	// Named types such as `type Team string` render as their underlying kind.
	case reflect.String:
		writeString(sb, rv.String())
		return nil
	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(rv.Bool()))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(rv.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return &UnsupportedParameterError{Type: fmt.Sprintf("%T", v), Reason: "integer out of int64 range"}
		}
		sb.WriteString(strconv.FormatUint(u, 10))
		return nil
	case reflect.Float32, reflect.Float64:
		if err := writeDouble(sb, rv.Float()); err != nil {
			var upe *UnsupportedParameterError
			if errors.As(err, &upe) {
				upe.Type = fmt.Sprintf("%T", v)
			}
			return err
		}
		return nil
	}
	return &UnsupportedParameterError{Type: fmt.Sprintf("%T", v)}
}

func writeString(sb *pool.Builder, s string) {
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
}

// writeDouble emits the shortest decimal that parses back to f, always with
// a '.' or an exponent so the server reads it as a float.
func writeDouble(sb *pool.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &UnsupportedParameterError{Type: "float64", Reason: "non-finite value " + strconv.FormatFloat(f, 'g', -1, 64)}
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	s = strings.Replace(s, "e+", "e", 1)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	sb.WriteString(s)
	return nil
}

func writeOrderedMap(sb *pool.Builder, m OrderedMap) error {
	sb.WriteByte('{')
	for i, kv := range m {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeKey(sb, kv.Key)
		sb.WriteString(": ")
		if err := writeLiteral(sb, kv.Value); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

func writeKey(sb *pool.Builder, key string) {
	if isIdentifier(key) {
		sb.WriteString(key)
		return
	}
	sb.WriteByte('`')
	sb.WriteString(strings.ReplaceAll(key, "`", "``"))
	sb.WriteByte('`')
}

func writeValue(sb *pool.Builder, v graph.Value) error {
	switch v.Kind() {
	case graph.KindNull:
		sb.WriteString("null")
	case graph.KindBool:
		b, _ := v.AsBool()
		sb.WriteString(strconv.FormatBool(b))
	case graph.KindInteger:
		n, _ := v.AsInt()
		sb.WriteString(strconv.FormatInt(n, 10))
	case graph.KindDouble:
		f, _ := v.AsDouble()
		return writeDouble(sb, f)
	case graph.KindString:
		s, _ := v.AsString()
		writeString(sb, s)
	case graph.KindArray:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			item, _ := v.Index(i)
			if err := writeValue(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case graph.KindMap:
		m, _ := v.AsMap()
		entries := make(OrderedMap, 0, m.Len())
		m.Range(func(k string, item graph.Value) bool {
			entries = append(entries, KeyValue{Key: k, Value: item})
			return true
		})
		return writeOrderedMap(sb, entries)
	case graph.KindPoint:
		p, _ := v.AsPoint()
		sb.WriteString("point({latitude: ")
		if err := writeDouble(sb, p.Latitude); err != nil {
			return err
		}
		sb.WriteString(", longitude: ")
		if err := writeDouble(sb, p.Longitude); err != nil {
			return err
		}
		sb.WriteString("})")
	default:
		return &UnsupportedParameterError{Type: v.Kind().String(), Reason: "graph entities cannot be sent as parameters"}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
