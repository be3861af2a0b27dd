package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKey is returned when a map or property set is built with the
// same key twice.
var ErrDuplicateKey = errors.New("duplicate key")

// Map is an immutable, insertion-ordered mapping of string keys to values.
//
// Map backs both Cypher map values and the property sets of nodes and edges.
// Order matters: properties are addressable by position, and position i is
// always the i-th key the server sent.
//
// The zero Map is empty and ready to use.
type Map struct {
	keys   []string
	values []Value
	index  map[string]int
}

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   string
	Value Value
}

// MapBuilder accumulates entries for a Map.
//
// Example:
//
//	b := graph.NewMapBuilder(2)
//	_ = b.Add("name", graph.StringValue("Alice"))
//	_ = b.Add("age", graph.IntValue(30))
//	m := b.Build()
type MapBuilder struct {
	m Map
}

// NewMapBuilder returns a builder with room for n entries.
func NewMapBuilder(n int) *MapBuilder {
	return &MapBuilder{m: Map{
		keys:   make([]string, 0, n),
		values: make([]Value, 0, n),
		index:  make(map[string]int, n),
	}}
}

// Add appends an entry. Adding a key twice returns ErrDuplicateKey and
// leaves the builder unchanged.
func (b *MapBuilder) Add(key string, v Value) error {
	if _, exists := b.m.index[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	b.m.index[key] = len(b.m.keys)
	b.m.keys = append(b.m.keys, key)
	b.m.values = append(b.m.values, v)
	return nil
}

// Build returns the finished Map. The builder must not be used afterwards.
func (b *MapBuilder) Build() Map {
	m := b.m
	b.m = Map{}
	if len(m.keys) == 0 {
		return Map{}
	}
	return m
}

// MapFromPairs builds a Map from pairs in the given order.
func MapFromPairs(pairs ...Pair) (Map, error) {
	b := NewMapBuilder(len(pairs))
	for _, p := range pairs {
		if err := b.Add(p.Key, p.Value); err != nil {
			return Map{}, err
		}
	}
	return b.Build(), nil
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.keys) }

// At returns the i-th entry in insertion order.
func (m Map) At(i int) (string, Value, bool) {
	if i < 0 || i >= len(m.keys) {
		return "", Value{}, false
	}
	return m.keys[i], m.values[i], true
}

// Get looks up a key.
func (m Map) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.values[i], true
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	cp := make([]string, len(m.keys))
	copy(cp, m.keys)
	return cp
}

// Values returns the values in insertion order.
func (m Map) Values() []Value {
	cp := make([]Value, len(m.values))
	copy(cp, m.values)
	return cp
}

// Range calls fn for each entry in order until fn returns false.
func (m Map) Range(fn func(key string, v Value) bool) {
	for i, k := range m.keys {
		if !fn(k, m.values[i]) {
			return
		}
	}
}

// Interface converts the map into a map[string]any of plain Go values.
func (m Map) Interface() map[string]any {
	out := make(map[string]any, len(m.keys))
	for i, k := range m.keys {
		out[k] = m.values[i].Interface()
	}
	return out
}

func (m Map) String() string {
	var sb strings.Builder
	m.writeTo(&sb)
	return sb.String()
}

func (m Map) writeTo(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		m.values[i].writeTo(sb)
	}
	sb.WriteByte('}')
}
