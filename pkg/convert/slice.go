package convert

import (
	"reflect"
	"sort"
)

// ToAnySlice converts a slice or array of any element type to []interface{}.
// Returns (slice, true) on success, (nil, false) when v is not a slice or
// array. []byte is not treated as a list.
//
// The common typed slices are handled without reflection:
//   - []interface{} (returned as-is)
//   - []string, []int, []int64, []float64, []bool
//
// Example:
//
//	s, ok := ToAnySlice([]string{"a", "b"}) // Returns ([]interface{}{"a", "b"}, true)
//	s, ok := ToAnySlice([2]int{1, 2})       // Returns ([]interface{}{1, 2}, true)
//	s, ok := ToAnySlice("ab")               // Returns (nil, false)
func ToAnySlice(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case []interface{}:
		return val, true
	case []string:
		return anySlice(val), true
	case []int:
		return anySlice(val), true
	case []int64:
		return anySlice(val), true
	case []float64:
		return anySlice(val), true
	case []bool:
		return anySlice(val), true
	case []byte, nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	result := make([]interface{}, rv.Len())
	for i := range result {
		result[i] = rv.Index(i).Interface()
	}
	return result, true
}

func anySlice[T any](in []T) []interface{} {
	result := make([]interface{}, len(in))
	for i, item := range in {
		result[i] = item
	}
	return result
}

// ToAnyMap converts a map with string keys to map[string]interface{}.
// Returns (map, true) on success, (nil, false) for any other value.
func ToAnyMap(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return val, true
	case map[string]string:
		result := make(map[string]interface{}, len(val))
		for k, item := range val {
			result[k] = item
		}
		return result, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	result := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		result[iter.Key().String()] = iter.Value().Interface()
	}
	return result, true
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
