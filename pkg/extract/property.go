package extract

import (
	"fmt"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// PropertyHolder is a graph entity with an ordered property set.
// graph.Node and graph.Edge implement it.
type PropertyHolder interface {
	PropertyMap() graph.Map
}

// PropertyByIndex converts the i-th property, counting in the order the
// server sent them.
func PropertyByIndex[T any](h PropertyHolder, i int, c Converter[T]) (T, error) {
	var zero T
	props := h.PropertyMap()
	key, v, ok := props.At(i)
	if !ok {
		return zero, &PropertyNotFoundError{Index: i, Len: props.Len()}
	}
	out, err := c(v)
	if err != nil {
		return zero, fmt.Errorf("property %q: %w", key, err)
	}
	return out, nil
}

// PropertyByName converts the property called name.
func PropertyByName[T any](h PropertyHolder, name string, c Converter[T]) (T, error) {
	var zero T
	props := h.PropertyMap()
	v, ok := props.Get(name)
	if !ok {
		return zero, &PropertyNotFoundError{Index: -1, Name: name, ByName: true, Len: props.Len()}
	}
	out, err := c(v)
	if err != nil {
		return zero, fmt.Errorf("property %q: %w", name, err)
	}
	return out, nil
}

// PropertyValues converts every property value in insertion order.
func PropertyValues[T any](h PropertyHolder, c Converter[T]) ([]T, error) {
	props := h.PropertyMap()
	out := make([]T, 0, props.Len())
	var err error
	props.Range(func(key string, v graph.Value) bool {
		var conv T
		conv, err = c(v)
		if err != nil {
			err = fmt.Errorf("property %q: %w", key, err)
			return false
		}
		out = append(out, conv)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Properties converts every property into a map keyed by property name.
func Properties[T any](h PropertyHolder, c Converter[T]) (map[string]T, error) {
	props := h.PropertyMap()
	out := make(map[string]T, props.Len())
	var err error
	props.Range(func(key string, v graph.Value) bool {
		var conv T
		conv, err = c(v)
		if err != nil {
			err = fmt.Errorf("property %q: %w", key, err)
			return false
		}
		out[key] = conv
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
