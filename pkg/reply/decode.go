// Package reply decodes compact GRAPH.QUERY replies into graph values.
//
// A compact reply is a tree of redigo reply values ([]interface{}, []byte,
// string, int64, nil, redis.Error) shaped like:
//
//	[
//	  [[1, "n"], [1, "count"]],                  // header: [column type, name]
//	  [                                          // data: one array per row
//	    [[8, [0, [0], [[1, 2, "Valentino"]]]],   //   cell: [type tag, raw value]
//	     [3, 46]],
//	  ],
//	  ["Cached execution: 0", "Query internal execution time: 0.1 milliseconds"],
//	]
//
// Labels, property keys and relationship types inside nodes and edges may be
// plain strings or schema ids. Ids are turned into names by a Resolver; an id
// the Resolver does not know stops decoding with an *UnknownIDError cause so
// the caller can refresh its schema and try again with the same reply.
//
// Decoding is all-or-nothing. The first malformed element aborts the whole
// result with a *DecodeError that says where it happened:
//
//	decode reply at row 2, column 0, node property 'age': expected integer, got []uint8
//
// ELI12:
//
// The server answers with boxes inside boxes. Every small box has a sticker
// (the type tag) that says what is inside. The decoder opens the boxes one by
// one, reads each sticker, and builds a tidy graph.Value from what it finds.
// If one sticker is wrong, it stops and tells you exactly which box it was.
package reply

import (
	"fmt"
	"strconv"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// CellType is the type tag leading every compact result cell.
type CellType int64

const (
	TypeUnknown CellType = iota
	TypeNull
	TypeString
	TypeInteger
	TypeBoolean
	TypeDouble
	TypeArray
	TypeEdge
	TypeNode
	TypePath
	TypeMap
	TypePoint
)

// ColumnType is the type tag of a header column.
type ColumnType int64

const (
	ColumnUnknown ColumnType = iota
	ColumnScalar
	ColumnNode
	ColumnRelation
)

func (c ColumnType) String() string {
	switch c {
	case ColumnScalar:
		return "scalar"
	case ColumnNode:
		return "node"
	case ColumnRelation:
		return "relation"
	}
	return "unknown"
}

// Column is one decoded header entry.
type Column struct {
	Type ColumnType
	Name string
}

// Decode converts a full [header, data, statistics] reply into a QueryResult.
// r may be nil when the reply is known to carry names instead of ids.
func Decode(raw interface{}, r Resolver) (*graph.QueryResult, error) {
	d := &decoder{resolver: r}
	top, err := d.topLevel(raw)
	if err != nil {
		return nil, err
	}
	if len(top) != 3 {
		return nil, d.fail(fmt.Sprintf("expected [header, data, statistics], got %d elements", len(top)), nil)
	}

	d.push("header")
	cols, err := d.header(top[0])
	if err != nil {
		return nil, err
	}
	d.pop()

	header := make(graph.Header, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}

	rows, err := d.rows(top[1], len(header))
	if err != nil {
		return nil, err
	}

	d.push("statistics")
	stats, err := d.statistics(top[2])
	if err != nil {
		return nil, err
	}
	d.pop()

	return &graph.QueryResult{Header: header, Rows: rows, Statistics: stats}, nil
}

// DecodeStatistics extracts only the statistics block. It accepts the
// one-element [statistics] reply the server sends for queries without a
// RETURN clause, as well as a full three-element reply whose rows are
// ignored.
func DecodeStatistics(raw interface{}) (graph.Statistics, error) {
	d := &decoder{}
	top, err := d.topLevel(raw)
	if err != nil {
		return nil, err
	}
	var block interface{}
	switch len(top) {
	case 1:
		block = top[0]
	case 3:
		block = top[2]
	default:
		return nil, d.fail(fmt.Sprintf("expected [statistics] or [header, data, statistics], got %d elements", len(top)), nil)
	}
	d.push("statistics")
	return d.statistics(block)
}

// DecodeHeader decodes the header element of a reply, keeping column types.
func DecodeHeader(raw interface{}) ([]Column, error) {
	d := &decoder{}
	d.push("header")
	return d.header(raw)
}

// DecodeValue decodes a single [type tag, raw value] cell.
func DecodeValue(cell interface{}, r Resolver) (graph.Value, error) {
	d := &decoder{resolver: r}
	return d.cell(cell)
}

type decoder struct {
	resolver Resolver
	path     []string
}

func (d *decoder) push(segment string) { d.path = append(d.path, segment) }

func (d *decoder) pop() { d.path = d.path[:len(d.path)-1] }

func (d *decoder) fail(reason string, err error) error {
	path := make([]string, len(d.path))
	copy(path, d.path)
	return &DecodeError{Path: path, Reason: reason, Err: err}
}

func (d *decoder) topLevel(raw interface{}) ([]interface{}, error) {
	top, err := redis.Values(raw, nil)
	if err != nil {
		if serr, ok := err.(redis.Error); ok {
			return nil, d.fail("server error", serr)
		}
		return nil, d.fail("reply is not an array", err)
	}
	// Runtime errors arrive as the last element of an otherwise normal reply.
	for i, el := range top {
		if serr, ok := el.(redis.Error); ok {
			d.push("element " + strconv.Itoa(i))
			return nil, d.fail("server error", serr)
		}
	}
	return top, nil
}

func (d *decoder) array(raw interface{}, what string) ([]interface{}, error) {
	switch v := raw.(type) {
	case []interface{}:
		return v, nil
	case redis.Error:
		return nil, d.fail("server error", v)
	}
	return nil, d.fail(fmt.Sprintf("expected %s array, got %T", what, raw), nil)
}

func (d *decoder) fixed(raw interface{}, what string, n int) ([]interface{}, error) {
	arr, err := d.array(raw, what)
	if err != nil {
		return nil, err
	}
	if len(arr) != n {
		return nil, d.fail(fmt.Sprintf("expected %s of %d elements, got %d", what, n, len(arr)), nil)
	}
	return arr, nil
}

func (d *decoder) str(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	case redis.Error:
		return "", d.fail("server error", v)
	}
	return "", d.fail(fmt.Sprintf("expected string, got %T", raw), nil)
}

func (d *decoder) integer(raw interface{}) (int64, error) {
	if s, ok := raw.(string); ok {
		raw = []byte(s)
	}
	switch raw.(type) {
	case int64, []byte:
		n, err := redis.Int64(raw, nil)
		if err != nil {
			return 0, d.fail("invalid integer", err)
		}
		return n, nil
	}
	return 0, d.fail(fmt.Sprintf("expected integer, got %T", raw), nil)
}

func (d *decoder) double(raw interface{}) (float64, error) {
	if s, ok := raw.(string); ok {
		raw = []byte(s)
	}
	if _, ok := raw.([]byte); !ok {
		return 0, d.fail(fmt.Sprintf("expected double string, got %T", raw), nil)
	}
	f, err := redis.Float64(raw, nil)
	if err != nil {
		return 0, d.fail("invalid double", err)
	}
	return f, nil
}

// name decodes a label, property key or relationship type that is either a
// literal string or a schema id.
func (d *decoder) name(kind IDKind, raw interface{}) (string, error) {
	id, ok := raw.(int64)
	if !ok {
		return d.str(raw)
	}
	if d.resolver != nil {
		if s, found := d.resolver.Resolve(kind, id); found {
			return s, nil
		}
	}
	return "", d.fail("unresolved schema id", &UnknownIDError{Kind: kind, ID: id})
}

func (d *decoder) header(raw interface{}) ([]Column, error) {
	entries, err := d.array(raw, "header")
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(entries))
	for i, entry := range entries {
		d.push("column " + strconv.Itoa(i))
		e, ok := entry.([]interface{})
		if !ok || len(e) != 2 {
			return nil, d.fail(fmt.Sprintf("expected [type, name], got %s", shape(entry)), nil)
		}
		t, err := d.integer(e[0])
		if err != nil {
			return nil, err
		}
		n, err := d.str(e[1])
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Type: ColumnType(t), Name: n}
		d.pop()
	}
	return cols, nil
}

// shape describes a malformed reply element for error messages.
func shape(raw interface{}) string {
	if a, ok := raw.([]interface{}); ok {
		return fmt.Sprintf("%d elements", len(a))
	}
	return fmt.Sprintf("%T", raw)
}

func (d *decoder) rows(raw interface{}, width int) ([]graph.Row, error) {
	records, err := d.array(raw, "data")
	if err != nil {
		return nil, err
	}
	rows := make([]graph.Row, len(records))
	for i, rec := range records {
		d.push("row " + strconv.Itoa(i))
		cells, err := d.array(rec, "row")
		if err != nil {
			return nil, err
		}
		if len(cells) != width {
			return nil, d.fail(fmt.Sprintf("row has %d cells but header has %d columns", len(cells), width), nil)
		}
		row := make(graph.Row, width)
		for j, c := range cells {
			d.push("column " + strconv.Itoa(j))
			v, err := d.cell(c)
			if err != nil {
				return nil, err
			}
			row[j] = v
			d.pop()
		}
		rows[i] = row
		d.pop()
	}
	return rows, nil
}

func (d *decoder) statistics(raw interface{}) (graph.Statistics, error) {
	lines, err := d.array(raw, "statistics")
	if err != nil {
		return nil, err
	}
	stats := make(graph.Statistics, len(lines))
	for i, l := range lines {
		s, err := d.str(l)
		if err != nil {
			return nil, err
		}
		stats[i] = s
	}
	return stats, nil
}

func (d *decoder) cell(raw interface{}) (graph.Value, error) {
	pair, err := d.fixed(raw, "[type, value] cell", 2)
	if err != nil {
		return graph.Value{}, err
	}
	tag, err := d.integer(pair[0])
	if err != nil {
		return graph.Value{}, err
	}
	return d.value(CellType(tag), pair[1])
}

func (d *decoder) value(t CellType, raw interface{}) (graph.Value, error) {
	switch t {
	case TypeUnknown, TypeNull:
		return graph.NullValue(), nil
	case TypeString:
		s, err := d.str(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.StringValue(s), nil
	case TypeInteger:
		n, err := d.integer(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.IntValue(n), nil
	case TypeBoolean:
		s, err := d.str(raw)
		if err != nil {
			return graph.Value{}, err
		}
		switch s {
		case "true":
			return graph.BoolValue(true), nil
		case "false":
			return graph.BoolValue(false), nil
		}
		return graph.Value{}, d.fail(fmt.Sprintf("invalid boolean %q", s), nil)
	case TypeDouble:
		f, err := d.double(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.DoubleValue(f), nil
	case TypeArray:
		items, err := d.arrayItems(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.ArrayValue(items), nil
	case TypeNode:
		n, err := d.node(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.NodeValue(n), nil
	case TypeEdge:
		e, err := d.edge(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.EdgeValue(e), nil
	case TypePath:
		p, err := d.pathValue(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.PathValue(p), nil
	case TypeMap:
		m, err := d.mapValue(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.MapValue(m), nil
	case TypePoint:
		p, err := d.point(raw)
		if err != nil {
			return graph.Value{}, err
		}
		return graph.PointValue(p), nil
	}
	return graph.Value{}, d.fail(fmt.Sprintf("unknown type tag %d", int64(t)), nil)
}

func (d *decoder) arrayItems(raw interface{}) ([]graph.Value, error) {
	elems, err := d.array(raw, "value")
	if err != nil {
		return nil, err
	}
	items := make([]graph.Value, len(elems))
	for i, el := range elems {
		d.push("array element " + strconv.Itoa(i))
		v, err := d.cell(el)
		if err != nil {
			return nil, err
		}
		items[i] = v
		d.pop()
	}
	return items, nil
}

// node decodes [id, [label...], [[key, type, value]...]].
func (d *decoder) node(raw interface{}) (graph.Node, error) {
	parts, err := d.fixed(raw, "node", 3)
	if err != nil {
		return graph.Node{}, err
	}
	d.push("node id")
	id, err := d.integer(parts[0])
	if err != nil {
		return graph.Node{}, err
	}
	d.pop()

	rawLabels, err := d.array(parts[1], "node labels")
	if err != nil {
		return graph.Node{}, err
	}
	labels := make([]string, len(rawLabels))
	for i, l := range rawLabels {
		d.push("node label " + strconv.Itoa(i))
		if labels[i], err = d.name(LabelID, l); err != nil {
			return graph.Node{}, err
		}
		d.pop()
	}

	props, err := d.properties(parts[2], "node")
	if err != nil {
		return graph.Node{}, err
	}
	return graph.NewNode(id, labels, props), nil
}

// edge decodes [id, type, source id, destination id, [[key, type, value]...]].
func (d *decoder) edge(raw interface{}) (graph.Edge, error) {
	parts, err := d.fixed(raw, "edge", 5)
	if err != nil {
		return graph.Edge{}, err
	}
	var e graph.Edge
	d.push("edge id")
	if e.ID, err = d.integer(parts[0]); err != nil {
		return graph.Edge{}, err
	}
	d.pop()
	d.push("edge type")
	if e.Type, err = d.name(RelationshipTypeID, parts[1]); err != nil {
		return graph.Edge{}, err
	}
	d.pop()
	d.push("edge source")
	if e.Source, err = d.integer(parts[2]); err != nil {
		return graph.Edge{}, err
	}
	d.pop()
	d.push("edge destination")
	if e.Destination, err = d.integer(parts[3]); err != nil {
		return graph.Edge{}, err
	}
	d.pop()
	if e.Properties, err = d.properties(parts[4], "edge"); err != nil {
		return graph.Edge{}, err
	}
	return e, nil
}

func (d *decoder) properties(raw interface{}, owner string) (graph.Map, error) {
	entries, err := d.array(raw, owner+" properties")
	if err != nil {
		return graph.Map{}, err
	}
	b := graph.NewMapBuilder(len(entries))
	for i, entry := range entries {
		d.push(fmt.Sprintf("%s property %d", owner, i))
		prop, err := d.fixed(entry, "[key, type, value] property", 3)
		if err != nil {
			return graph.Map{}, err
		}
		key, err := d.name(PropertyKeyID, prop[0])
		if err != nil {
			return graph.Map{}, err
		}
		d.pop()

		d.push(fmt.Sprintf("%s property '%s'", owner, key))
		tag, err := d.integer(prop[1])
		if err != nil {
			return graph.Map{}, err
		}
		v, err := d.value(CellType(tag), prop[2])
		if err != nil {
			return graph.Map{}, err
		}
		if err := b.Add(key, v); err != nil {
			return graph.Map{}, d.fail("invalid properties", err)
		}
		d.pop()
	}
	return b.Build(), nil
}

// pathValue decodes [[Array, [node cells]], [Array, [edge cells]]].
func (d *decoder) pathValue(raw interface{}) (graph.Path, error) {
	parts, err := d.fixed(raw, "path", 2)
	if err != nil {
		return graph.Path{}, err
	}

	d.push("path nodes")
	nv, err := d.cell(parts[0])
	if err != nil {
		return graph.Path{}, err
	}
	items, ok := nv.AsArray()
	if !ok {
		return graph.Path{}, d.fail("expected array of nodes, got "+nv.Kind().String(), nil)
	}
	nodes := make([]graph.Node, len(items))
	for i, it := range items {
		if nodes[i], ok = it.AsNode(); !ok {
			return graph.Path{}, d.fail(fmt.Sprintf("element %d is %s, not Node", i, it.Kind()), nil)
		}
	}
	d.pop()

	d.push("path edges")
	ev, err := d.cell(parts[1])
	if err != nil {
		return graph.Path{}, err
	}
	if items, ok = ev.AsArray(); !ok {
		return graph.Path{}, d.fail("expected array of edges, got "+ev.Kind().String(), nil)
	}
	edges := make([]graph.Edge, len(items))
	for i, it := range items {
		if edges[i], ok = it.AsEdge(); !ok {
			return graph.Path{}, d.fail(fmt.Sprintf("element %d is %s, not Edge", i, it.Kind()), nil)
		}
	}
	d.pop()

	p, err := graph.NewPath(nodes, edges)
	if err != nil {
		d.push("path")
		return graph.Path{}, d.fail("invalid path", err)
	}
	return p, nil
}

// mapValue decodes the flat [key, cell, key, cell, ...] form.
func (d *decoder) mapValue(raw interface{}) (graph.Map, error) {
	flat, err := d.array(raw, "map")
	if err != nil {
		return graph.Map{}, err
	}
	if len(flat)%2 != 0 {
		return graph.Map{}, d.fail(fmt.Sprintf("map has odd number of elements (%d)", len(flat)), nil)
	}
	b := graph.NewMapBuilder(len(flat) / 2)
	for i := 0; i < len(flat); i += 2 {
		d.push("map entry " + strconv.Itoa(i/2))
		key, err := d.str(flat[i])
		if err != nil {
			return graph.Map{}, err
		}
		d.pop()

		d.push("map key '" + key + "'")
		v, err := d.cell(flat[i+1])
		if err != nil {
			return graph.Map{}, err
		}
		if err := b.Add(key, v); err != nil {
			return graph.Map{}, d.fail("invalid map", err)
		}
		d.pop()
	}
	return b.Build(), nil
}

// point decodes [latitude, longitude].
func (d *decoder) point(raw interface{}) (graph.Point, error) {
	parts, err := d.fixed(raw, "point", 2)
	if err != nil {
		return graph.Point{}, err
	}
	var p graph.Point
	d.push("point latitude")
	if p.Latitude, err = d.double(parts[0]); err != nil {
		return graph.Point{}, err
	}
	d.pop()
	d.push("point longitude")
	if p.Longitude, err = d.double(parts[1]); err != nil {
		return graph.Point{}, err
	}
	d.pop()
	return p, nil
}
