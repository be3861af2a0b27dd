package graph

import (
	"strconv"
	"strings"
)

// Header is the ordered list of result column names.
type Header []string

// Index returns the position of column name.
func (h Header) Index(name string) (int, bool) {
	for i, col := range h {
		if col == name {
			return i, true
		}
	}
	return -1, false
}

// Row is one result record. A decoded Row always has exactly one value per
// header column.
type Row []Value

// Get returns the value of column i.
func (r Row) Get(i int) (Value, bool) {
	if i < 0 || i >= len(r) {
		return Value{}, false
	}
	return r[i], true
}

// QueryResult is a fully decoded GRAPH.QUERY reply.
type QueryResult struct {
	Header     Header
	Rows       []Row
	Statistics Statistics
}

// Len returns the number of rows.
func (r *QueryResult) Len() int { return len(r.Rows) }

// Empty reports whether the result has no rows.
func (r *QueryResult) Empty() bool { return len(r.Rows) == 0 }

// Column returns every value of the named column, top to bottom.
func (r *QueryResult) Column(name string) ([]Value, bool) {
	idx, ok := r.Header.Index(name)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Statistics is the free-form statistics block of a reply, one
// "<name>: <value>" line per entry, passed through exactly as received.
//
// Example lines:
//
//	Nodes created: 2
//	Query internal execution time: 0.312400 milliseconds
type Statistics []string

// StatKey names a well-known statistics line.
type StatKey string

const (
	StatLabelsAdded          StatKey = "Labels added"
	StatLabelsRemoved        StatKey = "Labels removed"
	StatNodesCreated         StatKey = "Nodes created"
	StatNodesDeleted         StatKey = "Nodes deleted"
	StatPropertiesSet        StatKey = "Properties set"
	StatPropertiesRemoved    StatKey = "Properties removed"
	StatRelationshipsCreated StatKey = "Relationships created"
	StatRelationshipsDeleted StatKey = "Relationships deleted"
	StatIndicesCreated       StatKey = "Indices created"
	StatIndicesDeleted       StatKey = "Indices deleted"
	StatCachedExecution      StatKey = "Cached execution"
	StatExecutionTime        StatKey = "Query internal execution time"
)

// Get parses the numeric value of a statistics line. Units such as
// "milliseconds" are dropped. Lines that are missing or not numeric report
// false.
func (s Statistics) Get(key StatKey) (float64, bool) {
	raw, ok := s.Raw(key)
	if !ok {
		return 0, false
	}
	if sp := strings.IndexByte(raw, ' '); sp >= 0 {
		raw = raw[:sp]
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Raw returns the unparsed value part of a statistics line.
func (s Statistics) Raw(key StatKey) (string, bool) {
	prefix := string(key) + ":"
	for _, line := range s {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}
