package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned by NewPath when the node and edge counts do not
// describe an alternating Node, Edge, ..., Node sequence.
var ErrInvalidPath = errors.New("invalid path")

// Node is a graph vertex as returned by the server.
//
// ID is assigned by the database and is unique within one result set. Labels
// keep the order the server reported them in.
type Node struct {
	ID         int64
	Properties Map
	labels     []string
}

// NewNode creates a node. The labels slice is copied.
func NewNode(id int64, labels []string, props Map) Node {
	cp := make([]string, len(labels))
	copy(cp, labels)
	return Node{ID: id, labels: cp, Properties: props}
}

// Labels returns the node labels in server order.
func (n Node) Labels() []string {
	cp := make([]string, len(n.labels))
	copy(cp, n.labels)
	return cp
}

// HasLabel reports whether the node carries label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.labels {
		if l == label {
			return true
		}
	}
	return false
}

// PropertyMap returns the node properties.
func (n Node) PropertyMap() Map { return n.Properties }

// EntityID returns the node id.
func (n Node) EntityID() int64 { return n.ID }

func (n Node) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(strconv.FormatInt(n.ID, 10))
	for _, l := range n.labels {
		sb.WriteByte(':')
		sb.WriteString(l)
	}
	if n.Properties.Len() > 0 {
		sb.WriteByte(' ')
		n.Properties.writeTo(&sb)
	}
	sb.WriteString(")")
	return sb.String()
}

// Edge is a graph relationship as returned by the server.
type Edge struct {
	ID          int64
	Type        string
	Source      int64
	Destination int64
	Properties  Map
}

// PropertyMap returns the edge properties.
func (e Edge) PropertyMap() Map { return e.Properties }

// EntityID returns the edge id.
func (e Edge) EntityID() int64 { return e.ID }

func (e Edge) String() string {
	props := ""
	if e.Properties.Len() > 0 {
		props = " " + e.Properties.String()
	}
	return fmt.Sprintf("(%d)-[%d:%s%s]->(%d)", e.Source, e.ID, e.Type, props, e.Destination)
}

// Path is an alternating sequence Node, Edge, Node, ..., Node.
//
// A Path always holds exactly one more node than edges; NewPath refuses any
// other shape, so a Path value obtained from this package is always valid.
type Path struct {
	nodes []Node
	edges []Edge
}

// NewPath builds a path from its nodes and the edges between them.
func NewPath(nodes []Node, edges []Edge) (Path, error) {
	if len(nodes) != len(edges)+1 {
		return Path{}, fmt.Errorf("%w: %d nodes and %d edges", ErrInvalidPath, len(nodes), len(edges))
	}
	p := Path{
		nodes: make([]Node, len(nodes)),
		edges: make([]Edge, len(edges)),
	}
	copy(p.nodes, nodes)
	copy(p.edges, edges)
	return p, nil
}

// Len returns the number of edges.
func (p Path) Len() int { return len(p.edges) }

// Nodes returns the path nodes in order.
func (p Path) Nodes() []Node {
	cp := make([]Node, len(p.nodes))
	copy(cp, p.nodes)
	return cp
}

// Edges returns the path edges in order.
func (p Path) Edges() []Edge {
	cp := make([]Edge, len(p.edges))
	copy(cp, p.edges)
	return cp
}

// FirstNode returns the start of the path.
func (p Path) FirstNode() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	return p.nodes[0], true
}

// LastNode returns the end of the path.
func (p Path) LastNode() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

// Elements returns the interleaved sequence Node, Edge, ..., Node.
func (p Path) Elements() []Value {
	if len(p.nodes) == 0 {
		return nil
	}
	out := make([]Value, 0, len(p.nodes)+len(p.edges))
	for i, n := range p.nodes {
		out = append(out, NodeValue(n))
		if i < len(p.edges) {
			out = append(out, EdgeValue(p.edges[i]))
		}
	}
	return out
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	for i, n := range p.nodes {
		if i > 0 {
			e := p.edges[i-1]
			fmt.Fprintf(&sb, "-[%d:%s]->", e.ID, e.Type)
		}
		fmt.Fprintf(&sb, "(%d)", n.ID)
	}
	sb.WriteString(">")
	return sb.String()
}

// Point is a geographic coordinate (WGS-84).
type Point struct {
	Latitude  float64
	Longitude float64
}
