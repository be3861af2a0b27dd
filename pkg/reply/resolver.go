package reply

import "strconv"

// IDKind names one of the three schema id spaces used by compact replies.
type IDKind uint8

const (
	LabelID IDKind = iota
	PropertyKeyID
	RelationshipTypeID
)

func (k IDKind) String() string {
	switch k {
	case LabelID:
		return "label"
	case PropertyKeyID:
		return "property key"
	case RelationshipTypeID:
		return "relationship type"
	}
	return "IDKind(" + strconv.Itoa(int(k)) + ")"
}

// Resolver maps compact schema ids to names.
//
// The server numbers labels, property keys and relationship types in the
// order they were created. Compact replies carry these numbers instead of the
// names; a Resolver turns them back. schema.Catalog is the implementation the
// client uses.
type Resolver interface {
	Resolve(kind IDKind, id int64) (string, bool)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(kind IDKind, id int64) (string, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(kind IDKind, id int64) (string, bool) { return f(kind, id) }

// StaticResolver resolves ids from fixed, index-addressed name lists.
// It is handy in tests and for replies recorded alongside their schema.
type StaticResolver struct {
	Labels            []string
	PropertyKeys      []string
	RelationshipTypes []string
}

// Resolve implements Resolver.
func (s StaticResolver) Resolve(kind IDKind, id int64) (string, bool) {
	var names []string
	switch kind {
	case LabelID:
		names = s.Labels
	case PropertyKeyID:
		names = s.PropertyKeys
	case RelationshipTypeID:
		names = s.RelationshipTypes
	}
	if id < 0 || id >= int64(len(names)) {
		return "", false
	}
	return names[id], true
}
