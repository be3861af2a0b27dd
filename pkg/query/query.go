// Package query builds GRAPH.QUERY commands from a template and parameters.
//
// A template is a query string with $name placeholders. Build replaces each
// placeholder with the escaped literal of its parameter value, so the
// resulting query text is always well formed no matter what the values
// contain.
//
// # Parameter Syntax
//
// Placeholder names follow the identifier grammar [A-Za-z_][A-Za-z0-9_]*:
//
//	$name        - Simple parameter
//	$riderId     - Camel case parameter
//	$team_2      - Parameter with digits and underscores
//
// A '$' inside a quoted string ('...' or "..."), a backtick-quoted
// identifier or a comment is part of that text and is never substituted.
//
// # Usage Example
//
//	q := query.New("MATCH (r:Rider)-[:rides]->(:Team {name: $team}) RETURN r").
//		Set("team", "Yamaha").
//		ReadOnly(true)
//	cmd, args, err := q.Command("motogp")
//	// cmd  == "GRAPH.RO_QUERY"
//	// args == ["motogp", "MATCH (r:Rider)-[:rides]->(:Team {name: 'Yamaha'}) RETURN r", "--compact"]
//
// # Missing Parameters
//
// A query created without parameters is sent verbatim. As soon as a parameter
// map is attached (even an empty one) every placeholder must have a value;
// a missing one fails Build with *MissingParameterError before anything is
// sent to the server.
//
// # ELI12
//
// Parameters are like fill-in-the-blanks in a story:
//
//	"The winner is _____" + {name: "Marc"} = "The winner is 'Marc'"
//
// The builder puts quotes around the words and makes sure nothing you fill
// in can break out of its blank.
package query

import (
	"errors"
	"strings"

	"github.com/orneryd/redisgraphio/pkg/pool"
)

// Command names and flags of the graph module.
const (
	CmdQuery   = "GRAPH.QUERY"
	CmdROQuery = "GRAPH.RO_QUERY"
	CmdDelete  = "GRAPH.DELETE"

	FlagCompact = "--compact"
)

// Params maps placeholder names to Go values.
type Params map[string]interface{}

// Query is a query template plus everything needed to send it.
//
// Query is a small value builder; methods modify and return the receiver.
// A Query is not safe for concurrent modification but may be read (built)
// concurrently once fully set up.
type Query struct {
	template string
	params   Params
	readOnly bool
}

// New creates a query without parameters. The template is sent verbatim
// unless WithParams or Set is called.
func New(template string) *Query {
	return &Query{template: template}
}

// WithParams attaches a parameter map, replacing any previous one. The map
// is copied. A nil map detaches parameters again.
func (q *Query) WithParams(p Params) *Query {
	if p == nil {
		q.params = nil
		return q
	}
	q.params = make(Params, len(p))
	for k, v := range p {
		q.params[k] = v
	}
	return q
}

// Set assigns one parameter, attaching an empty map first if needed.
func (q *Query) Set(name string, value interface{}) *Query {
	if q.params == nil {
		q.params = make(Params)
	}
	q.params[name] = value
	return q
}

// ReadOnly marks the query for GRAPH.RO_QUERY.
func (q *Query) ReadOnly(ro bool) *Query {
	q.readOnly = ro
	return q
}

// IsReadOnly reports whether the query will be sent as GRAPH.RO_QUERY.
func (q *Query) IsReadOnly() bool { return q.readOnly }

// Template returns the unsubstituted template.
func (q *Query) Template() string { return q.template }

// HasParams reports whether a parameter map is attached.
func (q *Query) HasParams() bool { return q.params != nil }

// Verb returns the command name the query is sent with.
func (q *Query) Verb() string {
	if q.readOnly {
		return CmdROQuery
	}
	return CmdQuery
}

// Build returns the final query text.
func (q *Query) Build() (string, error) {
	if q.params == nil {
		return q.template, nil
	}
	return substitute(q.template, q.params)
}

// Command returns the command name and arguments for graph:
// [graph, built query, "--compact"].
func (q *Query) Command(graph string) (string, []interface{}, error) {
	text, err := q.Build()
	if err != nil {
		return "", nil, err
	}
	return q.Verb(), []interface{}{graph, text, FlagCompact}, nil
}

// Placeholders returns the distinct placeholder names of template in order
// of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	scanPlaceholders(template, func(_, _ int, name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}

// substitute replaces every placeholder of template with the literal of its
// parameter.
func substitute(template string, params Params) (string, error) {
	var (
		last int
		err  error
	)
	sb := pool.GetBuilder()
	defer pool.PutBuilder(sb)
	sb.Grow(len(template))
	scanPlaceholders(template, func(start, end int, name string) {
		if err != nil {
			return
		}
		value, ok := params[name]
		if !ok {
			err = &MissingParameterError{Name: name, Offset: start}
			return
		}
		sb.WriteString(template[last:start])
		if lerr := writeLiteral(sb, value); lerr != nil {
			var upe *UnsupportedParameterError
			if errors.As(lerr, &upe) && upe.Name == "" {
				upe.Name = name
			}
			err = lerr
			return
		}
		last = end
	})
	if err != nil {
		return "", err
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}

// scanPlaceholders calls fn for every $name outside quoted text and
// comments. start is the offset of '$', end the offset after the name.
func scanPlaceholders(s string, fn func(start, end int, name string)) {
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '\'' || c == '"':
			i = skipQuoted(s, i, c)
		case c == '`':
			i = skipBackticks(s, i)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			i = skipLineComment(s, i)
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipBlockComment(s, i)
		case c == '$' && i+1 < len(s) && isIdentStart(s[i+1]):
			end := i + 2
			for end < len(s) && isIdentPart(s[end]) {
				end++
			}
			fn(i, end, s[i+1:end])
			i = end
		default:
			i++
		}
	}
}

// skipQuoted returns the offset after the string literal starting at i.
// Backslash escapes the next byte. An unterminated literal runs to the end.
func skipQuoted(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

// skipBackticks returns the offset after the quoted identifier starting at
// i. A doubled backtick is an escaped backtick.
func skipBackticks(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == '`' {
			if j+1 < len(s) && s[j+1] == '`' {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

func skipLineComment(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n + 1
	}
	return len(s)
}

func skipBlockComment(s string, i int) int {
	if n := strings.Index(s[i+2:], "*/"); n >= 0 {
		return i + 2 + n + 2
	}
	return len(s)
}

// String returns the built query, or the template if building fails.
func (q *Query) String() string {
	text, err := q.Build()
	if err != nil {
		return q.template
	}
	return text
}
