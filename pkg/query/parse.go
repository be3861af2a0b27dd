package query

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLiteral parses a literal in the grammar Literal emits and returns the
// Go value Literal would render back to the same text:
//
//	null                  → nil
//	true, false           → bool
//	42, -7                → int64
//	3.0, 1e-07, -0.5      → float64
//	'it\'s', "x"          → string
//	[1, 'a']              → []interface{}
//	{a: 1, `b c`: 2}      → OrderedMap
//
// Keywords are case-insensitive. Surrounding whitespace is ignored. Anything
// else is a *SyntaxError.
//
// It is meant for command-line parameters:
//
//	redisgraphio query motogp 'MATCH (r:Rider {name: $name}) RETURN r' --param "name='Valentino Rossi'"
func ParseLiteral(s string) (interface{}, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) expect(c byte) error {
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

func (p *literalParser) value() (interface{}, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.str()
	case c == '[':
		return p.list()
	case c == '{':
		return p.object()
	case c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		word := p.word()
		switch strings.ToLower(word) {
		case "null":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		p.pos -= len(word)
		return nil, p.errorf("unknown keyword %q", word)
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *literalParser) word() string {
	start := p.pos
	for !p.eof() && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	start := p.pos
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				p.pos = start
				return "", p.errorf("unterminated string")
			}
			switch esc := p.src[p.pos+1]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			default:
				p.pos++
				return "", p.errorf("unknown escape \\%c", esc)
			}
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *literalParser) number() (interface{}, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := p.digits()
	isFloat := false
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		digits += p.digits()
	}
	if digits == 0 {
		p.pos = start
		return nil, p.errorf("invalid number")
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.digits() == 0 {
			return nil, p.errorf("invalid exponent")
		}
	}
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.pos = start
			return nil, p.errorf("invalid float %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("integer %s out of range", text)
	}
	return n, nil
}

func (p *literalParser) digits() int {
	n := 0
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}

func (p *literalParser) list() ([]interface{}, error) {
	p.pos++ // [
	items := []interface{}{}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return items, nil
	}
	for {
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return items, nil
	}
}

func (p *literalParser) object() (OrderedMap, error) {
	p.pos++ // {
	m := OrderedMap{}
	seen := make(map[string]bool)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return m, nil
	}
	for {
		p.skipSpace()
		keyPos := p.pos
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if seen[key] {
			p.pos = keyPos
			return nil, p.errorf("duplicate key %q", key)
		}
		seen[key] = true
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		m = append(m, KeyValue{Key: key, Value: v})
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return m, nil
	}
}

func (p *literalParser) key() (string, error) {
	c := p.peek()
	if isIdentStart(c) {
		return p.word(), nil
	}
	if c != '`' {
		return "", p.errorf("expected map key")
	}
	start := p.pos
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		if p.src[p.pos] == '`' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '`' {
				sb.WriteByte('`')
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		}
		sb.WriteByte(p.src[p.pos])
		p.pos++
	}
	p.pos = start
	return "", p.errorf("unterminated quoted key")
}
