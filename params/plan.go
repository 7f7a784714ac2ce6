package params

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/pgquery/dialect"
)

// segment is the literal text preceding one placeholder.
type segment struct {
	text  string
	name  string
	ident bool
}

// Plan is the parsed form of a query text. It is immutable and safe to share
// between goroutines; binding a mapping never mutates it.
type Plan struct {
	segments []segment
	tail     string
	size     int
}

// Parse scans sql once, left to right, and records every placeholder.
//
// A placeholder is a colon that is not preceded by another colon, followed by
// an optional '!' and one or more of [A-Za-z0-9_]. Anything else, including
// the "::type" cast syntax, is kept as literal text.
func Parse(sql string) *Plan {
	p := &Plan{size: len(sql)}
	last := 0

	for i := 0; i < len(sql); {
		if sql[i] != ':' || (i > 0 && sql[i-1] == ':') {
			i++
			continue
		}

		start, ident := i+1, false
		if start < len(sql) && sql[start] == '!' {
			start, ident = start+1, true
		}
		end := start
		for end < len(sql) && isNameByte(sql[end]) {
			end++
		}
		if end == start {
			i++
			continue
		}

		p.segments = append(p.segments, segment{
			text:  sql[last:i],
			name:  sql[start:end],
			ident: ident,
		})
		last, i = end, end
	}

	p.tail = sql[last:]
	return p
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// Placeholders returns the number of placeholders found, of both kinds.
func (p *Plan) Placeholders() int {
	return len(p.segments)
}

// Bind substitutes named into the plan.
//
// Value placeholders become $1, $2, ... in first-occurrence order; a name that
// appears several times takes a new slot each time. Identifier placeholders
// are inlined as quoted identifiers and add nothing to the returned values.
func (p *Plan) Bind(d dialect.Dialect, named map[string]any) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(p.size + len(p.segments)*2)
	args := make([]any, 0, len(p.segments))

	for _, s := range p.segments {
		v, ok := named[s.name]
		if !ok {
			return "", nil, &MissingParameterError{
				Placeholder: s.placeholder(),
				Name:        s.name,
				Keys:        sortedKeys(named),
			}
		}

		sb.WriteString(s.text)
		if s.ident {
			sb.WriteString(d.QuoteIdentifier(identText(v)))
			continue
		}
		args = append(args, v)
		sb.WriteString(d.Placeholder(len(args)))
	}
	sb.WriteString(p.tail)

	return sb.String(), args, nil
}

func (s segment) placeholder() string {
	if s.ident {
		return ":!" + s.name
	}
	return ":" + s.name
}

func identText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
