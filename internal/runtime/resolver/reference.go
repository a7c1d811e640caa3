package resolver

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

// Reference is a parsed generator reference of the form
// Family.method(arg, ...). Arguments are literals only: quoted strings,
// numbers, booleans, nil and bracketed lists of those.
type Reference struct {
	Family string
	Method string
	Args   []any
	Raw    string
}

func (r Reference) String() string {
	if r.Raw != "" {
		return r.Raw
	}
	return r.Family + "." + r.Method
}

// ParseReference parses raw without evaluating it.
func ParseReference(raw string) (Reference, error) {
	p := &refParser{src: strings.TrimSpace(raw), raw: raw}
	return p.parse()
}

type refParser struct {
	src string
	pos int
	raw string
}

func (p *refParser) parse() (Reference, error) {
	family := p.ident()
	if family == "" {
		return Reference{}, p.errorf("expected generator family")
	}
	if !p.consume('.') {
		return Reference{}, p.errorf("expected '.' after family %q", family)
	}
	method := p.ident()
	if method == "" {
		return Reference{}, p.errorf("expected method name")
	}

	ref := Reference{Family: family, Method: method, Raw: p.raw}
	p.skipSpace()
	if p.consume('(') {
		args, err := p.list(')')
		if err != nil {
			return Reference{}, err
		}
		ref.Args = args
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Reference{}, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return ref, nil
}

// list parses comma separated values up to and including the closing rune.
func (p *refParser) list(closing byte) ([]any, error) {
	values := []any{}
	p.skipSpace()
	if p.consume(closing) {
		return values, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		p.skipSpace()
		if p.consume(closing) {
			return values, nil
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' or '%c'", closing)
		}
	}
}

func (p *refParser) value() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '\'' || c == '"':
		return p.quoted(c)
	case c == '[':
		p.pos++
		return p.list(']')
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		word := p.ident()
		switch word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "nil", "null":
			return nil, nil
		case "":
			return nil, p.errorf("unexpected character %q", c)
		default:
			return nil, p.errorf("bare identifier %q is not a literal", word)
		}
	}
}

func (p *refParser) quoted(quote byte) (string, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *refParser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eE_", p.src[p.pos]) >= 0 {
		p.pos++
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if i, err := strconv.Atoi(text); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}

func (p *refParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		if p.pos == start && unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *refParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *refParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at offset %d: %s", errspkg.ErrInvalidReference, p.raw, p.pos, fmt.Sprintf(format, args...))
}
