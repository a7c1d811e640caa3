package record

import (
	"fmt"
	"strings"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

// Path addresses a (possibly nested) field of a Record.
type Path []string

// ParsePath accepts the bracket form "[a][b]", the dotted form "a.b" and bare
// top-level names.
func ParsePath(raw string) (Path, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", errspkg.ErrInvalidFieldPath)
	}
	if strings.HasPrefix(s, "[") {
		return parseBracketPath(raw, s)
	}

	segments := strings.Split(s, ".")
	for _, seg := range segments {
		if seg == "" || strings.ContainsAny(seg, "[]") {
			return nil, fmt.Errorf("%w: %q", errspkg.ErrInvalidFieldPath, raw)
		}
	}
	return Path(segments), nil
}

func parseBracketPath(raw, s string) (Path, error) {
	var segments []string
	for len(s) > 0 {
		if s[0] != '[' {
			return nil, fmt.Errorf("%w: %q", errspkg.ErrInvalidFieldPath, raw)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: unbalanced brackets in %q", errspkg.ErrInvalidFieldPath, raw)
		}
		seg := s[1:end]
		if seg == "" || strings.ContainsRune(seg, '[') {
			return nil, fmt.Errorf("%w: %q", errspkg.ErrInvalidFieldPath, raw)
		}
		segments = append(segments, seg)
		s = s[end+1:]
	}
	return Path(segments), nil
}

// MustParsePath panics on invalid input. Intended for constants and tests.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in bracket form.
func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('[')
		b.WriteString(seg)
		b.WriteByte(']')
	}
	return b.String()
}
