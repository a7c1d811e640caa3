package record

import (
	"fmt"
	"strconv"
	"strings"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	"github.com/drblury/fakeflow/internal/runtime/jsoncodec"
)

const (
	templateOpen  = "%{"
	templateClose = '}'
)

// Sprintf replaces every %{field} in template with the value of that field in
// source. Referencing a field that does not exist is an error.
func Sprintf(template string, source Record) (string, error) {
	if !strings.Contains(template, templateOpen) {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, templateOpen)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])
		rest = rest[start+len(templateOpen):]

		end := strings.IndexByte(rest, templateClose)
		if end < 0 {
			return "", &errspkg.TemplateError{Template: template, Err: errspkg.ErrTemplateSyntax}
		}
		ref := rest[:end]
		rest = rest[end+1:]

		path, err := ParsePath(ref)
		if err != nil {
			return "", &errspkg.TemplateError{Template: template, Field: ref, Err: errspkg.ErrTemplateSyntax}
		}
		value, ok := source.Get(path)
		if !ok {
			return "", &errspkg.TemplateError{Template: template, Field: ref, Err: errspkg.ErrTemplateFieldMissing}
		}
		text, err := Stringify(value)
		if err != nil {
			return "", &errspkg.TemplateError{Template: template, Field: ref, Err: err}
		}
		b.WriteString(text)
	}
}

// Interpolate runs Sprintf over every string held in v, descending into
// sequences and mappings. Other values are returned unchanged.
func Interpolate(v any, source Record) (any, error) {
	switch typed := v.(type) {
	case string:
		return Sprintf(typed, source)
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			resolved, err := Interpolate(inner, source)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			resolved, err := Interpolate(inner, source)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// Stringify renders a field value the way templates embed it: scalars in
// their natural form, sequences and mappings as JSON.
func Stringify(v any) (string, error) {
	switch typed := v.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case int:
		return strconv.Itoa(typed), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	case []any, map[string]any, Record:
		data, err := jsoncodec.Marshal(typed)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return fmt.Sprint(typed), nil
	}
}
