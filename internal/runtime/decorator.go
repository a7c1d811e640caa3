package runtime

import (
	"os"
	"slices"

	recordpkg "github.com/drblury/fakeflow/internal/runtime/record"
)

// Field names written by DefaultDecorator.
const (
	HostField = "host"
	TypeField = "type"
	TagsField = "tags"
)

// Decorator stamps process metadata onto a top-level record before it is
// enqueued. Split children are never decorated.
type Decorator interface {
	Decorate(rec recordpkg.Record, origin string)
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(rec recordpkg.Record, origin string)

func (f DecoratorFunc) Decorate(rec recordpkg.Record, origin string) { f(rec, origin) }

// DefaultDecorator sets the host, fills type when unset, merges tags and
// collects add_fields values. AddFields values may hold %{field} templates;
// ones that cannot be resolved are added verbatim.
type DefaultDecorator struct {
	Host      string
	Type      string
	Tags      []string
	AddFields map[string]string
}

func (d DefaultDecorator) Decorate(rec recordpkg.Record, _ string) {
	if d.Type != "" {
		if _, ok := rec[TypeField]; !ok {
			rec[TypeField] = d.Type
		}
	}
	if len(d.Tags) > 0 {
		rec[TagsField] = mergeTags(rec[TagsField], d.Tags)
	}

	// Sorted so collected values come out in a stable order.
	keys := make([]string, 0, len(d.AddFields))
	for k := range d.AddFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		field, err := recordpkg.Sprintf(k, rec)
		if err != nil {
			field = k
		}
		path, err := recordpkg.ParsePath(field)
		if err != nil {
			continue
		}
		value, err := recordpkg.Sprintf(d.AddFields[k], rec)
		if err != nil {
			value = d.AddFields[k]
		}
		// A conflicting add_field is skipped like an unparsable one.
		_ = rec.Append(path, value)
	}

	if d.Host != "" {
		rec[HostField] = d.Host
	}
}

func mergeTags(existing any, tags []string) []any {
	var out []any
	switch typed := existing.(type) {
	case nil:
	case []any:
		out = append(out, typed...)
	default:
		out = append(out, typed)
	}
	for _, tag := range tags {
		if !slices.Contains(out, any(tag)) {
			out = append(out, tag)
		}
	}
	return out
}

// HostIdentity resolves the host name stamped on every record.
type HostIdentity func() (string, error)

// OSHostname is the default HostIdentity.
func OSHostname() (string, error) { return os.Hostname() }
