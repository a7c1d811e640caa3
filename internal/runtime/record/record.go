// Package record holds the generated event type and the field-path helpers the
// generator uses to read, write and interpolate nested fields.
package record

import (
	"fmt"
	"time"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

const (
	// TimestampField and VersionField are housekeeping fields stamped on every
	// new record.
	TimestampField = "@timestamp"
	VersionField   = "@version"

	recordVersion = "1"
)

// Record is one generated event: a nested mapping of field names to scalars,
// sequences ([]any) or nested mappings (map[string]any).
type Record map[string]any

// New returns an otherwise empty record stamped with the housekeeping fields.
func New(now time.Time) Record {
	return Record{
		TimestampField: now.UTC().Format(time.RFC3339Nano),
		VersionField:   recordVersion,
	}
}

// Get returns the value at p.
func (r Record) Get(p Path) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var current map[string]any = r
	for i, seg := range p {
		value, ok := current[seg]
		if !ok {
			return nil, false
		}
		if i == len(p)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// Has reports whether a value exists at p.
func (r Record) Has(p Path) bool {
	_, ok := r.Get(p)
	return ok
}

// Set writes v at p, creating intermediate mappings and replacing non-mapping
// intermediates.
func (r Record) Set(p Path, v any) {
	if len(p) == 0 {
		return
	}
	var current map[string]any = r
	for _, seg := range p[:len(p)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}
		current = next
	}
	current[p[len(p)-1]] = v
}

// Remove deletes the value at p. Removing an absent field is a no-op.
func (r Record) Remove(p Path) {
	if len(p) == 0 {
		return
	}
	var current map[string]any = r
	for _, seg := range p[:len(p)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, p[len(p)-1])
}

// Append sets v at p, keeping any previous value: the result is a sequence
// holding the old value(s) followed by v. A sequence v is appended element-wise.
// Append fails with ErrFieldConflict, leaving r untouched, when an
// intermediate segment of p already holds a value that is not a mapping.
func (r Record) Append(p Path, v any) error {
	if err := r.checkIntermediates(p); err != nil {
		return err
	}
	old, ok := r.Get(p)
	if !ok {
		r.Set(p, v)
		return nil
	}
	merged := asSequence(old)
	merged = append(merged, asSequence(v)...)
	r.Set(p, merged)
	return nil
}

func (r Record) checkIntermediates(p Path) error {
	if len(p) == 0 {
		return nil
	}
	var current map[string]any = r
	for i, seg := range p[:len(p)-1] {
		value, ok := current[seg]
		if !ok {
			return nil
		}
		next, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s holds %T, cannot set %s", errspkg.ErrFieldConflict, p[:i+1], value, p)
		}
		current = next
	}
	return nil
}

// Merge copies every top-level entry of other into r, nesting mappings.
func (r Record) Merge(other Record) {
	mergeMaps(r, other)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneValue(map[string]any(r)).(map[string]any))
}

// Plain returns r as a plain nested map.
func (r Record) Plain() map[string]any {
	return map[string]any(r)
}

// StripHousekeeping removes the timestamp and version stamps.
func (r Record) StripHousekeeping() {
	delete(r, TimestampField)
	delete(r, VersionField)
}

func asSequence(v any) []any {
	if seq, ok := v.([]any); ok {
		out := make([]any, len(seq))
		copy(out, seq)
		return out
	}
	return []any{v}
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = cloneValue(v)
	}
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case Record:
		return cloneValue(map[string]any(typed))
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
