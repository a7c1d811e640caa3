// Package builder applies field rules to records and expands split fields
// into batches of correlated child records.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/drblury/fakeflow/internal/runtime/config"
	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	"github.com/drblury/fakeflow/internal/runtime/record"
	"github.com/drblury/fakeflow/internal/runtime/resolver"
)

// RandomMultiplyMax is the upper bound of the random repeat count used when a
// rule is multiplied with a count of 0.
const RandomMultiplyMax = 999

// Rule is a compiled FieldRule.
type Rule struct {
	Field record.Path
	// Faker is nil for literal rules.
	Faker *resolver.Compiled
	Value any
	// Multiply is only meaningful when Multiplied is set; 0 means random.
	Multiply   int
	Multiplied bool
}

// Compile validates rules and binds their generator references against
// registry. All problems are reported together.
func Compile(rules []config.FieldRule, registry *resolver.Registry) ([]Rule, error) {
	if registry == nil {
		registry = resolver.DefaultRegistry
	}
	out := make([]Rule, 0, len(rules))
	var errs []error
	for _, fr := range rules {
		rule, err := compileRule(fr, registry)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", fr.Field, err))
			continue
		}
		out = append(out, rule)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func compileRule(fr config.FieldRule, registry *resolver.Registry) (Rule, error) {
	path, err := record.ParsePath(fr.Field)
	if err != nil {
		return Rule{}, err
	}
	rule := Rule{Field: path, Value: plainLiteral(fr.Value)}

	switch {
	case fr.Faker != "" && fr.Value != nil:
		return Rule{}, fmt.Errorf("%w: faker and value are mutually exclusive", errspkg.ErrInvalidArgument)
	case fr.Faker != "":
		compiled, err := registry.Compile(fr.Faker)
		if err != nil {
			return Rule{}, err
		}
		rule.Faker = compiled
	case fr.Value == nil:
		return Rule{}, fmt.Errorf("%w: either faker or value is required", errspkg.ErrInvalidArgument)
	}

	if fr.Multiply != nil {
		if *fr.Multiply < 0 {
			return Rule{}, fmt.Errorf("%w: multiply cannot be negative, got %d", errspkg.ErrInvalidArgument, *fr.Multiply)
		}
		rule.Multiply = *fr.Multiply
		rule.Multiplied = true
	}
	return rule, nil
}

// plainLiteral converts a literal into the types records hold, so every codec
// can encode it. Times become RFC 3339 strings.
func plainLiteral(v any) any {
	switch typed := v.(type) {
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	case []string:
		out := make([]any, len(typed))
		for i, s := range typed {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = plainLiteral(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, s := range typed {
			out[k] = s
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = plainLiteral(inner)
		}
		return out
	default:
		return v
	}
}

// Builder produces field values from an injected random source.
type Builder struct {
	rng *gofakeit.Faker
	now func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the clock stamped on child records.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// New returns a Builder drawing from rng. A nil rng gets a randomly seeded
// faker.
func New(rng *gofakeit.Faker, opts ...Option) *Builder {
	if rng == nil {
		rng = gofakeit.New(0)
	}
	b := &Builder{rng: rng, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Apply runs rules against rec in order. With overwrite any existing value is
// replaced, otherwise the new value is collected alongside it. Templates are
// interpolated against source, or against rec itself when source is nil.
func (b *Builder) Apply(rec record.Record, rules []Rule, source record.Record, overwrite bool) error {
	if rec == nil {
		return errspkg.ErrRecordRequired
	}
	if source == nil {
		source = rec
	}
	for _, rule := range rules {
		if overwrite {
			rec.Remove(rule.Field)
		}
		value, err := b.Value(rule, source)
		if err != nil {
			return fmt.Errorf("field %s: %w", rule.Field, err)
		}
		if overwrite {
			rec.Set(rule.Field, value)
		} else if err := rec.Append(rule.Field, value); err != nil {
			return fmt.Errorf("field %s: %w", rule.Field, err)
		}
	}
	return nil
}

// Value produces the value of one rule: a sequence of independent draws when
// the rule is multiplied, a single draw otherwise.
func (b *Builder) Value(rule Rule, source record.Record) (any, error) {
	if !rule.Multiplied {
		return b.single(rule, source)
	}
	n := rule.Multiply
	if n == 0 {
		n = b.rng.Number(1, RandomMultiplyMax)
	}
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := b.single(rule, source)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (b *Builder) single(rule Rule, source record.Record) (any, error) {
	if rule.Faker != nil {
		return rule.Faker.Resolve(b.rng, source)
	}
	// Interpolate copies nested literals, so records never share them.
	return record.Interpolate(rule.Value, source)
}
