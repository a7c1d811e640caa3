// Package resolver turns generator references such as "Name.first_name" or
// "Internet.user_name('%{first} %{last}', ['_'])" into concrete values.
//
// References are matched against an explicit Registry of (family, method)
// pairs; they are parsed with a closed literal-only grammar and never
// evaluated. All randomness comes from the *gofakeit.Faker passed in by the
// caller, so a seeded faker yields reproducible output.
package resolver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	"github.com/drblury/fakeflow/internal/runtime/record"
)

// GeneratorFunc produces one value for a call.
type GeneratorFunc func(c *Call) (any, error)

type method struct {
	name string
	fn   GeneratorFunc
}

type family struct {
	name    string
	methods map[string]method
}

// Registry maps (family, method) pairs to generator functions. Lookups are
// case-insensitive and ignore underscores, so "first_name" and "firstName"
// address the same method.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family
}

// DefaultRegistry holds the built-in families.
var DefaultRegistry = NewDefaultRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]*family)}
}

// NewDefaultRegistry creates a registry pre-populated with the built-in
// families.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Register adds or replaces a generator.
func (r *Registry) Register(familyName, methodName string, fn GeneratorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(familyName)
	fam, ok := r.families[key]
	if !ok {
		fam = &family{name: familyName, methods: make(map[string]method)}
		r.families[key] = fam
	}
	fam.methods[normalize(methodName)] = method{name: methodName, fn: fn}
}

// Lookup returns the generator registered for the pair.
func (r *Registry) Lookup(familyName, methodName string) (GeneratorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fam, ok := r.families[normalize(familyName)]
	if !ok {
		return nil, &errspkg.UnknownGeneratorError{Family: familyName}
	}
	m, ok := fam.methods[normalize(methodName)]
	if !ok {
		return nil, &errspkg.UnknownGeneratorError{Family: familyName, Method: methodName}
	}
	return m.fn, nil
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.families))
	for _, fam := range r.families {
		names = append(names, fam.name)
	}
	sort.Strings(names)
	return names
}

// Methods returns the method names of a family, sorted. Unknown families
// yield nil.
func (r *Registry) Methods(familyName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fam, ok := r.families[normalize(familyName)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fam.methods))
	for _, m := range fam.methods {
		names = append(names, m.name)
	}
	sort.Strings(names)
	return names
}

// Compile parses raw and binds it to its generator.
func (r *Registry) Compile(raw string) (*Compiled, error) {
	ref, err := ParseReference(raw)
	if err != nil {
		return nil, err
	}
	fn, err := r.Lookup(ref.Family, ref.Method)
	if err != nil {
		return nil, err
	}
	return &Compiled{Ref: ref, fn: fn, templated: hasTemplate(ref.Args)}, nil
}

// Resolve compiles raw and resolves it once.
func (r *Registry) Resolve(raw string, rng *gofakeit.Faker, source record.Record) (any, error) {
	compiled, err := r.Compile(raw)
	if err != nil {
		return nil, err
	}
	return compiled.Resolve(rng, source)
}

// Register adds a generator to the default registry.
func Register(familyName, methodName string, fn GeneratorFunc) {
	DefaultRegistry.Register(familyName, methodName, fn)
}

// Compile compiles raw against the default registry.
func Compile(raw string) (*Compiled, error) {
	return DefaultRegistry.Compile(raw)
}

// Compiled is a reference bound to its generator function.
type Compiled struct {
	Ref       Reference
	fn        GeneratorFunc
	templated bool
}

// Resolve produces one value. String arguments holding %{field} templates
// are interpolated against source first.
func (c *Compiled) Resolve(rng *gofakeit.Faker, source record.Record) (any, error) {
	args := c.Ref.Args
	if c.templated {
		interpolated, err := record.Interpolate(args, source)
		if err != nil {
			return nil, err
		}
		args = interpolated.([]any)
	}

	value, err := c.fn(&Call{Rand: rng, Ref: c.Ref, Args: args})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.Ref, err)
	}
	return value, nil
}

func hasTemplate(args []any) bool {
	for _, arg := range args {
		switch typed := arg.(type) {
		case string:
			if strings.Contains(typed, "%{") {
				return true
			}
		case []any:
			if hasTemplate(typed) {
				return true
			}
		}
	}
	return false
}
