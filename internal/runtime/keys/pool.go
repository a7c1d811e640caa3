// Package keys manages the correlation keys of a run: the single primary key
// and the pool of foreign keys sampled into split children.
package keys

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	"github.com/drblury/fakeflow/internal/runtime/resolver"
)

const (
	// KeyLength is the number of digits of generated keys.
	KeyLength = 12
	// DefaultPoolSize is used when neither a split count nor a target count
	// bounds the pool.
	DefaultPoolSize = 1000
	// MaxAttemptsPerKey bounds the draws GeneratePool makes per requested key.
	MaxAttemptsPerKey = 100
)

// GeneratePrimaryKey returns a fresh KeyLength-digit key.
func GeneratePrimaryKey(rng *gofakeit.Faker) (string, error) {
	return resolver.NumberString(rng, KeyLength, false)
}

// PoolSize picks the foreign key pool size: the split count when positive,
// else the target count when positive, else DefaultPoolSize.
func PoolSize(splitCount, targetCount int) int {
	switch {
	case splitCount > 0:
		return splitCount
	case targetCount > 0:
		return targetCount
	default:
		return DefaultPoolSize
	}
}

// Pool is an ordered set of unique keys. It is immutable once built.
type Pool struct {
	keys  []string
	index map[string]struct{}
}

// NewPool builds a pool from supplied keys, dropping duplicates while keeping
// first-seen order.
func NewPool(keys []string) (*Pool, error) {
	p := &Pool{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		p.add(k)
	}
	if len(p.keys) == 0 {
		return nil, errspkg.ErrEmptyKeyPool
	}
	return p, nil
}

// GeneratePool draws keys until size distinct keys exist. It gives up with
// ErrKeySpaceExhausted after size*MaxAttemptsPerKey draws.
func GeneratePool(rng *gofakeit.Faker, size int) (*Pool, error) {
	return generatePool(size, func() (string, error) { return GeneratePrimaryKey(rng) })
}

func generatePool(size int, draw func() (string, error)) (*Pool, error) {
	if size <= 0 {
		return nil, errspkg.ErrEmptyKeyPool
	}
	p := &Pool{keys: make([]string, 0, size), index: make(map[string]struct{}, size)}
	for attempts := 0; len(p.keys) < size; attempts++ {
		if attempts >= size*MaxAttemptsPerKey {
			return nil, fmt.Errorf("%w: %d of %d keys after %d draws", errspkg.ErrKeySpaceExhausted, len(p.keys), size, attempts)
		}
		k, err := draw()
		if err != nil {
			return nil, err
		}
		p.add(k)
	}
	return p, nil
}

func (p *Pool) add(k string) {
	if _, ok := p.index[k]; ok {
		return
	}
	p.index[k] = struct{}{}
	p.keys = append(p.keys, k)
}

// Len returns the number of keys.
func (p *Pool) Len() int { return len(p.keys) }

// Contains reports whether k belongs to the pool.
func (p *Pool) Contains(k string) bool {
	_, ok := p.index[k]
	return ok
}

// Keys returns a copy of the keys in pool order.
func (p *Pool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Batch returns a sampler with an empty used set. Use one sampler per split
// batch.
func (p *Pool) Batch() *Sampler {
	return &Sampler{pool: p, used: make(map[string]struct{})}
}

// Sampler draws keys from a pool without repeating one until every key of the
// pool has been drawn.
type Sampler struct {
	pool *Pool
	used map[string]struct{}
}

// Next draws uniformly from the keys not used yet in this batch. When every
// key is used the used set is cleared and the draw comes from the full pool.
func (s *Sampler) Next(rng *gofakeit.Faker) string {
	available := s.available()
	if len(available) == 0 {
		clear(s.used)
		available = s.pool.keys
	}
	k := available[rng.Number(0, len(available)-1)]
	s.used[k] = struct{}{}
	return k
}

// Used returns how many distinct keys were drawn since the last reset.
func (s *Sampler) Used() int { return len(s.used) }

func (s *Sampler) available() []string {
	if len(s.used) == 0 {
		return s.pool.keys
	}
	out := make([]string, 0, len(s.pool.keys)-len(s.used))
	for _, k := range s.pool.keys {
		if _, ok := s.used[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
