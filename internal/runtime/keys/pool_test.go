package keys

import (
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

func TestGeneratePrimaryKey(t *testing.T) {
	k, err := GeneratePrimaryKey(gofakeit.New(1))
	require.NoError(t, err)
	assert.Len(t, k, KeyLength)
	assert.Regexp(t, `^[1-9][0-9]+$`, k)
}

func TestPoolSize(t *testing.T) {
	assert.Equal(t, 10, PoolSize(10, 500))
	assert.Equal(t, 500, PoolSize(0, 500))
	assert.Equal(t, 500, PoolSize(-1, 500))
	assert.Equal(t, DefaultPoolSize, PoolSize(0, 0))
}

func TestNewPoolDeduplicates(t *testing.T) {
	p, err := NewPool([]string{"1", "2", "1", "3", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, p.Keys())
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Contains("3"))
	assert.False(t, p.Contains("4"))

	_, err = NewPool(nil)
	assert.True(t, errors.Is(err, errspkg.ErrEmptyKeyPool))
}

func TestGeneratePoolIsUnique(t *testing.T) {
	p, err := GeneratePool(gofakeit.New(2), 250)
	require.NoError(t, err)
	require.Equal(t, 250, p.Len())

	seen := map[string]bool{}
	for _, k := range p.Keys() {
		assert.Len(t, k, KeyLength)
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestGeneratePoolRetriesDuplicates(t *testing.T) {
	draws := []string{"a", "a", "b", "a", "c"}
	i := 0
	p, err := generatePool(3, func() (string, error) {
		k := draws[i]
		i++
		return k, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
	assert.Equal(t, 5, i)
}

func TestGeneratePoolGuardsAgainstTinyKeySpace(t *testing.T) {
	_, err := generatePool(2, func() (string, error) { return "same", nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, errspkg.ErrKeySpaceExhausted))

	_, err = generatePool(0, func() (string, error) { return "x", nil })
	assert.True(t, errors.Is(err, errspkg.ErrEmptyKeyPool))
}

func TestSamplerDoesNotRepeatUntilExhausted(t *testing.T) {
	p, err := NewPool([]string{"1", "2", "3", "4", "5"})
	require.NoError(t, err)
	rng := gofakeit.New(3)
	s := p.Batch()

	first := map[string]bool{}
	for i := 0; i < p.Len(); i++ {
		k := s.Next(rng)
		assert.True(t, p.Contains(k))
		assert.False(t, first[k], "key %s repeated before exhaustion", k)
		first[k] = true
	}
	assert.Equal(t, p.Len(), s.Used())

	// The pool is exhausted: the next draw resets and still returns a key.
	k := s.Next(rng)
	assert.True(t, p.Contains(k))
	assert.Equal(t, 1, s.Used())
}

func TestSamplerSingleKeyPool(t *testing.T) {
	p, err := NewPool([]string{"only"})
	require.NoError(t, err)
	s := p.Batch()
	rng := gofakeit.New(4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, "only", s.Next(rng))
	}
}

func TestBatchesAreIndependent(t *testing.T) {
	p, err := NewPool([]string{"a", "b"})
	require.NoError(t, err)
	rng := gofakeit.New(5)

	a := p.Batch()
	a.Next(rng)
	b := p.Batch()
	assert.Equal(t, 0, b.Used())
	assert.Equal(t, 1, a.Used())
}
