package resolver

import (
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	"github.com/drblury/fakeflow/internal/runtime/record"
)

func TestRegistryLookupIsNormalized(t *testing.T) {
	r := NewRegistry()
	r.Register("Team", "mascot_name", func(c *Call) (any, error) { return "otter", nil })

	for _, raw := range []string{"Team.mascot_name", "team.mascotName", "TEAM.MASCOTNAME"} {
		compiled, err := r.Compile(raw)
		require.NoError(t, err, raw)
		v, err := compiled.Resolve(gofakeit.New(1), nil)
		require.NoError(t, err)
		assert.Equal(t, "otter", v)
	}

	assert.Equal(t, []string{"Team"}, r.Families())
	assert.Equal(t, []string{"mascot_name"}, r.Methods("team"))
	assert.Nil(t, r.Methods("nope"))
}

func TestCompileUnknownGenerator(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Compile("Pokemon.name")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errspkg.ErrUnknownGenerator))
	var unknown *errspkg.UnknownGeneratorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Pokemon", unknown.Family)

	_, err = r.Compile("Name.nickname")
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Name", unknown.Family)
	assert.Equal(t, "nickname", unknown.Method)
}

func TestResolveInterpolatesArguments(t *testing.T) {
	r := NewRegistry()
	r.Register("Echo", "say", func(c *Call) (any, error) {
		s, err := c.String(0, "")
		return s, err
	})

	v, err := r.Resolve("Echo.say('hello %{[name][first]}')", gofakeit.New(1), record.Record{
		"name": map[string]any{"first": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello Ada", v)

	_, err = r.Resolve("Echo.say('hello %{missing}')", gofakeit.New(1), record.Record{})
	assert.True(t, errors.Is(err, errspkg.ErrTemplateFieldMissing))
}

func TestResolveWrapsGeneratorErrors(t *testing.T) {
	_, err := DefaultRegistry.Resolve("Number.number('ten')", gofakeit.New(1), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errspkg.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "Number.number('ten')")
}

func TestPackageLevelHelpers(t *testing.T) {
	previous := DefaultRegistry
	defer func() { DefaultRegistry = previous }()
	DefaultRegistry = NewRegistry()

	Register("Fixed", "value", func(c *Call) (any, error) { return 42, nil })
	compiled, err := Compile("Fixed.value")
	require.NoError(t, err)
	v, err := compiled.Resolve(gofakeit.New(3), nil)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCallAccessors(t *testing.T) {
	c := &Call{Ref: Reference{Method: "m"}, Args: []any{3, 2.0, "s", []any{"a", "b"}, true, nil, 1.5}}

	i, err := c.Int(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	i, err = c.Int(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	_, err = c.Int(6, 0)
	assert.True(t, errors.Is(err, errspkg.ErrInvalidArgument))
	i, err = c.Int(5, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, i)
	i, err = c.Int(99, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, i)

	f, err := c.Float(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	s, err := c.String(2, "")
	require.NoError(t, err)
	assert.Equal(t, "s", s)
	_, err = c.String(0, "")
	assert.Error(t, err)

	list, err := c.Strings(3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)
	list, err = c.Strings(2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, list)

	b, err := c.Bool(4, false)
	require.NoError(t, err)
	assert.True(t, b)
	_, err = c.Bool(2, false)
	assert.Error(t, err)
}
