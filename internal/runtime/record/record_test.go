package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

func TestNewStampsHousekeepingFields(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("x", 3600))
	rec := New(now)

	assert.Equal(t, "2024-05-06T06:08:09Z", rec[TimestampField])
	assert.Equal(t, "1", rec[VersionField])

	rec.StripHousekeeping()
	assert.Empty(t, rec)
}

func TestSetAndGetNested(t *testing.T) {
	rec := Record{}
	rec.Set(MustParsePath("[name][first]"), "Ada")
	rec.Set(MustParsePath("[name][last]"), "Lovelace")

	v, ok := rec.Get(MustParsePath("[name][first]"))
	require.True(t, ok)
	assert.Equal(t, "Ada", v)
	assert.Equal(t, map[string]any{"first": "Ada", "last": "Lovelace"}, rec["name"])

	_, ok = rec.Get(MustParsePath("[name][middle]"))
	assert.False(t, ok)
	_, ok = rec.Get(MustParsePath("[name][first][x]"))
	assert.False(t, ok)
}

func TestSetReplacesScalarIntermediate(t *testing.T) {
	rec := Record{"name": "flat"}
	rec.Set(MustParsePath("[name][first]"), "Ada")
	assert.Equal(t, map[string]any{"first": "Ada"}, rec["name"])
}

func TestRemoveIsIdempotent(t *testing.T) {
	rec := Record{"a": map[string]any{"b": 1}}

	assert.NotPanics(t, func() {
		rec.Remove(MustParsePath("missing"))
		rec.Remove(MustParsePath("[a][missing]"))
		rec.Remove(MustParsePath("[nope][deeper]"))
		rec.Remove(nil)
	})

	rec.Remove(MustParsePath("[a][b]"))
	rec.Remove(MustParsePath("[a][b]"))
	assert.Equal(t, Record{"a": map[string]any{}}, rec)
}

func TestAppendCollectsValues(t *testing.T) {
	p := MustParsePath("name")

	rec := Record{}
	rec.Append(p, "v0")
	assert.Equal(t, "v0", rec["name"])

	rec.Append(p, "v1")
	assert.Equal(t, []any{"v0", "v1"}, rec["name"])

	rec.Append(p, []any{"v2", "v3"})
	assert.Equal(t, []any{"v0", "v1", "v2", "v3"}, rec["name"])
}

func TestAppendKeepsScalarIntermediate(t *testing.T) {
	rec := Record{"name": "old"}

	err := rec.Append(MustParsePath("[name][first]"), "new")
	require.ErrorIs(t, err, errspkg.ErrFieldConflict)
	assert.ErrorContains(t, err, "[name] holds string")
	assert.Equal(t, Record{"name": "old"}, rec)

	rec = Record{"name": map[string]any{"last": []any{"x"}}}
	err = rec.Append(MustParsePath("[name][last][0]"), "y")
	require.ErrorIs(t, err, errspkg.ErrFieldConflict)
	assert.Equal(t, Record{"name": map[string]any{"last": []any{"x"}}}, rec)
}

func TestAppendCreatesMissingIntermediates(t *testing.T) {
	rec := Record{"name": map[string]any{"last": "Lovelace"}}
	require.NoError(t, rec.Append(MustParsePath("[name][first]"), "Ada"))
	require.NoError(t, rec.Append(MustParsePath("[meta][source][kind]"), "test"))

	assert.Equal(t, Record{
		"name": map[string]any{"first": "Ada", "last": "Lovelace"},
		"meta": map[string]any{"source": map[string]any{"kind": "test"}},
	}, rec)
}

func TestAppendDoesNotAliasPreviousSequence(t *testing.T) {
	original := []any{"a"}
	rec := Record{"k": original}
	rec.Append(MustParsePath("k"), "b")

	assert.Equal(t, []any{"a"}, original)
	assert.Equal(t, []any{"a", "b"}, rec["k"])
}

func TestCloneIsDeep(t *testing.T) {
	rec := Record{"a": map[string]any{"b": []any{1, map[string]any{"c": 2}}}}
	clone := rec.Clone()

	clone.Set(MustParsePath("[a][b]"), "changed")
	assert.Equal(t, []any{1, map[string]any{"c": 2}}, rec["a"].(map[string]any)["b"])
}

func TestMergeNestsMappings(t *testing.T) {
	rec := Record{"name": map[string]any{"first": "Ada"}}
	rec.Merge(Record{"name": map[string]any{"last": "Lovelace"}, "id": "1"})

	assert.Equal(t, Record{
		"name": map[string]any{"first": "Ada", "last": "Lovelace"},
		"id":   "1",
	}, rec)
}
