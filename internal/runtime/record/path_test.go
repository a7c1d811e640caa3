package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		raw  string
		want Path
	}{
		{"first_name", Path{"first_name"}},
		{"[name][first]", Path{"name", "first"}},
		{"[id]", Path{"id"}},
		{"name.first", Path{"name", "first"}},
		{"@timestamp", Path{"@timestamp"}},
		{"  [a][b][c]  ", Path{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePath(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePathRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "[a", "[a]b", "[]", "a..b", "a.[b]", "[a[b]]"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePath(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errspkg.ErrInvalidFieldPath))
		})
	}
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "[name][first]", MustParsePath("name.first").String())
	assert.Equal(t, "[id]", MustParsePath("id").String())
}

func TestMustParsePathPanics(t *testing.T) {
	assert.Panics(t, func() { MustParsePath("[broken") })
}
