package builder

import (
	"fmt"

	"github.com/drblury/fakeflow/internal/runtime/keys"
	"github.com/drblury/fakeflow/internal/runtime/record"
)

// RandomSplitMax is the upper bound of the random child count used when a
// split has no positive count. Zero children is a valid outcome.
const RandomSplitMax = 99

// Split describes how a parent record fans out into child records.
type Split struct {
	Field   record.Path
	Literal []Rule
	Faker   []Rule
	Count   int

	// ForeignKey and Pool are set together when children are correlated.
	ForeignKey record.Path
	Pool       *keys.Pool
}

// Correlated reports whether children receive a foreign key.
func (s Split) Correlated() bool { return s.Pool != nil && len(s.ForeignKey) > 0 }

// Expand replaces the split field of parent with a batch of child records and
// returns how many children it built.
func (b *Builder) Expand(parent record.Record, split Split) (int, error) {
	if parent == nil {
		return 0, fmt.Errorf("expand %s: nil parent", split.Field)
	}
	parent.Remove(split.Field)

	count := split.Count
	if count <= 0 {
		count = b.rng.Number(0, RandomSplitMax)
	}

	var sampler *keys.Sampler
	if split.Correlated() {
		sampler = split.Pool.Batch()
	}

	children := make([]any, 0, count)
	for i := 0; i < count; i++ {
		child := record.New(b.now())
		if err := b.Apply(child, split.Faker, parent, false); err != nil {
			return i, fmt.Errorf("split %s child %d: %w", split.Field, i, err)
		}
		if err := b.Apply(child, split.Literal, parent, false); err != nil {
			return i, fmt.Errorf("split %s child %d: %w", split.Field, i, err)
		}
		if sampler != nil {
			child.Set(split.ForeignKey, sampler.Next(b.rng))
		}
		child.StripHousekeeping()
		children = append(children, child.Plain())
	}
	parent.Set(split.Field, children)
	return count, nil
}
