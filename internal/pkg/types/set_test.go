package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	t.Run("seeds from constructor arguments", func(t *testing.T) {
		set := NewSet("a", "b", "a")

		assert.Len(t, set, 2)
		assert.True(t, set.Contains("a"))
		assert.True(t, set.Contains("b"))
	})

	t.Run("add is idempotent", func(t *testing.T) {
		set := NewSet[string]()
		set.Add("a")
		set.Add("a", "a")

		assert.Len(t, set, 1)
	})

	t.Run("delete removes elements and tolerates absentees", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		set.Delete(2, 99)

		assert.False(t, set.Contains(2))
		assert.Len(t, set, 2)
	})

	t.Run("slice conversion holds every element exactly once", func(t *testing.T) {
		set := NewSet("a", "b", "c")

		require.ElementsMatch(t, []string{"a", "b", "c"}, set.ToSlice())
	})

	t.Run("iterator walks every element", func(t *testing.T) {
		set := NewSet(1, 2, 3)

		var total int
		for v := range set.ToIter() {
			total += v
		}
		assert.Equal(t, 6, total)
	})
}
