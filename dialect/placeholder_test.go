package dialect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleOf(t *testing.T) {
	assert.Equal(t, Dollar, StyleOf(Postgres))
	assert.Equal(t, Question, StyleOf(MySQL))
	assert.Equal(t, Question, StyleOf(SQLite))
	assert.Equal(t, Question, StyleOf("unknown"))
}

func TestPlaceholders(t *testing.T) {
	names := []string{"id", "name", "stock"}

	t.Run("question", func(t *testing.T) {
		assert.Equal(t, []string{"?", "?", "?"}, Placeholders(Question, names))
	})
	t.Run("dollar", func(t *testing.T) {
		assert.Equal(t, []string{"$1", "$2", "$3"}, Placeholders(Dollar, names))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Placeholders(Dollar, nil))
	})
	t.Run("fresh numbering per call", func(t *testing.T) {
		assert.Equal(t, Placeholders(Dollar, names), Placeholders(Dollar, names))
	})
}

func TestCounterProperties(t *testing.T) {
	for _, n := range []int{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			c := NewCounter(Dollar)
			got := c.Next(n)
			require.Len(t, got, n)
			for i, ph := range got {
				assert.Equal(t, fmt.Sprintf("$%d", i+1), ph)
			}
			assert.Equal(t, 1+n, c.Pos())

			q := NewCounter(Question)
			qgot := q.Next(n)
			require.Len(t, qgot, n)
			for _, ph := range qgot {
				assert.Equal(t, "?", ph)
			}
			assert.Equal(t, 1+n, q.Pos())
		})
	}
}

func TestCounterAt(t *testing.T) {
	c := NewCounterAt(Dollar, 4)
	assert.Equal(t, []string{"$4", "$5"}, c.Next(2))
	assert.Equal(t, 6, c.Pos())

	q := NewCounterAt(Question, 4)
	assert.Equal(t, []string{"?", "?"}, q.Next(2))
	assert.Equal(t, 6, q.Pos())
}
