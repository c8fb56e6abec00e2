package dialect

import "strconv"

// Style is the placeholder convention a dialect renders parameters with.
type Style uint8

const (
	// Question is the repeated token `?` (MySQL, SQLite).
	Question Style = iota
	// Dollar is the numbered token `$n` (PostgreSQL).
	Dollar
)

// StyleOf returns the placeholder style of the given dialect.
func StyleOf(dialect string) Style {
	if dialect == Postgres {
		return Dollar
	}
	return Question
}

// Counter issues placeholders for one statement. Numbered styles track
// the next index; repeated-token styles only count. A Counter is scoped
// to a single statement: numbering state must never leak into the next
// one, so callers create a fresh Counter per statement.
type Counter struct {
	style Style
	next  int
}

// NewCounter returns a counter starting at index 1.
func NewCounter(style Style) *Counter {
	return &Counter{style: style, next: 1}
}

// NewCounterAt returns a counter whose first issued placeholder has the
// given index. Builders use it to seed clause groups in precedence
// order.
func NewCounterAt(style Style, start int) *Counter {
	return &Counter{style: style, next: start}
}

// Next issues n placeholders and advances the counter by n.
func (c *Counter) Next(n int) []string {
	out := make([]string, n)
	for i := range out {
		switch c.style {
		case Dollar:
			out[i] = "$" + strconv.Itoa(c.next)
		default:
			out[i] = "?"
		}
		c.next++
	}
	return out
}

// Pos returns the index the next issued placeholder will carry.
func (c *Counter) Pos() int { return c.next }

// Placeholders returns one placeholder per name in the given style,
// numbered from 1. Names are only counted; their content is ignored.
func Placeholders(style Style, names []string) []string {
	return NewCounter(style).Next(len(names))
}
