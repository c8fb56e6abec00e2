package dao

import (
	"context"
	"strconv"
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/codec"
	"github.com/syssam/rowmap/dialect"
)

type stmtKind uint8

const (
	stmtNone stmtKind = iota
	stmtSelect
	stmtInsert
	stmtUpdate
	stmtDelete
)

// Query is a single-use statement builder. Clauses accumulate in any
// call order and render in SQL grammar order. Placeholders are assigned
// when a clause is declared, numbered across clause groups in the
// precedence SET, then WHERE, then HAVING; declare Update or Insert
// before the conditions that follow them so numbering matches the
// parameter order.
//
// Condition fragments carry their own operator; the builder appends the
// placeholder: Where("stock >") renders as "stock > $1". Values supplies
// the parameters in the same precedence order.
type Query[T rowmap.Entity] struct {
	drv   dialect.Driver
	style dialect.Style

	kind    stmtKind
	table   string
	columns []string
	inserts []string
	sets    []string
	wheres  []string
	havings []string
	groups  []string
	orders  []string
	joins   []string
	limit   int
	offset  int
	values  []rowmap.Value

	setCount    int
	whereCount  int
	havingCount int
}

// Find selects all columns.
func (q *Query[T]) Find() *Query[T] {
	q.kind = stmtSelect
	return q
}

// Select sets the select list. Expressions are passed through verbatim.
func (q *Query[T]) Select(columns ...string) *Query[T] {
	q.kind = stmtSelect
	q.columns = append(q.columns, columns...)
	return q
}

// From overrides the target table.
func (q *Query[T]) From(table string) *Query[T] {
	q.table = table
	return q
}

// Where adds condition fragments, each completed with the next
// placeholder and joined with AND.
func (q *Query[T]) Where(conds ...string) *Query[T] {
	for _, c := range conds {
		ph := dialect.NewCounterAt(q.style, 1+q.setCount+q.whereCount).Next(1)
		q.wheres = append(q.wheres, c+" "+ph[0])
		q.whereCount++
	}
	return q
}

// Having adds aggregate condition fragments. Their placeholders follow
// every SET and WHERE placeholder.
func (q *Query[T]) Having(conds ...string) *Query[T] {
	for _, c := range conds {
		ph := dialect.NewCounterAt(q.style, 1+q.setCount+q.whereCount+q.havingCount).Next(1)
		q.havings = append(q.havings, c+" "+ph[0])
		q.havingCount++
	}
	return q
}

// GroupBy adds grouping columns.
func (q *Query[T]) GroupBy(columns ...string) *Query[T] {
	q.groups = append(q.groups, columns...)
	return q
}

// OrderBy adds ordering expressions ("stock DESC").
func (q *Query[T]) OrderBy(exprs ...string) *Query[T] {
	q.orders = append(q.orders, exprs...)
	return q
}

// Join adds an inner join.
func (q *Query[T]) Join(table, on string) *Query[T] {
	q.joins = append(q.joins, "JOIN "+table+" ON "+on)
	return q
}

// LeftJoin adds a left outer join.
func (q *Query[T]) LeftJoin(table, on string) *Query[T] {
	q.joins = append(q.joins, "LEFT JOIN "+table+" ON "+on)
	return q
}

// CrossJoin adds a cross join.
func (q *Query[T]) CrossJoin(table string) *Query[T] {
	q.joins = append(q.joins, "CROSS JOIN "+table)
	return q
}

// NaturalJoin adds a natural join.
func (q *Query[T]) NaturalJoin(table string) *Query[T] {
	q.joins = append(q.joins, "NATURAL JOIN "+table)
	return q
}

// Limit caps the result size.
func (q *Query[T]) Limit(n int) *Query[T] {
	q.limit = n
	return q
}

// Offset skips the first n rows.
func (q *Query[T]) Offset(n int) *Query[T] {
	q.offset = n
	return q
}

// Insert builds an INSERT with one placeholder per column, numbered
// from 1.
func (q *Query[T]) Insert(columns ...string) *Query[T] {
	q.kind = stmtInsert
	q.columns = append(q.columns, columns...)
	ph := dialect.NewCounterAt(q.style, 1+q.setCount).Next(len(columns))
	q.inserts = append(q.inserts, ph...)
	q.setCount += len(columns)
	return q
}

// Update builds an UPDATE with one SET assignment per column. SET
// placeholders come first in the numbering.
func (q *Query[T]) Update(columns ...string) *Query[T] {
	q.kind = stmtUpdate
	for _, c := range columns {
		ph := dialect.NewCounterAt(q.style, 1+q.setCount).Next(1)
		q.sets = append(q.sets, c+" = "+ph[0])
		q.setCount++
	}
	return q
}

// Delete builds a DELETE.
func (q *Query[T]) Delete() *Query[T] {
	q.kind = stmtDelete
	return q
}

// Values appends statement parameters. Supply them in placeholder
// order: SET values, then WHERE values, then HAVING values.
func (q *Query[T]) Values(values ...rowmap.Value) *Query[T] {
	q.values = append(q.values, values...)
	return q
}

// SQL renders the accumulated statement. The builder performs no
// validation beyond its accumulators; malformed combinations surface as
// driver-side query failures.
func (q *Query[T]) SQL() string {
	var sb strings.Builder
	switch q.kind {
	case stmtSelect:
		sb.WriteString("SELECT ")
		if len(q.columns) == 0 {
			sb.WriteString("*")
		} else {
			sb.WriteString(strings.Join(q.columns, ", "))
		}
		sb.WriteString(" FROM ")
		sb.WriteString(q.table)
		for _, j := range q.joins {
			sb.WriteString(" ")
			sb.WriteString(j)
		}
		q.writeWhere(&sb)
		if len(q.groups) > 0 {
			sb.WriteString(" GROUP BY ")
			sb.WriteString(strings.Join(q.groups, ", "))
		}
		if len(q.havings) > 0 {
			sb.WriteString(" HAVING ")
			sb.WriteString(strings.Join(q.havings, " AND "))
		}
		if len(q.orders) > 0 {
			sb.WriteString(" ORDER BY ")
			sb.WriteString(strings.Join(q.orders, ", "))
		}
		if q.limit >= 0 {
			sb.WriteString(" LIMIT ")
			sb.WriteString(strconv.Itoa(q.limit))
		}
		if q.offset >= 0 {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(q.offset))
		}
	case stmtInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(q.table)
		if len(q.columns) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(q.columns, ", "))
			sb.WriteString(")")
		}
		sb.WriteString(" VALUES (")
		sb.WriteString(strings.Join(q.inserts, ", "))
		sb.WriteString(")")
	case stmtUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(q.table)
		sb.WriteString(" SET ")
		sb.WriteString(strings.Join(q.sets, ", "))
		q.writeWhere(&sb)
	case stmtDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(q.table)
		q.writeWhere(&sb)
	}
	return sb.String()
}

func (q *Query[T]) writeWhere(sb *strings.Builder) {
	if len(q.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.wheres, " AND "))
	}
}

// Params returns the accumulated statement parameters.
func (q *Query[T]) Params() []rowmap.Value {
	return q.values
}

// All runs the statement and decodes every row into T.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	rows, err := q.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](rows)
}

// One runs the statement and decodes the first row, or returns
// (nil, nil) when the result set is empty.
func (q *Query[T]) One(ctx context.Context) (*T, error) {
	row, err := q.drv.QueryOne(ctx, q.SQL(), q.values)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	var entity T
	if err := codec.Decode(row.ToTable(), &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Rows runs the statement and returns the raw rows. Use it for select
// lists that do not mirror the entity shape, such as aggregates.
func (q *Query[T]) Rows(ctx context.Context) ([]rowmap.Row, error) {
	return q.drv.Query(ctx, q.SQL(), q.values)
}

// Exec runs the statement and returns the number of affected rows.
func (q *Query[T]) Exec(ctx context.Context) (int64, error) {
	return q.drv.Exec(ctx, q.SQL(), q.values)
}
