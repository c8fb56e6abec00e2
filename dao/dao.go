// Package dao maps entity types onto tables: generic CRUD over any
// rowmap.Entity plus a dialect-aware statement builder. All SQL the
// package emits is parameterized; placeholder spelling and numbering
// follow the driver's dialect.
package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/codec"
	"github.com/syssam/rowmap/dialect"
)

// ErrMissingPrimaryKey is returned when an entity's encoded fields do
// not contain its declared primary-key column. This is a defect in the
// entity type, not in the data.
var ErrMissingPrimaryKey = errors.New("dao: entity has no primary-key field")

// DAO provides CRUD operations for one entity type over a driver.
// The zero value of T answers the table metadata, so T's Entity methods
// must be declared on the value receiver.
type DAO[T rowmap.Entity] struct {
	drv dialect.Driver
}

// New returns a DAO for T bound to the given driver.
func New[T rowmap.Entity](drv dialect.Driver) *DAO[T] {
	return &DAO[T]{drv: drv}
}

// Driver returns the underlying driver.
func (d *DAO[T]) Driver() dialect.Driver {
	return d.drv
}

func (d *DAO[T]) table() string {
	var zero T
	return zero.TableName()
}

func (d *DAO[T]) pk() string {
	var zero T
	return zero.PrimaryKeyColumn()
}

func (d *DAO[T]) style() dialect.Style {
	return dialect.StyleOf(d.drv.Dialect())
}

// Create inserts the entity, one placeholder per encoded field in
// declared order, and returns the number of affected rows.
func (d *DAO[T]) Create(ctx context.Context, entity T) (int64, error) {
	tab, err := codec.Encode(entity)
	if err != nil {
		return 0, err
	}
	row := rowmap.RowOfTable(tab)
	ph := d.drv.Placeholders(row.Columns)
	query := fmt.Sprintf("INSERT INTO %s VALUES (%s)", d.table(), strings.Join(ph, ", "))
	return d.drv.Exec(ctx, query, row.Values)
}

// FindByID loads the entity with the given primary key. It returns
// (nil, nil) when no row matches.
func (d *DAO[T]) FindByID(ctx context.Context, id any) (*T, error) {
	idv, err := codec.ValueOf(id)
	if err != nil {
		return nil, err
	}
	ph := d.drv.Placeholders([]string{d.pk()})
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", d.table(), d.pk(), ph[0])
	row, err := d.drv.QueryOne(ctx, query, []rowmap.Value{idv})
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

// FindAll loads every row of the table.
func (d *DAO[T]) FindAll(ctx context.Context) ([]T, error) {
	rows, err := d.drv.Query(ctx, "SELECT * FROM "+d.table(), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](rows)
}

// Update writes every non-key field of the entity to the row matching
// its primary key. SET placeholders are numbered incrementally; the
// WHERE placeholder follows them.
func (d *DAO[T]) Update(ctx context.Context, entity T) (int64, error) {
	tab, err := codec.Encode(entity)
	if err != nil {
		return 0, err
	}
	var (
		counter = dialect.NewCounter(d.style())
		sets    []string
		values  []rowmap.Value
		pkValue rowmap.Value
		found   bool
	)
	for _, f := range tab.Fields() {
		if f.Name == d.pk() {
			pkValue = f.Value
			found = true
			continue
		}
		sets = append(sets, f.Name+" = "+counter.Next(1)[0])
		values = append(values, f.Value)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s has no column %q", ErrMissingPrimaryKey, d.table(), d.pk())
	}
	values = append(values, pkValue)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.table(), strings.Join(sets, ", "), d.pk(), counter.Next(1)[0])
	return d.drv.Exec(ctx, query, values)
}

// Delete removes the row with the given primary key and returns the
// number of affected rows.
func (d *DAO[T]) Delete(ctx context.Context, id any) (int64, error) {
	idv, err := codec.ValueOf(id)
	if err != nil {
		return 0, err
	}
	ph := d.drv.Placeholders([]string{d.pk()})
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", d.table(), d.pk(), ph[0])
	return d.drv.Exec(ctx, query, []rowmap.Value{idv})
}

// FindByCondition loads rows matching all condition fragments. Each
// fragment is a column comparison without its operand ("stock >"); the
// next placeholder is appended to it and fragments are joined with AND.
func (d *DAO[T]) FindByCondition(ctx context.Context, conds []string, values []rowmap.Value) ([]T, error) {
	query := "SELECT * FROM " + d.table()
	if len(conds) > 0 {
		counter := dialect.NewCounter(d.style())
		parts := make([]string, len(conds))
		for i, c := range conds {
			parts[i] = c + " " + counter.Next(1)[0]
		}
		query += " WHERE " + strings.Join(parts, " AND ")
	}
	rows, err := d.drv.Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](rows)
}

// Begin opens a transaction on the underlying driver.
func (d *DAO[T]) Begin(ctx context.Context) error {
	return d.drv.Begin(ctx)
}

// Commit commits the open transaction.
func (d *DAO[T]) Commit(ctx context.Context) error {
	return d.drv.Commit(ctx)
}

// Rollback rolls back the open transaction.
func (d *DAO[T]) Rollback(ctx context.Context) error {
	return d.drv.Rollback(ctx)
}

// Prepare returns a statement builder bound to the entity's table and
// the driver's dialect.
func (d *DAO[T]) Prepare() *Query[T] {
	return &Query[T]{
		drv:    d.drv,
		style:  d.style(),
		table:  d.table(),
		limit:  -1,
		offset: -1,
	}
}

func decodeAll[T rowmap.Entity](rows []rowmap.Row) ([]T, error) {
	out := make([]T, len(rows))
	for i, r := range rows {
		if err := codec.Decode(r.ToTable(), &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
