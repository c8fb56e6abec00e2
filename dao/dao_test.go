package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

type product struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Stock int64  `db:"stock"`
}

func (product) TableName() string        { return "product" }
func (product) PrimaryKeyColumn() string { return "id" }

type statement struct {
	query  string
	params []rowmap.Value
}

// fakeDriver records every statement and plays back canned rows.
type fakeDriver struct {
	dialect    string
	statements []statement
	rows       []rowmap.Row
	affected   int64
	err        error

	begun, committed, rolledBack int
}

func (d *fakeDriver) Dialect() string { return d.dialect }

func (d *fakeDriver) Placeholders(names []string) []string {
	return dialect.Placeholders(dialect.StyleOf(d.dialect), names)
}

func (d *fakeDriver) Exec(_ context.Context, query string, params []rowmap.Value) (int64, error) {
	d.statements = append(d.statements, statement{query, params})
	return d.affected, d.err
}

func (d *fakeDriver) Query(_ context.Context, query string, params []rowmap.Value) ([]rowmap.Row, error) {
	d.statements = append(d.statements, statement{query, params})
	return d.rows, d.err
}

func (d *fakeDriver) QueryOne(ctx context.Context, query string, params []rowmap.Value) (*rowmap.Row, error) {
	rows, err := d.Query(ctx, query, params)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (d *fakeDriver) Begin(context.Context) error    { d.begun++; return d.err }
func (d *fakeDriver) Commit(context.Context) error   { d.committed++; return d.err }
func (d *fakeDriver) Rollback(context.Context) error { d.rolledBack++; return d.err }

var _ dialect.Driver = (*fakeDriver)(nil)

func (d *fakeDriver) last(t *testing.T) statement {
	t.Helper()
	require.NotEmpty(t, d.statements)
	return d.statements[len(d.statements)-1]
}

func productRow(id int64, name string, stock int64) rowmap.Row {
	return rowmap.Row{
		Columns: []string{"id", "name", "stock"},
		Values:  []rowmap.Value{rowmap.Bigint(id), rowmap.Text(name), rowmap.Bigint(stock)},
	}
}

func TestCreate(t *testing.T) {
	widget := product{ID: 1, Name: "Widget", Stock: 100}

	t.Run("postgres", func(t *testing.T) {
		drv := &fakeDriver{dialect: dialect.Postgres, affected: 1}
		n, err := New[product](drv).Create(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		st := drv.last(t)
		assert.Equal(t, "INSERT INTO product VALUES ($1, $2, $3)", st.query)
		require.Len(t, st.params, 3)
		assert.True(t, st.params[0].Equal(rowmap.Bigint(1)))
		assert.True(t, st.params[1].Equal(rowmap.Text("Widget")))
		assert.True(t, st.params[2].Equal(rowmap.Bigint(100)))
	})
	t.Run("mysql", func(t *testing.T) {
		drv := &fakeDriver{dialect: dialect.MySQL, affected: 1}
		_, err := New[product](drv).Create(context.Background(), widget)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO product VALUES (?, ?, ?)", drv.last(t).query)
	})
}

func TestFindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		drv := &fakeDriver{dialect: dialect.Postgres, rows: []rowmap.Row{productRow(1, "Widget", 100)}}
		p, err := New[product](drv).FindByID(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, product{ID: 1, Name: "Widget", Stock: 100}, *p)

		st := drv.last(t)
		assert.Equal(t, "SELECT * FROM product WHERE id = $1", st.query)
		require.Len(t, st.params, 1)
		assert.True(t, st.params[0].Equal(rowmap.Bigint(1)))
	})
	t.Run("missing", func(t *testing.T) {
		drv := &fakeDriver{dialect: dialect.Postgres}
		p, err := New[product](drv).FindByID(context.Background(), 404)
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestFindAll(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.SQLite, rows: []rowmap.Row{
		productRow(1, "Widget", 100),
		productRow(2, "Gadget", 5),
	}}
	out, err := New[product](drv).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM product", drv.last(t).query)
	require.Len(t, out, 2)
	assert.Equal(t, "Gadget", out[1].Name)
}

func TestUpdate(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres, affected: 1}
	n, err := New[product](drv).Update(context.Background(), product{ID: 1, Name: "Widget", Stock: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	st := drv.last(t)
	assert.Equal(t, "UPDATE product SET name = $1, stock = $2 WHERE id = $3", st.query)
	require.Len(t, st.params, 3)
	assert.True(t, st.params[0].Equal(rowmap.Text("Widget")))
	assert.True(t, st.params[1].Equal(rowmap.Bigint(42)))
	assert.True(t, st.params[2].Equal(rowmap.Bigint(1)))
}

func TestUpdateMissingPrimaryKey(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres}
	_, err := New[orphan](drv).Update(context.Background(), orphan{Name: "x"})
	require.ErrorIs(t, err, ErrMissingPrimaryKey)
	assert.Empty(t, drv.statements)
}

// orphan declares a primary-key column that no field maps onto.
type orphan struct {
	Name string `db:"name"`
}

func (orphan) TableName() string        { return "orphan" }
func (orphan) PrimaryKeyColumn() string { return "id" }

func TestDelete(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.MySQL, affected: 1}
	n, err := New[product](drv).Delete(context.Background(), int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	st := drv.last(t)
	assert.Equal(t, "DELETE FROM product WHERE id = ?", st.query)
	require.Len(t, st.params, 1)
	assert.True(t, st.params[0].Equal(rowmap.Bigint(7)))
}

func TestFindByCondition(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres, rows: []rowmap.Row{productRow(2, "Gadget", 5)}}
	out, err := New[product](drv).FindByCondition(context.Background(),
		[]string{"stock <", "name ="},
		[]rowmap.Value{rowmap.Bigint(10), rowmap.Text("Gadget")},
	)
	require.NoError(t, err)
	require.Len(t, out, 1)

	st := drv.last(t)
	assert.Equal(t, "SELECT * FROM product WHERE stock < $1 AND name = $2", st.query)
	require.Len(t, st.params, 2)
}

func TestFindByConditionEmpty(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres}
	_, err := New[product](drv).FindByCondition(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM product", drv.last(t).query)
}

func TestTransactionPassthrough(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres}
	d := New[product](drv)

	require.NoError(t, d.Begin(context.Background()))
	require.NoError(t, d.Commit(context.Background()))
	require.NoError(t, d.Rollback(context.Background()))
	assert.Equal(t, 1, drv.begun)
	assert.Equal(t, 1, drv.committed)
	assert.Equal(t, 1, drv.rolledBack)
}

func TestCRUDScenario(t *testing.T) {
	drv := &fakeDriver{dialect: dialect.Postgres, affected: 1}
	d := New[product](drv)
	ctx := context.Background()

	widget := product{ID: 1, Name: "Widget", Stock: 100}
	n, err := d.Create(ctx, widget)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	drv.rows = []rowmap.Row{productRow(1, "Widget", 100)}
	got, err := d.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, widget, *got)

	widget.Stock = 99
	_, err = d.Update(ctx, widget)
	require.NoError(t, err)

	drv.rows = []rowmap.Row{productRow(1, "Widget", 99)}
	got, err = d.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Stock)

	_, err = d.Delete(ctx, 1)
	require.NoError(t, err)

	drv.rows = nil
	got, err = d.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
