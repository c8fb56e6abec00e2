package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

func newQuery(d string) (*Query[product], *fakeDriver) {
	drv := &fakeDriver{dialect: d}
	return New[product](drv).Prepare(), drv
}

func TestBuilderSelect(t *testing.T) {
	t.Run("find all", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		assert.Equal(t, "SELECT * FROM product", q.Find().SQL())
	})
	t.Run("columns", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		assert.Equal(t, "SELECT id, name FROM product", q.Select("id", "name").SQL())
	})
	t.Run("where", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		q.Find().Where("stock >", "name =").Values(rowmap.Bigint(10), rowmap.Text("Widget"))
		assert.Equal(t, "SELECT * FROM product WHERE stock > $1 AND name = $2", q.SQL())
		require.Len(t, q.Params(), 2)
	})
	t.Run("where question style", func(t *testing.T) {
		q, _ := newQuery(dialect.SQLite)
		q.Find().Where("stock >").Where("name =")
		assert.Equal(t, "SELECT * FROM product WHERE stock > ? AND name = ?", q.SQL())
	})
	t.Run("order limit offset", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		q.Find().OrderBy("stock DESC", "name").Limit(10).Offset(20)
		assert.Equal(t, "SELECT * FROM product ORDER BY stock DESC, name LIMIT 10 OFFSET 20", q.SQL())
	})
	t.Run("from override", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		assert.Equal(t, "SELECT * FROM archive_product", q.Find().From("archive_product").SQL())
	})
}

func TestBuilderJoins(t *testing.T) {
	q, _ := newQuery(dialect.Postgres)
	q.Select("product.name", "w.qty").
		Join("warehouse w", "w.product_id = product.id").
		LeftJoin("region r", "r.id = w.region_id").
		Where("r.code =").
		Values(rowmap.Text("eu"))
	assert.Equal(t,
		"SELECT product.name, w.qty FROM product "+
			"JOIN warehouse w ON w.product_id = product.id "+
			"LEFT JOIN region r ON r.id = w.region_id "+
			"WHERE r.code = $1",
		q.SQL())

	q2, _ := newQuery(dialect.Postgres)
	q2.Find().CrossJoin("colors").NaturalJoin("sizes")
	assert.Equal(t, "SELECT * FROM product CROSS JOIN colors NATURAL JOIN sizes", q2.SQL())
}

func TestBuilderGroupHaving(t *testing.T) {
	q, _ := newQuery(dialect.Postgres)
	q.Select("name", "SUM(stock)").
		Where("stock >").
		GroupBy("name").
		Having("SUM(stock) >").
		Values(rowmap.Bigint(0), rowmap.Bigint(10))
	assert.Equal(t,
		"SELECT name, SUM(stock) FROM product WHERE stock > $1 GROUP BY name HAVING SUM(stock) > $2",
		q.SQL())
}

func TestBuilderInsert(t *testing.T) {
	q, _ := newQuery(dialect.Postgres)
	q.Insert("id", "name", "stock").
		Values(rowmap.Bigint(1), rowmap.Text("Widget"), rowmap.Bigint(100))
	assert.Equal(t, "INSERT INTO product (id, name, stock) VALUES ($1, $2, $3)", q.SQL())

	q2, _ := newQuery(dialect.MySQL)
	q2.Insert("id", "name")
	assert.Equal(t, "INSERT INTO product (id, name) VALUES (?, ?)", q2.SQL())
}

func TestBuilderUpdatePrecedence(t *testing.T) {
	// SET placeholders seed the numbering; WHERE and HAVING follow.
	q, _ := newQuery(dialect.Postgres)
	q.Update("name", "stock").
		Where("id =").
		Values(rowmap.Text("Widget"), rowmap.Bigint(42), rowmap.Bigint(1))
	assert.Equal(t, "UPDATE product SET name = $1, stock = $2 WHERE id = $3", q.SQL())
	require.Len(t, q.Params(), 3)
}

func TestBuilderDelete(t *testing.T) {
	q, _ := newQuery(dialect.Postgres)
	q.Delete().Where("stock =").Values(rowmap.Bigint(0))
	assert.Equal(t, "DELETE FROM product WHERE stock = $1", q.SQL())
}

func TestBuilderTerminals(t *testing.T) {
	ctx := context.Background()

	t.Run("all decodes", func(t *testing.T) {
		q, drv := newQuery(dialect.Postgres)
		drv.rows = []rowmap.Row{productRow(1, "Widget", 100)}
		out, err := q.Find().All(ctx)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Widget", out[0].Name)
		assert.Equal(t, "SELECT * FROM product", drv.last(t).query)
	})
	t.Run("one empty", func(t *testing.T) {
		q, _ := newQuery(dialect.Postgres)
		p, err := q.Find().Where("id =").Values(rowmap.Bigint(9)).One(ctx)
		require.NoError(t, err)
		assert.Nil(t, p)
	})
	t.Run("exec", func(t *testing.T) {
		q, drv := newQuery(dialect.Postgres)
		drv.affected = 3
		n, err := q.Delete().Where("stock <").Values(rowmap.Bigint(1)).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.Equal(t, "DELETE FROM product WHERE stock < $1", drv.last(t).query)
	})
	t.Run("rows for aggregates", func(t *testing.T) {
		q, drv := newQuery(dialect.Postgres)
		drv.rows = []rowmap.Row{{
			Columns: []string{"name", "sum"},
			Values:  []rowmap.Value{rowmap.Text("Widget"), rowmap.Bigint(100)},
		}}
		rows, err := q.Select("name", "SUM(stock) AS sum").GroupBy("name").Rows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Values[1].Equal(rowmap.Bigint(100)))
	})
}
