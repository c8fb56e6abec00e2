// Package rowmap is a database-agnostic data-access layer: it converts typed
// application records ("entities") to and from a dialect-neutral tabular
// value representation, and assembles parameterized SQL statements without
// hand-written SQL per entity type.
//
// # Components
//
// The root package holds the shared data model and contracts:
//
//   - Value: the closed tagged union every column value and entity field is
//     converted to and from.
//   - Row: an ordered column/value pairing returned by queries.
//   - Entity: the metadata contract (table name, primary-key column)
//     implemented by application record types.
//   - The error taxonomy: ConnectionError, PoolError, TransactionError,
//     QueryError, ConversionError.
//
// Behavior lives in the sub-packages:
//
//   - codec: the marshaling bridge between Go structs and the Value tree.
//   - dialect: the Driver contract and placeholder styles.
//   - dialect/sql: the database/sql-backed driver with transaction affinity.
//   - dao: entity-shaped CRUD and the dialect-aware query builder.
//
// # Usage
//
// Opening a handle and performing entity CRUD:
//
//	import (
//	    "github.com/syssam/rowmap/dao"
//	    "github.com/syssam/rowmap/dialect"
//	    "github.com/syssam/rowmap/dialect/sql"
//	)
//
//	type Product struct {
//	    ID    int64  `db:"id"`
//	    Name  string `db:"name"`
//	    Stock int64  `db:"stock"`
//	}
//
//	func (Product) TableName() string        { return "product" }
//	func (Product) PrimaryKeyColumn() string { return "id" }
//
//	db, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	products := dao.New[Product](db)
//	if _, err := products.Create(ctx, Product{ID: 1, Name: "Widget", Stock: 100}); err != nil {
//	    log.Fatal(err)
//	}
//	p, err := products.FindByID(ctx, 1)
//
// Ad hoc statements go through the builder:
//
//	rows, err := products.Prepare().
//	    Select("name", "SUM(stock)").
//	    Join("warehouse w", "w.product_id = product.id").
//	    Where("w.region =").
//	    GroupBy("name").
//	    Having("SUM(stock) >").
//	    Values(rowmap.Text("eu"), rowmap.Bigint(10)).
//	    Rows(ctx)
//
// Transactions pin one physical connection to the handle until commit or
// rollback, so statements issued inside the transaction observe each other's
// uncommitted writes:
//
//	if err := products.Begin(ctx); err != nil { ... }
//	products.Create(ctx, p)
//	products.Commit(ctx)
package rowmap
