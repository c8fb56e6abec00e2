// Package sql provides the database/sql-backed dialect.Driver with
// per-handle transaction affinity.
//
// A Database owns a connection pool and a single transaction slot. While
// the slot is empty, statements run on whatever pooled connection
// database/sql hands out. Begin reserves one physical connection in the
// slot; from then on every statement issued through the handle runs on
// that reserved connection, so it observes the transaction's uncommitted
// writes. Commit and Rollback take the connection out of the slot
// unconditionally and return it to the pool, even when the closing
// statement itself fails.
package sql

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

// Database is a dialect.Driver implementation over database/sql.
type Database struct {
	db      *sql.DB
	dialect string

	// mu guards the transaction slot and serializes statements with the
	// slot lifecycle.
	mu sync.Mutex
	// tx is the reserved connection, nil while no transaction is open.
	tx *sql.Conn
}

// Open opens a pool for the given dialect and data source and returns a
// Database over it.
func Open(dialect, source string) (*Database, error) {
	db, err := sql.Open(driverNameOf(dialect), source)
	if err != nil {
		return nil, rowmap.NewConnectionError("open "+dialect, err)
	}
	return OpenDB(dialect, db), nil
}

// OpenDB wraps an existing *sql.DB with a Database.
func OpenDB(dialect string, db *sql.DB) *Database {
	return &Database{db: db, dialect: dialect}
}

// driverNameOf maps a dialect identifier to the registered database/sql
// driver name.
func driverNameOf(d string) string {
	switch d {
	case dialect.Postgres:
		return "postgres"
	case dialect.MySQL:
		return "mysql"
	case dialect.SQLite:
		return "sqlite"
	}
	return d
}

// DB returns the underlying *sql.DB instance.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect implements the dialect.Driver method.
func (d *Database) Dialect() string {
	// If the underlying driver is wrapped with a telemetry driver.
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Placeholders implements the dialect.Driver method. Numbering starts at
// 1 on every call.
func (d *Database) Placeholders(names []string) []string {
	return dialect.Placeholders(dialect.StyleOf(d.Dialect()), names)
}

// Ping verifies the pool can reach the database.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return rowmap.NewConnectionError("ping", err)
	}
	return nil
}

// Close closes the pool. An open transaction's connection is released
// first.
func (d *Database) Close() error {
	d.mu.Lock()
	if d.tx != nil {
		d.tx.Close()
		d.tx = nil
	}
	d.mu.Unlock()
	return d.db.Close()
}

// executor is the shared statement surface of *sql.DB and *sql.Conn.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// target returns where statements run: the reserved connection while a
// transaction is open, the pool otherwise. Callers hold mu.
func (d *Database) target() executor {
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

// Exec implements the dialect.Driver method.
func (d *Database) Exec(ctx context.Context, query string, params []rowmap.Value) (int64, error) {
	args, err := execArgs(params)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.target().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(d.Dialect(), query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, rowmap.NewQueryError(rowmap.KindOther, "rows affected", err)
	}
	return n, nil
}

// Query implements the dialect.Driver method.
func (d *Database) Query(ctx context.Context, query string, params []rowmap.Value) ([]rowmap.Row, error) {
	args, err := execArgs(params)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.target().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(d.Dialect(), query, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// QueryOne implements the dialect.Driver method. It returns nil without
// error when the result set is empty.
func (d *Database) QueryOne(ctx context.Context, query string, params []rowmap.Value) (*rowmap.Row, error) {
	rows, err := d.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// startStmt returns the statement that opens a transaction in the given
// dialect.
func startStmt(d string) string {
	switch d {
	case dialect.MySQL:
		return "START TRANSACTION"
	default:
		return "BEGIN"
	}
}

// Begin implements the dialect.Driver method. It reserves one pool
// connection in the transaction slot. A second Begin before Commit or
// Rollback fails with a TransactionError wrapping rowmap.ErrTxStarted
// and leaves the existing reservation untouched.
func (d *Database) Begin(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx != nil {
		return rowmap.NewTransactionError("already open", rowmap.ErrTxStarted)
	}
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return rowmap.NewPoolError("acquire connection", err)
	}
	if _, err := conn.ExecContext(ctx, startStmt(d.Dialect())); err != nil {
		conn.Close()
		return rowmap.NewTransactionError("begin", err)
	}
	d.tx = conn
	return nil
}

// Commit implements the dialect.Driver method. The reserved connection
// is taken out of the slot and released regardless of the statement
// outcome. Commit without an open transaction is a no-op.
func (d *Database) Commit(ctx context.Context) error {
	return d.finish(ctx, "COMMIT")
}

// Rollback implements the dialect.Driver method, with the same slot
// semantics as Commit.
func (d *Database) Rollback(ctx context.Context) error {
	return d.finish(ctx, "ROLLBACK")
}

func (d *Database) finish(ctx context.Context, stmt string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := d.tx
	d.tx = nil
	if conn == nil {
		return nil
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return rowmap.NewTransactionError(strings.ToLower(stmt), err)
	}
	return nil
}

// InTx reports whether the handle currently holds a reserved
// transaction connection.
func (d *Database) InTx() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx != nil
}

var _ dialect.Driver = (*Database)(nil)
