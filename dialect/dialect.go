package dialect

import (
	"context"

	"github.com/syssam/rowmap"
)

// Supported dialect identifiers.
const (
	// Postgres is the PostgreSQL dialect.
	Postgres = "postgres"
	// MySQL is the MySQL/MariaDB dialect.
	MySQL = "mysql"
	// SQLite is the SQLite dialect.
	SQLite = "sqlite"
)

// Driver is the contract a concrete database handle implements. All
// statement parameters cross the boundary as rowmap values; results come
// back as rowmap rows. Implementations classify statement failures into
// the rowmap error taxonomy.
type Driver interface {
	// Dialect returns the dialect identifier of the handle.
	Dialect() string

	// Placeholders returns one placeholder per name, numbered from 1 in
	// dialects that number. The call is pure: it never carries counter
	// state between statements.
	Placeholders(names []string) []string

	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, params []rowmap.Value) (int64, error)

	// Query runs a statement and returns all result rows.
	Query(ctx context.Context, query string, params []rowmap.Value) ([]rowmap.Row, error)

	// QueryOne runs a statement and returns the first result row, or
	// nil when the result set is empty.
	QueryOne(ctx context.Context, query string, params []rowmap.Value) (*rowmap.Row, error)

	// Begin opens a transaction on the handle. It fails with a
	// TransactionError wrapping rowmap.ErrTxStarted when one is already
	// open.
	Begin(ctx context.Context) error

	// Commit commits the open transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the open transaction.
	Rollback(ctx context.Context) error
}
