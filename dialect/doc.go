// Package dialect provides database dialect abstraction for rowmap.
//
// This package defines the interfaces and types shared by all database
// backends: the dialect identifiers, the Driver contract every concrete
// handle implements, and the placeholder styles that parameterized
// statements are rendered with.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the narrow surface the dao package depends on:
//
//	type Driver interface {
//	    Dialect() string
//	    Placeholders(names []string) []string
//	    Exec(ctx context.Context, query string, params []rowmap.Value) (int64, error)
//	    Query(ctx context.Context, query string, params []rowmap.Value) ([]rowmap.Row, error)
//	    QueryOne(ctx context.Context, query string, params []rowmap.Value) (*rowmap.Row, error)
//	    Begin(ctx context.Context) error
//	    Commit(ctx context.Context) error
//	    Rollback(ctx context.Context) error
//	}
//
// # Placeholder Styles
//
// Dialects differ only in how statement parameters are spelled:
//
//   - Question: the repeated token `?` (MySQL, SQLite)
//   - Dollar: numbered tokens `$1`, `$2`, ... (PostgreSQL)
//
// Numbering state never outlives one statement. Placeholders issues a
// fresh counter per call; multi-clause statements thread an explicit
// Counter instead.
//
// # Sub-packages
//
//   - dialect/sql: the database/sql-backed Driver implementation with
//     per-handle transaction affinity, error classification, stats and
//     caching wrappers.
package dialect
