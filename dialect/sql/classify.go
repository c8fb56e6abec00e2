package sql

import (
	"context"
	sqldriver "database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

// classify maps a driver error onto the rowmap taxonomy. The most
// specific kind the product error code allows wins; anything
// unrecognized stays KindOther. The original driver error remains
// reachable through errors.As / errors.Is.
func classify(d, query string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sqldriver.ErrBadConn):
		return rowmap.NewConnectionError("connection lost", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return rowmap.NewQueryError(rowmap.KindOther, query, err)
	}
	kind := rowmap.KindOther
	switch d {
	case dialect.Postgres:
		var pe *pq.Error
		if errors.As(err, &pe) {
			kind = postgresKind(string(pe.Code))
		}
	case dialect.MySQL:
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			kind = mysqlKind(me.Number)
		}
	case dialect.SQLite:
		var se *sqlite.Error
		if errors.As(err, &se) {
			kind = sqliteKind(se.Code())
		}
	}
	return rowmap.NewQueryError(kind, query, err)
}

// postgresKind maps a SQLSTATE code.
func postgresKind(code string) rowmap.QueryErrorKind {
	switch code {
	case "42601":
		return rowmap.KindSyntax
	case "23503":
		return rowmap.KindForeignKeyViolation
	case "23505":
		return rowmap.KindUniqueViolation
	case "23502":
		return rowmap.KindNotNullViolation
	case "23514":
		return rowmap.KindCheckViolation
	case "23P01":
		return rowmap.KindExclusionViolation
	}
	return rowmap.KindOther
}

// mysqlKind maps a MySQL server error number. MySQL has no exclusion
// constraints.
func mysqlKind(number uint16) rowmap.QueryErrorKind {
	switch number {
	case 1064:
		return rowmap.KindSyntax
	case 1451, 1452:
		return rowmap.KindForeignKeyViolation
	case 1062:
		return rowmap.KindUniqueViolation
	case 1048:
		return rowmap.KindNotNullViolation
	case 3819:
		return rowmap.KindCheckViolation
	}
	return rowmap.KindOther
}

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// sqliteKind maps a SQLite extended result code. Primary-key conflicts
// report as unique violations, as they do elsewhere.
func sqliteKind(code int) rowmap.QueryErrorKind {
	switch code {
	case sqliteConstraintForeignKey:
		return rowmap.KindForeignKeyViolation
	case sqliteConstraintPrimaryKey, sqliteConstraintUnique:
		return rowmap.KindUniqueViolation
	case sqliteConstraintNotNull:
		return rowmap.KindNotNullViolation
	case sqliteConstraintCheck:
		return rowmap.KindCheckViolation
	}
	return rowmap.KindOther
}
