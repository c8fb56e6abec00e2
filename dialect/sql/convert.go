package sql

import (
	"database/sql"
	"time"

	"github.com/syssam/rowmap"
)

// execArgs converts statement parameters to driver arguments.
func execArgs(params []rowmap.Value) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		switch p.Kind() {
		case rowmap.KindNull:
			args[i] = nil
		case rowmap.KindBool:
			args[i] = p.Bool()
		case rowmap.KindInt:
			args[i] = p.Int()
		case rowmap.KindBigint:
			args[i] = p.Bigint()
		case rowmap.KindFloat:
			args[i] = p.Float()
		case rowmap.KindDouble:
			args[i] = p.Double()
		case rowmap.KindText:
			args[i] = p.Text()
		case rowmap.KindBytes:
			args[i] = p.Bytes()
		case rowmap.KindTime:
			args[i] = p.Time()
		default:
			return nil, rowmap.NewConversionError("parameter %d: %s values cannot be bound", i+1, p.Kind())
		}
	}
	return args, nil
}

// scanRows drains a result set into rows of values.
func scanRows(rows *sql.Rows) ([]rowmap.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, rowmap.NewQueryError(rowmap.KindOther, "columns", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, rowmap.NewQueryError(rowmap.KindOther, "column types", err)
	}
	dbTypes := make([]string, len(cols))
	for i, t := range types {
		dbTypes[i] = t.DatabaseTypeName()
	}

	var out []rowmap.Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, rowmap.NewQueryError(rowmap.KindOther, "scan", err)
		}
		r := rowmap.Row{
			Columns: append([]string(nil), cols...),
			Values:  make([]rowmap.Value, len(cols)),
		}
		for i, v := range raw {
			val, err := columnValue(v, dbTypes[i])
			if err != nil {
				return nil, err
			}
			r.Values[i] = val
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, rowmap.NewQueryError(rowmap.KindOther, "rows", err)
	}
	return out, nil
}

// columnValue converts one scanned column into its value representation.
// The declared database type refines ambiguous Go types: drivers report
// 64-bit integers for every integer width and MySQL reports []byte for
// text columns.
func columnValue(v any, dbType string) (rowmap.Value, error) {
	switch v := v.(type) {
	case nil:
		return rowmap.Null(), nil
	case bool:
		return rowmap.Bool(v), nil
	case int64:
		if narrowIntType(dbType) {
			return rowmap.Int(int32(v)), nil
		}
		return rowmap.Bigint(v), nil
	case float64:
		if narrowFloatType(dbType) {
			return rowmap.Float(float32(v)), nil
		}
		return rowmap.Double(v), nil
	case string:
		return rowmap.Text(v), nil
	case []byte:
		if textType(dbType) {
			return rowmap.Text(string(v)), nil
		}
		return rowmap.Bytes(append([]byte(nil), v...)), nil
	case time.Time:
		return rowmap.Time(v), nil
	}
	return rowmap.Value{}, rowmap.NewConversionError("unsupported column type %T (%s)", v, dbType)
}

func narrowIntType(dbType string) bool {
	switch dbType {
	case "INT2", "INT4", "INT", "SMALLINT", "MEDIUMINT", "TINYINT", "YEAR":
		return true
	}
	return false
}

func narrowFloatType(dbType string) bool {
	switch dbType {
	case "FLOAT4", "FLOAT":
		return true
	}
	return false
}

func textType(dbType string) bool {
	switch dbType {
	case "TEXT", "VARCHAR", "CHAR", "NVARCHAR", "NCHAR", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "JSON", "UUID", "NAME":
		return true
	}
	return false
}
