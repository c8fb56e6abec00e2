package rowmap

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Kind identifies the concrete variant held by a Value.
type Kind uint8

// The closed set of value kinds. Every column value that crosses the
// layer boundary is one of these.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindBigint
	KindFloat
	KindDouble
	KindText
	KindBytes
	KindTime
	KindTable
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindBigint: "bigint",
	KindFloat:  "float",
	KindDouble: "double",
	KindText:   "text",
	KindBytes:  "bytes",
	KindTime:   "time",
	KindTable:  "table",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Field is one named entry of a table value. Order is significant.
type Field struct {
	Name  string
	Value Value
}

// Value is the dialect-neutral representation of a single column value
// or a whole record. It is a closed tagged union: the kind determines
// which accessor returns meaningful data. The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	i64    int64
	f64    float64
	s      string
	bs     []byte
	t      time.Time
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a 32-bit integer value.
func Int(i int32) Value { return Value{kind: KindInt, i64: int64(i)} }

// Bigint returns a 64-bit integer value.
func Bigint(i int64) Value { return Value{kind: KindBigint, i64: i} }

// Float returns a 32-bit floating-point value.
func Float(f float32) Value { return Value{kind: KindFloat, f64: float64(f)} }

// Double returns a 64-bit floating-point value.
func Double(f float64) Value { return Value{kind: KindDouble, f64: f} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bytes returns a raw byte value. The slice is not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bs: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Table returns an ordered collection of named fields. The slice is
// not copied; field order is preserved and significant.
func Table(fields ...Field) Value { return Value{kind: KindTable, fields: fields} }

// Kind returns the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the 32-bit integer payload, or 0 for other kinds.
func (v Value) Int() int32 { return int32(v.i64) }

// Bigint returns the 64-bit integer payload, or 0 for other kinds.
func (v Value) Bigint() int64 { return v.i64 }

// Float returns the 32-bit float payload, or 0 for other kinds.
func (v Value) Float() float32 { return float32(v.f64) }

// Double returns the 64-bit float payload, or 0 for other kinds.
func (v Value) Double() float64 { return v.f64 }

// Text returns the string payload, or "" for other kinds.
func (v Value) Text() string { return v.s }

// Bytes returns the byte payload, or nil for other kinds.
func (v Value) Bytes() []byte { return v.bs }

// Time returns the timestamp payload, or the zero time for other kinds.
func (v Value) Time() time.Time { return v.t }

// Fields returns the table payload, or nil for other kinds.
func (v Value) Fields() []Field { return v.fields }

// Equal reports structural equality: same kind and same payload.
// Tables compare field names and values pairwise in order; timestamps
// compare with time.Time.Equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt, KindBigint:
		return v.i64 == other.i64
	case KindFloat, KindDouble:
		return v.f64 == other.f64
	case KindText:
		return v.s == other.s
	case KindBytes:
		return bytes.Equal(v.bs, other.bs)
	case KindTime:
		return v.t.Equal(other.t)
	case KindTable:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i, f := range v.fields {
			if f.Name != other.fields[i].Name || !f.Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns a compact debug representation.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt, KindBigint:
		return fmt.Sprintf("%d", v.i64)
	case KindFloat, KindDouble:
		return fmt.Sprintf("%g", v.f64)
	case KindText:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.bs)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindTable:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			sb.WriteString(f.Value.String())
		}
		sb.WriteByte('}')
		return sb.String()
	}
	return kindNames[KindNull]
}

// Row is one query result row: parallel column names and values.
// len(Columns) always equals len(Values).
type Row struct {
	Columns []string
	Values  []Value
}

// ToTable converts the row to a table value, pairing each column name
// with its value in order.
func (r Row) ToTable() Value {
	fields := make([]Field, len(r.Columns))
	for i, c := range r.Columns {
		fields[i] = Field{Name: c, Value: r.Values[i]}
	}
	return Table(fields...)
}

// RowOfTable converts a table value back to a row. Non-table values
// yield an empty row.
func RowOfTable(v Value) Row {
	fields := v.Fields()
	r := Row{
		Columns: make([]string, len(fields)),
		Values:  make([]Value, len(fields)),
	}
	for i, f := range fields {
		r.Columns[i] = f.Name
		r.Values[i] = f.Value
	}
	return r
}
