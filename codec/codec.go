// Package codec is the marshaling bridge between typed application
// records and the dialect-neutral value tree.
//
// Encode walks a struct and produces a rowmap.Value table whose fields
// mirror the struct's declared field order. Decode performs the inverse,
// driven by the shape of the target type. Conversion descriptors are
// built once per type with reflection and cached; a struct containing an
// unsupported field type is rejected the first time it is seen, not once
// per record.
//
// Mapping rules:
//
//   - bool → Bool, int32 → Int, int64 and int → Bigint,
//     float32 → Float, float64 → Double, string → Text.
//   - time.Time → Time, uuid.UUID → Text.
//   - []byte → Bytes, untouched.
//   - Any other slice → a msgpack blob of the element values, stored as
//     Bytes. The decoder recovers the elements from the static element
//     type of the target slice. Nil and empty slices encode identically
//     and both decode as nil.
//   - Nested structs → nested Table values.
//   - Pointer fields are optional: nil → Null, non-nil → the wrapped
//     value. Null decodes into a pointer as nil.
//
// Column names come from the `db:"..."` struct tag when present,
// otherwise from the snake_cased field name. A tag of "-" and unexported
// fields are skipped.
package codec

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/rowmap"
)

// Encode converts a struct (or pointer to struct) into a table value
// mirroring its declared field order.
func Encode(entity any) (rowmap.Value, error) {
	rv := reflect.ValueOf(entity)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return rowmap.Value{}, rowmap.NewConversionError("cannot encode nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return rowmap.Value{}, rowmap.NewConversionError("type %T is not a struct", entity)
	}
	st, err := structTypeOf(rv.Type())
	if err != nil {
		return rowmap.Value{}, err
	}
	return encodeStruct(rv, st)
}

func encodeStruct(rv reflect.Value, st *structType) (rowmap.Value, error) {
	fields := make([]rowmap.Field, len(st.fields))
	for i, fi := range st.fields {
		v, err := encodeField(rv.Field(fi.index), fi.typ, fi.name)
		if err != nil {
			return rowmap.Value{}, err
		}
		fields[i] = rowmap.Field{Name: fi.name, Value: v}
	}
	return rowmap.Table(fields...), nil
}

func encodeField(rv reflect.Value, ft *fieldType, name string) (rowmap.Value, error) {
	switch ft.kind {
	case kindBool:
		return rowmap.Bool(rv.Bool()), nil
	case kindInt32:
		return rowmap.Int(int32(rv.Int())), nil
	case kindInt64, kindInt:
		return rowmap.Bigint(rv.Int()), nil
	case kindFloat32:
		return rowmap.Float(float32(rv.Float())), nil
	case kindFloat64:
		return rowmap.Double(rv.Float()), nil
	case kindString:
		return rowmap.Text(rv.String()), nil
	case kindBytes:
		return rowmap.Bytes(rv.Bytes()), nil
	case kindTime:
		return rowmap.Time(rv.Interface().(time.Time)), nil
	case kindUUID:
		return rowmap.Text(rv.Interface().(uuid.UUID).String()), nil
	case kindStruct:
		return encodeStruct(rv, ft.st)
	case kindPointer:
		if rv.IsNil() {
			return rowmap.Null(), nil
		}
		return encodeField(rv.Elem(), ft.elem, name)
	case kindSlice:
		vals := make([]rowmap.Value, rv.Len())
		for i := range vals {
			v, err := encodeField(rv.Index(i), ft.elem, name)
			if err != nil {
				return rowmap.Value{}, err
			}
			vals[i] = v
		}
		blob, err := marshalValues(vals)
		if err != nil {
			return rowmap.Value{}, rowmap.NewConversionError("field %q: encode sequence: %v", name, err)
		}
		return rowmap.Bytes(blob), nil
	}
	return rowmap.Value{}, rowmap.NewConversionError("field %q: unsupported kind", name)
}

// Decode converts a table value into dst, which must be a non-nil
// pointer to a struct. Table fields are matched to struct fields by
// position, with the column name verified against the field's mapped
// name.
func Decode(v rowmap.Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return rowmap.NewConversionError("decode target %T is not a non-nil pointer", dst)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return rowmap.NewConversionError("decode target %T is not a struct pointer", dst)
	}
	st, err := structTypeOf(rv.Type())
	if err != nil {
		return err
	}
	return decodeStruct(v, rv, st)
}

func decodeStruct(v rowmap.Value, rv reflect.Value, st *structType) error {
	if v.Kind() != rowmap.KindTable {
		return rowmap.NewConversionError("%s: expected table, got %s", st.name, v.Kind())
	}
	fields := v.Fields()
	if len(fields) != len(st.fields) {
		return rowmap.NewConversionError("%s: expected %d fields, got %d", st.name, len(st.fields), len(fields))
	}
	for i, fi := range st.fields {
		f := fields[i]
		if f.Name != fi.name {
			return rowmap.NewConversionError("%s: field %d: expected column %q, got %q", st.name, i, fi.name, f.Name)
		}
		if err := decodeField(f.Value, rv.Field(fi.index), fi.typ, fi.name); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(v rowmap.Value, rv reflect.Value, ft *fieldType, name string) error {
	if ft.kind == kindPointer {
		if v.IsNull() {
			rv.SetZero()
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := decodeField(v, elem.Elem(), ft.elem, name); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	}
	switch ft.kind {
	case kindBool:
		if v.Kind() != rowmap.KindBool {
			return mismatch(name, rowmap.KindBool, v)
		}
		rv.SetBool(v.Bool())
	case kindInt32:
		if v.Kind() != rowmap.KindInt {
			return mismatch(name, rowmap.KindInt, v)
		}
		rv.SetInt(int64(v.Int()))
	case kindInt64, kindInt:
		if v.Kind() != rowmap.KindBigint {
			return mismatch(name, rowmap.KindBigint, v)
		}
		rv.SetInt(v.Bigint())
	case kindFloat32:
		if v.Kind() != rowmap.KindFloat {
			return mismatch(name, rowmap.KindFloat, v)
		}
		rv.SetFloat(float64(v.Float()))
	case kindFloat64:
		if v.Kind() != rowmap.KindDouble {
			return mismatch(name, rowmap.KindDouble, v)
		}
		rv.SetFloat(v.Double())
	case kindString:
		if v.Kind() != rowmap.KindText {
			return mismatch(name, rowmap.KindText, v)
		}
		rv.SetString(v.Text())
	case kindBytes:
		if v.Kind() != rowmap.KindBytes {
			return mismatch(name, rowmap.KindBytes, v)
		}
		rv.SetBytes(v.Bytes())
	case kindTime:
		if v.Kind() != rowmap.KindTime {
			return mismatch(name, rowmap.KindTime, v)
		}
		rv.Set(reflect.ValueOf(v.Time()))
	case kindUUID:
		if v.Kind() != rowmap.KindText {
			return mismatch(name, rowmap.KindText, v)
		}
		u, err := uuid.Parse(v.Text())
		if err != nil {
			return rowmap.NewConversionError("field %q: invalid uuid: %v", name, err)
		}
		rv.Set(reflect.ValueOf(u))
	case kindStruct:
		return decodeStruct(v, rv, ft.st)
	case kindSlice:
		if v.Kind() != rowmap.KindBytes {
			return mismatch(name, rowmap.KindBytes, v)
		}
		vals, err := unmarshalValues(v.Bytes())
		if err != nil {
			return rowmap.NewConversionError("field %q: decode sequence: %v", name, err)
		}
		// Nil and empty slices encode identically, so empty sequences
		// decode to nil and nil-slice fields round-trip unchanged.
		if len(vals) == 0 {
			rv.SetZero()
			return nil
		}
		out := reflect.MakeSlice(rv.Type(), len(vals), len(vals))
		for i, ev := range vals {
			if err := decodeField(ev, out.Index(i), ft.elem, name); err != nil {
				return err
			}
		}
		rv.Set(out)
	default:
		return rowmap.NewConversionError("field %q: unsupported kind", name)
	}
	return nil
}

func mismatch(name string, want rowmap.Kind, got rowmap.Value) error {
	return rowmap.NewConversionError("field %q: expected %s, got %s", name, want, got.Kind())
}

// Columns returns the mapped column names of the entity type in declared
// field order.
func Columns(entity any) ([]string, error) {
	rv := reflect.ValueOf(entity)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	st, err := structTypeOf(rv.Type())
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(st.fields))
	for i, fi := range st.fields {
		cols[i] = fi.name
	}
	return cols, nil
}

// ValueOf converts a plain Go scalar into its value representation. It
// is used for identifiers and ad hoc parameters; rowmap.Value passes
// through unchanged.
func ValueOf(x any) (rowmap.Value, error) {
	switch v := x.(type) {
	case rowmap.Value:
		return v, nil
	case nil:
		return rowmap.Null(), nil
	case bool:
		return rowmap.Bool(v), nil
	case int32:
		return rowmap.Int(v), nil
	case int:
		return rowmap.Bigint(int64(v)), nil
	case int64:
		return rowmap.Bigint(v), nil
	case float32:
		return rowmap.Float(v), nil
	case float64:
		return rowmap.Double(v), nil
	case string:
		return rowmap.Text(v), nil
	case []byte:
		return rowmap.Bytes(v), nil
	case time.Time:
		return rowmap.Time(v), nil
	case uuid.UUID:
		return rowmap.Text(v.String()), nil
	}
	return rowmap.Value{}, rowmap.NewConversionError("unsupported parameter type %T", x)
}
