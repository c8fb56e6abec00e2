package codec

import (
	"reflect"
	"sync"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"github.com/syssam/rowmap"
)

// fieldKind classifies how a struct field is converted.
type fieldKind uint8

const (
	kindBool fieldKind = iota
	kindInt32
	kindInt64
	kindInt
	kindFloat32
	kindFloat64
	kindString
	kindBytes
	kindTime
	kindUUID
	kindStruct
	kindPointer
	kindSlice
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// fieldType describes the conversion for one Go type. For kindStruct it
// carries the nested descriptor, for kindPointer and kindSlice the
// element type.
type fieldType struct {
	kind fieldKind
	st   *structType
	elem *fieldType
}

// fieldInfo is one encodable field of a struct descriptor.
type fieldInfo struct {
	name  string
	index int
	typ   *fieldType
}

// structType is the cached descriptor of a struct shape. Field order
// follows the declaration order of the Go type.
type structType struct {
	name   string
	fields []fieldInfo
}

var descriptors sync.Map // reflect.Type -> *structType

// structTypeOf returns the descriptor for t, building and caching it on
// first use. Unsupported field types fail here, once per type, rather
// than per record.
func structTypeOf(t reflect.Type) (*structType, error) {
	if st, ok := descriptors.Load(t); ok {
		return st.(*structType), nil
	}
	st, err := buildStructType(t)
	if err != nil {
		return nil, err
	}
	actual, _ := descriptors.LoadOrStore(t, st)
	return actual.(*structType), nil
}

func buildStructType(t reflect.Type) (*structType, error) {
	if t.Kind() != reflect.Struct {
		return nil, rowmap.NewConversionError("type %s is not a struct", t)
	}
	st := &structType{name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := columnName(f)
		if name == "-" {
			continue
		}
		ft, err := fieldTypeOf(f.Type)
		if err != nil {
			return nil, rowmap.NewConversionError("field %s.%s: %s", t.Name(), f.Name, conversionDetail(err))
		}
		st.fields = append(st.fields, fieldInfo{name: name, index: i, typ: ft})
	}
	return st, nil
}

// columnName resolves the column a field maps onto: the db tag when
// present, otherwise the snake_cased field name.
func columnName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("db"); ok && tag != "" {
		return tag
	}
	return inflect.Underscore(f.Name)
}

func fieldTypeOf(t reflect.Type) (*fieldType, error) {
	switch t {
	case timeType:
		return &fieldType{kind: kindTime}, nil
	case uuidType:
		return &fieldType{kind: kindUUID}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return &fieldType{kind: kindBool}, nil
	case reflect.Int32:
		return &fieldType{kind: kindInt32}, nil
	case reflect.Int64:
		return &fieldType{kind: kindInt64}, nil
	case reflect.Int:
		return &fieldType{kind: kindInt}, nil
	case reflect.Float32:
		return &fieldType{kind: kindFloat32}, nil
	case reflect.Float64:
		return &fieldType{kind: kindFloat64}, nil
	case reflect.String:
		return &fieldType{kind: kindString}, nil
	case reflect.Struct:
		st, err := buildStructType(t)
		if err != nil {
			return nil, err
		}
		return &fieldType{kind: kindStruct, st: st}, nil
	case reflect.Pointer:
		elem, err := fieldTypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		if elem.kind == kindPointer {
			return nil, rowmap.NewConversionError("unsupported type %s: nested pointers", t)
		}
		return &fieldType{kind: kindPointer, elem: elem}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &fieldType{kind: kindBytes}, nil
		}
		elem, err := fieldTypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return &fieldType{kind: kindSlice, elem: elem}, nil
	}
	return nil, rowmap.NewConversionError("unsupported type %s", t)
}

// conversionDetail strips the package prefix from a nested
// ConversionError so wrapped messages do not stack prefixes.
func conversionDetail(err error) string {
	const prefix = "rowmap: conversion failed: "
	msg := err.Error()
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
