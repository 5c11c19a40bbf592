package registry

import (
	"fmt"
	"reflect"
	"time"
)

// FieldType is the semantic type of a column.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeBool
	TypeTime
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Role says who may write a field.
type Role int

const (
	// RoleRegular fields are insertable by callers and, when Alterable,
	// changeable through partial updates.
	RoleRegular Role = iota
	// RolePrimaryKey is the single key column, supplied as the id argument.
	RolePrimaryKey
	// RoleDerived fields are written with their default on insert and are
	// afterwards maintained only by internal workflows.
	RoleDerived
)

// Field describes one column of an entity.
type Field struct {
	Name      string
	Type      FieldType
	Role      Role
	Default   any
	Nullable  bool
	Required  bool
	Alterable bool
	// Ref names the entity this column points at, if any.
	Ref string
}

// Coerce converts v to the canonical Go type of the field: string, int64,
// bool or time.Time. Pointers are dereferenced; a nil value is accepted only
// for nullable fields.
func (f Field) Coerce(v any) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv = reflect.Value{}
			break
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		if f.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("field %s: nil for non-nullable %s", f.Name, f.Type)
	}

	switch f.Type {
	case TypeString:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case TypeInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint8, reflect.Uint16, reflect.Uint32:
			return int64(rv.Uint()), nil
		}
	case TypeBool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case TypeTime:
		if t, ok := rv.Interface().(time.Time); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("field %s: cannot use %T as %s", f.Name, v, f.Type)
}

// Normalize converts a value scanned from a driver into the canonical Go
// type of the field. SQLite hands back integers for booleans and text for
// some timestamps; pgx already returns canonical types.
func (f Field) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case TypeString:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		case int:
			return int64(n), nil
		}
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		}
	case TypeTime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			return parseTime(t)
		case []byte:
			return parseTime(string(t))
		}
	}
	return nil, fmt.Errorf("field %s: unexpected driver value %T for %s", f.Name, v, f.Type)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
