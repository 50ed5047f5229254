package apiclient

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// Field kinds reported by ShapeOf
const (
	KindString     = "string"
	KindNumber     = "number"
	KindBoolean    = "boolean"
	KindArray      = "array"
	KindObject     = "object"
	KindUnresolved = "unresolved"
)

// Field is one JSON property of a payload type
type Field struct {
	Name string
	Kind string
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
)

// ShapeOf lists the JSON properties of a struct type in declaration order.
// Non-struct types have no shape.
func ShapeOf(t reflect.Type) []Field {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t == timeType {
		return nil
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, tagged, skip := jsonName(sf)
		if skip {
			continue
		}
		if sf.Anonymous && !tagged {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				fields = append(fields, ShapeOf(embedded)...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		fields = append(fields, Field{Name: name, Kind: KindOf(sf.Type)})
	}
	return fields
}

// Shape is ShapeOf for a type parameter
func Shape[T any]() []Field {
	return ShapeOf(reflect.TypeOf((*T)(nil)).Elem())
}

// PayloadShape returns the shape of the Body or Query field of a generated
// Params struct, or nil when the endpoint takes no input.
func PayloadShape[P any]() []Field {
	t := reflect.TypeOf((*P)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil
	}
	for _, name := range []string{"Body", "Query"} {
		if sf, ok := t.FieldByName(name); ok {
			return ShapeOf(sf.Type)
		}
	}
	return nil
}

// Align returns a copy of client in which every field that reference lists
// as KindUnresolved is unresolved too. Contract tests compare against it so a
// kind the declaring side could not classify matches anything.
func Align(reference, client []Field) []Field {
	unresolved := make(map[string]bool)
	for _, f := range reference {
		if f.Kind == KindUnresolved {
			unresolved[f.Name] = true
		}
	}
	if len(unresolved) == 0 {
		return client
	}
	aligned := make([]Field, len(client))
	for i, f := range client {
		if unresolved[f.Name] {
			f.Kind = KindUnresolved
		}
		aligned[i] = f
	}
	return aligned
}

// KindOf classifies a Go type the way its JSON encoding is consumed
func KindOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return KindString
	case jsonNumberType:
		return KindNumber
	case rawMessageType:
		return KindUnresolved
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Bool:
		return KindBoolean
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map, reflect.Struct:
		return KindObject
	default:
		return KindUnresolved
	}
}

func jsonName(sf reflect.StructField) (name string, tagged bool, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, false, false
	}
	if tag == "-" {
		return "", true, true
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		return sf.Name, false, false
	}
	return name, true, false
}
