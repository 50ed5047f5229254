package models

import "strings"

// PropertyKind is the JSON shape of a declared property
type PropertyKind string

const (
	KindString     PropertyKind = "string"
	KindNumber     PropertyKind = "number"
	KindBoolean    PropertyKind = "boolean"
	KindArray      PropertyKind = "array"
	KindObject     PropertyKind = "object"
	KindUnresolved PropertyKind = "unresolved"
)

// Property is one field of a type declaration
type Property struct {
	Name   string       // JSON name
	Kind   PropertyKind // classified kind
	GoType string       // declared type text
}

// IsKey reports whether the property is a key attribute
func (p Property) IsKey() bool {
	return IsKeyAttribute(p.Name)
}

// TypeDeclaration is a struct type read from a resolved source file
type TypeDeclaration struct {
	Name       string
	SourceFile string
	Properties []Property
}

// KeyProperties returns the key attributes in declaration order
func (t *TypeDeclaration) KeyProperties() []Property {
	var keys []Property
	for _, p := range t.Properties {
		if p.IsKey() {
			keys = append(keys, p)
		}
	}
	return keys
}

// ValueProperties returns the non-key properties in declaration order
func (t *TypeDeclaration) ValueProperties() []Property {
	var values []Property
	for _, p := range t.Properties {
		if !p.IsKey() {
			values = append(values, p)
		}
	}
	return values
}

// IsKeyAttribute is true for pk, sk and names starting with gsi
func IsKeyAttribute(name string) bool {
	return name == "pk" || name == "sk" || strings.HasPrefix(name, "gsi")
}
