package testutil

import "fmt"

// field is one struct field of a generated type.
type field struct {
	name string
	typ  string
	tag  string
}

// typeData holds everything needed to render one type declaration.
type typeData struct {
	name       string
	directives [][2]string
	fields     []field
	methods    []string
}

// TypeOption configures a generated type.
type TypeOption func(*typeData)

// Field adds a field.
func Field(name, typ string) TypeOption {
	return func(t *typeData) {
		t.fields = append(t.fields, field{name: name, typ: typ})
	}
}

// Transient adds a field tagged as not persisted.
func Transient(name, typ string) TypeOption {
	return func(t *typeData) {
		t.fields = append(t.fields, field{name: name, typ: typ, tag: `roster:"transient"`})
	}
}

// Setting adds a string field carrying a data source setting.
func Setting(name, value string) TypeOption {
	return func(t *typeData) {
		t.fields = append(t.fields, field{name: name, typ: "string", tag: fmt.Sprintf("value:%q", value)})
	}
}

// Methods adds exported methods with empty bodies, in order.
func Methods(names ...string) TypeOption {
	return func(t *typeData) {
		t.methods = append(t.methods, names...)
	}
}

// Directive adds a "//roster:key value" line to the type's doc comment.
func Directive(key, value string) TypeOption {
	return func(t *typeData) {
		t.directives = append(t.directives, [2]string{key, value})
	}
}

// Disabled marks the type disabled.
func Disabled() TypeOption {
	return Directive("disabled", "")
}
