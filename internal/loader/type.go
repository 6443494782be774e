package loader

import (
	"reflect"
	"slices"
)

// Kind is the structural kind of a loaded type.
type Kind int

const (
	KindStruct Kind = iota
	KindInterface
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// DirectiveAbstract marks a concrete type as abstract.
const DirectiveAbstract = "abstract"

// Field is a struct field of a loaded type.
type Field struct {
	Name     string
	Type     string // type expression as written, e.g. "*time.Time"
	Tag      reflect.StructTag
	Embedded bool
}

// Method is a method declared on a loaded type.
type Method struct {
	Name            string
	PointerReceiver bool
}

// Type is an immutable handle to a type declared in a compiled resource.
type Type struct {
	pkg        string
	name       string
	resource   string
	kind       Kind
	fields     []Field
	methods    []Method
	directives map[string][]string
}

// TypeOption configures a Type built with NewType.
type TypeOption func(*Type)

// WithFields sets the struct fields.
func WithFields(fields ...Field) TypeOption {
	return func(t *Type) { t.fields = append(t.fields, fields...) }
}

// WithMethods sets the declared methods.
func WithMethods(methods ...Method) TypeOption {
	return func(t *Type) { t.methods = append(t.methods, methods...) }
}

// WithDirective adds a roster directive. Repeating a key appends a value.
func WithDirective(key, value string) TypeOption {
	return func(t *Type) {
		if t.directives == nil {
			t.directives = make(map[string][]string)
		}
		t.directives[key] = append(t.directives[key], value)
	}
}

// FromResource records the resource path the type was declared in.
func FromResource(path string) TypeOption {
	return func(t *Type) { t.resource = path }
}

// NewType builds a Type directly. The parser uses it, and so do tests that
// want to exercise conventions without source text.
func NewType(pkg, name string, kind Kind, opts ...TypeOption) *Type {
	t := &Type{pkg: pkg, name: name, kind: kind}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Package returns the declaring package name.
func (t *Type) Package() string { return t.pkg }

// Name returns the simple type name.
func (t *Type) Name() string { return t.name }

// QualifiedName returns "pkg.Name".
func (t *Type) QualifiedName() string {
	if t.pkg == "" {
		return t.name
	}
	return t.pkg + "." + t.name
}

// Resource returns the path of the resource that declared the type.
func (t *Type) Resource() string { return t.resource }

// Kind returns the structural kind.
func (t *Type) Kind() Kind { return t.kind }

// Abstract reports whether the type can never be instantiated as a role:
// interfaces, and types marked with the abstract directive.
func (t *Type) Abstract() bool {
	if t.kind == KindInterface {
		return true
	}
	_, ok := t.directives[DirectiveAbstract]
	return ok
}

// Fields returns a copy of the struct fields in declaration order.
func (t *Type) Fields() []Field { return slices.Clone(t.fields) }

// Field returns the named field.
func (t *Type) Field(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether the struct declares the named field.
func (t *Type) HasField(name string) bool {
	_, ok := t.Field(name)
	return ok
}

// Methods returns a copy of the methods in declaration order.
func (t *Type) Methods() []Method { return slices.Clone(t.methods) }

// Directive returns the last value of a roster directive and whether it is set.
func (t *Type) Directive(key string) (string, bool) {
	values, ok := t.directives[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// DirectiveValues returns every value given for a repeated directive.
func (t *Type) DirectiveValues(key string) []string {
	return slices.Clone(t.directives[key])
}

// Directives returns a copy of all directives.
func (t *Type) Directives() map[string][]string {
	out := make(map[string][]string, len(t.directives))
	for k, v := range t.directives {
		out[k] = slices.Clone(v)
	}
	return out
}

func (t *Type) String() string { return t.QualifiedName() }

// withMethods returns a copy of t carrying methods.
func (t *Type) withMethods(methods []Method) *Type {
	c := *t
	c.methods = slices.Clone(methods)
	return &c
}
