package loader

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const bookSource = `package library

import "time"

// Book is a catalogue entry.
//roster:table books
type Book struct {
	ID        int64
	Version   int
	Title     string ` + "`roster:\"required\"`" + `
	Published *time.Time
	cache     []byte
	Audit
}

type Audit struct {
	CreatedBy string
}

//roster:default list
//roster:uri /legacy/books/*
type BookController struct{}

func (c *BookController) List() {}
func (c BookController) Show()  {}
func (c *BookController) helper() {}

type Repository interface {
	Find(id int64) (*Book, error)
}

type Count int

func init() {
	type local struct{}
	_ = local{}
}
`

func mustParse(t *testing.T, path, src string) *Unit {
	t.Helper()
	fsys := fstest.MapFS{path: {Data: []byte(src)}}
	unit, err := Parse(context.Background(), NewResource(fsys, path))
	require.NoError(t, err)
	return unit
}

func typeNamed(t *testing.T, unit *Unit, name string) *Type {
	t.Helper()
	for _, typ := range unit.Types {
		if typ.Name() == name {
			return typ
		}
	}
	require.Failf(t, "type not found", "%s", name)
	return nil
}

func TestParse_TopLevelTypes(t *testing.T) {
	unit := mustParse(t, "library/book.go", bookSource)

	require.Equal(t, "library", unit.Package)
	require.Equal(t, "library/book.go", unit.Resource)

	var names []string
	for _, typ := range unit.Types {
		names = append(names, typ.Name())
	}
	require.Equal(t, []string{"Book", "Audit", "BookController", "Repository", "Count"}, names)
}

func TestParse_StructFields(t *testing.T) {
	unit := mustParse(t, "library/book.go", bookSource)
	book := typeNamed(t, unit, "Book")

	require.Equal(t, KindStruct, book.Kind())
	require.Equal(t, "library.Book", book.QualifiedName())
	require.Equal(t, "library/book.go", book.Resource())
	require.True(t, book.HasField("ID"))
	require.True(t, book.HasField("Version"))

	title, ok := book.Field("Title")
	require.True(t, ok)
	require.Equal(t, "string", title.Type)
	require.Equal(t, "required", title.Tag.Get("roster"))

	published, _ := book.Field("Published")
	require.Equal(t, "*time.Time", published.Type)

	audit, ok := book.Field("Audit")
	require.True(t, ok)
	require.True(t, audit.Embedded)
}

func TestParse_Directives(t *testing.T) {
	unit := mustParse(t, "library/book.go", bookSource)

	book := typeNamed(t, unit, "Book")
	table, ok := book.Directive("table")
	require.True(t, ok)
	require.Equal(t, "books", table)

	ctrl := typeNamed(t, unit, "BookController")
	def, ok := ctrl.Directive("default")
	require.True(t, ok)
	require.Equal(t, "list", def)
	require.Equal(t, []string{"/legacy/books/*"}, ctrl.DirectiveValues("uri"))

	_, ok = typeNamed(t, unit, "Audit").Directive("table")
	require.False(t, ok)
}

func TestParse_Methods(t *testing.T) {
	unit := mustParse(t, "library/book.go", bookSource)

	require.Equal(t, []Method{
		{Name: "List", PointerReceiver: true},
		{Name: "Show", PointerReceiver: false},
		{Name: "helper", PointerReceiver: true},
	}, unit.Methods["BookController"])
	require.NotContains(t, unit.Methods, "")
}

func TestParse_Kinds(t *testing.T) {
	unit := mustParse(t, "library/book.go", bookSource)

	repo := typeNamed(t, unit, "Repository")
	require.Equal(t, KindInterface, repo.Kind())
	require.True(t, repo.Abstract())

	require.Equal(t, KindOther, typeNamed(t, unit, "Count").Kind())
	require.False(t, typeNamed(t, unit, "Book").Abstract())
}

func TestParse_GenericReceiver(t *testing.T) {
	src := `package store

type Cache[K comparable, V any] struct{ items map[K]V }

func (c *Cache[K, V]) Get(k K) V { return c.items[k] }
`
	unit := mustParse(t, "store/cache.go", src)
	require.Equal(t, []Method{{Name: "Get", PointerReceiver: true}}, unit.Methods["Cache"])
}

func TestParse_SyntaxError(t *testing.T) {
	fsys := fstest.MapFS{"broken.go": {Data: []byte("package broken\n\ntype Oops struct {\n")}}

	_, err := Parse(context.Background(), NewResource(fsys, "broken.go"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.go")
}

func TestParse_MissingResource(t *testing.T) {
	_, err := Parse(context.Background(), NewResource(fstest.MapFS{}, "gone.go"))
	require.Error(t, err)
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsys := fstest.MapFS{"a.go": {Data: []byte("package a\n")}}
	_, err := Parse(ctx, NewResource(fsys, "a.go"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestType_AbstractDirective(t *testing.T) {
	typ := NewType("app", "BaseController", KindStruct, WithDirective(DirectiveAbstract, ""))
	require.True(t, typ.Abstract())
}

func TestType_AccessorsReturnCopies(t *testing.T) {
	typ := NewType("app", "Book", KindStruct,
		WithFields(Field{Name: "ID"}),
		WithMethods(Method{Name: "Save"}),
		WithDirective("uri", "/a"),
	)

	fields := typ.Fields()
	fields[0].Name = "mutated"
	methods := typ.Methods()
	methods[0].Name = "mutated"
	dirs := typ.Directives()
	dirs["uri"][0] = "mutated"

	require.Equal(t, "ID", typ.Fields()[0].Name)
	require.Equal(t, "Save", typ.Methods()[0].Name)
	require.Equal(t, []string{"/a"}, typ.DirectiveValues("uri"))
}
