// Package testutil builds application source trees for tests.
package testutil

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// Builder accumulates type declarations and renders them as Go resources,
// one file per type.
type Builder struct {
	t     *testing.T
	pkg   string
	types []typeData
	raw   map[string]string
}

// NewBuilder creates a builder for resources of package pkg.
func NewBuilder(t *testing.T, pkg string) *Builder {
	t.Helper()
	return &Builder{t: t, pkg: pkg, raw: make(map[string]string)}
}

// WithType adds a type declaration with optional configuration.
func (b *Builder) WithType(name string, opts ...TypeOption) *Builder {
	td := typeData{name: name}
	for _, opt := range opts {
		opt(&td)
	}
	b.types = append(b.types, td)
	return b
}

// WithDomain adds a domain class with the identity and version fields.
func (b *Builder) WithDomain(name string, opts ...TypeOption) *Builder {
	return b.WithType(name, append([]TypeOption{Field("ID", "int64"), Field("Version", "int64")}, opts...)...)
}

// WithController adds a request handler named name+"Controller".
func (b *Builder) WithController(name string, opts ...TypeOption) *Builder {
	return b.WithType(name+"Controller", opts...)
}

// WithFlow adds a flow named name+"Flow".
func (b *Builder) WithFlow(name string, opts ...TypeOption) *Builder {
	return b.WithType(name+"Flow", opts...)
}

// WithDataSource adds a data source named name+"DataSource".
func (b *Builder) WithDataSource(name string, opts ...TypeOption) *Builder {
	return b.WithType(name+"DataSource", opts...)
}

// WithService adds a service named name+"Service".
func (b *Builder) WithService(name string, opts ...TypeOption) *Builder {
	return b.WithType(name+"Service", opts...)
}

// WithFile adds a resource verbatim, for sources the builder cannot express
// such as files that fail to compile.
func (b *Builder) WithFile(name, src string) *Builder {
	b.raw[name] = src
	return b
}

// Files renders every resource, keyed by file name.
func (b *Builder) Files() map[string]string {
	files := make(map[string]string, len(b.types)+len(b.raw))
	for _, td := range b.types {
		files[fileName(td.name)] = b.render(td)
	}
	for name, src := range b.raw {
		files[name] = src
	}
	return files
}

// MapFS renders the resources under dir of an in-memory file system.
func (b *Builder) MapFS(dir string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range b.Files() {
		fsys[path.Join(dir, name)] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

// WriteDir writes the resources into dir, creating it if needed.
func (b *Builder) WriteDir(dir string) string {
	b.t.Helper()
	require.NoError(b.t, os.MkdirAll(dir, 0o750))
	for name, src := range b.Files() {
		require.NoError(b.t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
	}
	return dir
}

func (b *Builder) render(td typeData) string {
	var sb strings.Builder
	sb.WriteString("package " + b.pkg + "\n\n")
	for _, d := range td.directives {
		sb.WriteString(strings.TrimSpace("//roster:"+d[0]+" "+d[1]) + "\n")
	}
	if len(td.fields) == 0 {
		sb.WriteString("type " + td.name + " struct{}\n")
	} else {
		sb.WriteString("type " + td.name + " struct {\n")
		for _, f := range td.fields {
			line := "\t" + f.name + " " + f.typ
			if f.tag != "" {
				line += " `" + f.tag + "`"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("}\n")
	}
	recv := strings.ToLower(td.name[:1])
	for _, m := range td.methods {
		sb.WriteString("\nfunc (" + recv + " *" + td.name + ") " + m + "() {}\n")
	}
	return sb.String()
}

// fileName maps BookController to book_controller.go.
func fileName(typeName string) string {
	var sb strings.Builder
	for i, r := range typeName {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String()) + ".go"
}

// Names returns the rendered file names in sorted order.
func (b *Builder) Names() []string {
	files := b.Files()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
