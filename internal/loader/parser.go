package loader

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/inspector"
)

const directivePrefix = "//roster:"

// Unit is the result of parsing one resource.
type Unit struct {
	Resource string
	Package  string
	Types    []*Type
	Methods  map[string][]Method // receiver type name -> methods, declaration order
}

// Parse compiles a resource into a Unit. Syntax errors are returned as the
// go/scanner error list produced by go/parser.
func Parse(ctx context.Context, res Resource) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := res.Read()
	if err != nil {
		return nil, err
	}
	return parseSource(ctx, res.Path, src)
}

func parseSource(ctx context.Context, path string, src []byte) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	unit := &Unit{
		Resource: path,
		Package:  file.Name.Name,
		Methods:  make(map[string][]Method),
	}

	insp := inspector.New([]*ast.File{file})
	filter := []ast.Node{(*ast.GenDecl)(nil), (*ast.FuncDecl)(nil)}
	insp.WithStack(filter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		switch decl := n.(type) {
		case *ast.GenDecl:
			// Only file-level declarations; local types inside functions are ignored.
			if decl.Tok != token.TYPE || len(stack) != 2 {
				return false
			}
			for _, spec := range decl.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(decl.Specs) == 1 {
					doc = decl.Doc
				}
				unit.Types = append(unit.Types, typeFromSpec(unit, ts, doc))
			}
			return false
		case *ast.FuncDecl:
			if recv, ptr, ok := receiverName(decl); ok {
				unit.Methods[recv] = append(unit.Methods[recv], Method{
					Name:            decl.Name.Name,
					PointerReceiver: ptr,
				})
			}
			return false
		}
		return true
	})

	return unit, nil
}

func typeFromSpec(unit *Unit, ts *ast.TypeSpec, doc *ast.CommentGroup) *Type {
	opts := []TypeOption{FromResource(unit.Resource)}
	for _, d := range parseDirectives(doc) {
		opts = append(opts, WithDirective(d.key, d.value))
	}

	kind := KindOther
	switch t := ts.Type.(type) {
	case *ast.StructType:
		kind = KindStruct
		opts = append(opts, WithFields(structFields(t)...))
	case *ast.InterfaceType:
		kind = KindInterface
	}
	return NewType(unit.Package, ts.Name.Name, kind, opts...)
}

func structFields(st *ast.StructType) []Field {
	var fields []Field
	for _, f := range st.Fields.List {
		typ := types.ExprString(f.Type)
		var tag reflect.StructTag
		if f.Tag != nil {
			if raw, err := strconv.Unquote(f.Tag.Value); err == nil {
				tag = reflect.StructTag(raw)
			}
		}
		if len(f.Names) == 0 {
			fields = append(fields, Field{Name: embeddedName(f.Type), Type: typ, Tag: tag, Embedded: true})
			continue
		}
		for _, name := range f.Names {
			fields = append(fields, Field{Name: name.Name, Type: typ, Tag: tag})
		}
	}
	return fields
}

// embeddedName returns the field name Go assigns to an embedded field.
func embeddedName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.SelectorExpr:
			return e.Sel.Name
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return types.ExprString(expr)
		}
	}
}

func receiverName(fn *ast.FuncDecl) (name string, pointer bool, ok bool) {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return "", false, false
	}
	expr := fn.Recv.List[0].Type
	if star, isStar := expr.(*ast.StarExpr); isStar {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	ident, isIdent := expr.(*ast.Ident)
	if !isIdent {
		return "", false, false
	}
	return ident.Name, pointer, true
}

type directive struct {
	key, value string
}

// parseDirectives collects "//roster:key value" lines in order. A directive
// without a value has an empty value.
func parseDirectives(doc *ast.CommentGroup) []directive {
	if doc == nil {
		return nil
	}
	var directives []directive
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, directivePrefix) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(c.Text, directivePrefix))
		if body == "" {
			continue
		}
		key, value, _ := strings.Cut(body, " ")
		directives = append(directives, directive{key: key, value: strings.TrimSpace(value)})
	}
	return directives
}
