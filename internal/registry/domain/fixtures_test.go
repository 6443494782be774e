package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/zjrosen/roster/internal/loader"
)

type fakeArtifact struct {
	t         *loader.Type
	name      string
	available bool
}

func (a *fakeArtifact) Name() string       { return a.name }
func (a *fakeArtifact) FullName() string   { return a.t.QualifiedName() }
func (a *fakeArtifact) Available() bool    { return a.available }
func (a *fakeArtifact) Type() *loader.Type { return a.t }

type fakeHandler struct {
	fakeArtifact
	uris []string
}

func (h *fakeHandler) MapsToURI(uri string) bool {
	for _, u := range h.uris {
		if u == uri {
			return true
		}
	}
	return false
}

func (h *fakeHandler) URIs() []string { return h.uris }

func suffixOf(t *loader.Type) string {
	for _, s := range []string{"Controller", "Flow", "DataSource", "Service"} {
		if strings.HasSuffix(t.Name(), s) {
			return s
		}
	}
	return ""
}

func available(t *loader.Type) bool {
	_, disabled := t.Directive("disabled")
	return !disabled
}

func hasSuffix(s string) func(*loader.Type) bool {
	return func(t *loader.Type) bool { return strings.HasSuffix(t.Name(), s) }
}

func buildPlain(t *loader.Type) (Artifact, error) {
	return &fakeArtifact{t: t, name: logicalName(t), available: available(t)}, nil
}

func logicalName(t *loader.Type) string {
	return strings.TrimSuffix(t.Name(), suffixOf(t))
}

// testConventions classifies by name suffix; handlers map the URIs listed in
// their "uri" directives.
func testConventions() Conventions {
	return Conventions{
		Domain: Classifier{
			Role:  RoleDomain,
			Match: func(t *loader.Type) bool { return t.HasField("ID") },
			Build: func(t *loader.Type) (Artifact, error) {
				return &fakeArtifact{t: t, name: t.Name(), available: true}, nil
			},
		},
		Roles: []Classifier{
			{
				Role:  RoleHandler,
				Match: hasSuffix("Controller"),
				Build: func(t *loader.Type) (Artifact, error) {
					return &fakeHandler{
						fakeArtifact: fakeArtifact{t: t, name: logicalName(t), available: available(t)},
						uris:         t.DirectiveValues("uri"),
					}, nil
				},
			},
			{Role: RoleFlow, Match: hasSuffix("Flow"), Build: buildPlain},
			{Role: RoleDataSource, Match: hasSuffix("DataSource"), Build: buildPlain},
			{Role: RoleService, Match: hasSuffix("Service"), Build: buildPlain},
		},
	}
}

// stubLoader serves pre-built units; parse failures are keyed by resource path.
type stubLoader struct {
	mu     sync.Mutex
	space  *loader.Space
	units  map[string]*loader.Unit
	fail   map[string]error
	parsed []string
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		space: loader.NewSpace(),
		units: make(map[string]*loader.Unit),
		fail:  make(map[string]error),
	}
}

func (s *stubLoader) add(path string, types ...*loader.Type) loader.Resource {
	s.units[path] = &loader.Unit{Resource: path, Package: "app", Types: types}
	return loader.Resource{Path: path}
}

func (s *stubLoader) failing(path string, err error) loader.Resource {
	s.fail[path] = err
	return loader.Resource{Path: path}
}

func (s *stubLoader) Parse(ctx context.Context, res loader.Resource) (*loader.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.parsed = append(s.parsed, res.Path)
	s.mu.Unlock()
	if err, ok := s.fail[res.Path]; ok {
		return nil, err
	}
	unit, ok := s.units[res.Path]
	if !ok {
		return nil, errors.New("no such resource")
	}
	return unit, nil
}

func (s *stubLoader) Define(unit *loader.Unit) { s.space.Define(unit) }

func (s *stubLoader) Types() []*loader.Type { return s.space.Types() }

func typ(name string, opts ...loader.TypeOption) *loader.Type {
	return loader.NewType("app", name, loader.KindStruct, opts...)
}

func domainFields() loader.TypeOption {
	return loader.WithFields(loader.Field{Name: "ID", Type: "int64"}, loader.Field{Name: "Version", Type: "int64"})
}

func fullNames(artifacts []Artifact) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a.FullName())
	}
	return out
}

func typeNames(types []*loader.Type) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.QualifiedName())
	}
	return out
}
