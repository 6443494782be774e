package loader

import (
	"context"
	"slices"
	"sync"
)

// Space is the append-only store of loaded types shared by successive
// compilations. It is safe for concurrent use.
type Space struct {
	mu        sync.RWMutex
	order     []string         // qualified type names, first definition order
	types     map[string]*Type // qualified name -> latest declaration
	resources []string         // resource paths, first definition order
	// receiver qualified name -> resource path -> methods
	methods map[string]map[string][]Method
	cache   *ParseCache
}

// SpaceOption configures a Space.
type SpaceOption func(*Space)

// WithParseCache makes the space reuse units parsed from identical content.
// The cache may be shared by several spaces.
func WithParseCache(c *ParseCache) SpaceOption {
	return func(s *Space) { s.cache = c }
}

// NewSpace creates an empty type space.
func NewSpace(opts ...SpaceOption) *Space {
	s := &Space{
		types:   make(map[string]*Type),
		methods: make(map[string]map[string][]Method),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse compiles a resource without defining it.
func (s *Space) Parse(ctx context.Context, res Resource) (*Unit, error) {
	if s.cache != nil {
		return s.cache.Parse(ctx, res)
	}
	return Parse(ctx, res)
}

// Define adds the declarations of a parsed unit. Declarations previously
// defined from the same resource are replaced; a type keeps the position of
// its first definition.
func (s *Space) Define(unit *Unit) {
	if unit == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.resources, unit.Resource) {
		s.resources = append(s.resources, unit.Resource)
	}

	for _, t := range unit.Types {
		q := t.QualifiedName()
		if _, exists := s.types[q]; !exists {
			s.order = append(s.order, q)
		}
		s.types[q] = t
	}

	for _, byResource := range s.methods {
		delete(byResource, unit.Resource)
	}
	for recv, methods := range unit.Methods {
		q := qualify(unit.Package, recv)
		if s.methods[q] == nil {
			s.methods[q] = make(map[string][]Method)
		}
		s.methods[q][unit.Resource] = slices.Clone(methods)
	}
}

// Compile parses and defines a resource.
func (s *Space) Compile(ctx context.Context, res Resource) error {
	unit, err := s.Parse(ctx, res)
	if err != nil {
		return err
	}
	s.Define(unit)
	return nil
}

// Add defines already-built types, as if they came from one resource.
func (s *Space) Add(resource string, types ...*Type) {
	unit := &Unit{Resource: resource, Types: types}
	s.Define(unit)
}

// Types returns a snapshot of every loaded type in first definition order,
// with methods from all resources attached.
func (s *Space) Types() []*Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Type, 0, len(s.order))
	for _, q := range s.order {
		t := s.types[q]
		var methods []Method
		if byResource, ok := s.methods[q]; ok {
			for _, res := range s.resources {
				methods = append(methods, byResource[res]...)
			}
		}
		if len(methods) == 0 {
			methods = t.methods
		}
		out = append(out, t.withMethods(methods))
	}
	return out
}

// Len returns the number of loaded types.
func (s *Space) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
