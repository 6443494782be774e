package registry

import (
	"context"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/roster/internal/loader"
	"github.com/zjrosen/roster/internal/log"
)

// TypeLoader compiles resources into a shared, cumulative type space.
// Compiling a resource is Parse followed by Define.
type TypeLoader interface {
	Parse(ctx context.Context, res loader.Resource) (*loader.Unit, error)
	Define(unit *loader.Unit)
	Types() []*loader.Type
}

var _ TypeLoader = (*loader.Space)(nil)

type buildOptions struct {
	strictNames bool
	workers     int
	id          string
	now         func() time.Time
}

// Option configures Build.
type Option func(*buildOptions)

// WithStrictNames fails the build with *DuplicateNameError when two artifacts
// of one role are published under the same key. By default the later one
// silently replaces the earlier.
func WithStrictNames() Option {
	return func(o *buildOptions) { o.strictNames = true }
}

// WithCompileWorkers parses up to n resources concurrently. Units are still
// defined in input order and only once every resource parsed.
func WithCompileWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithBuildID sets the registry id instead of a random UUID.
func WithBuildID(id string) Option {
	return func(o *buildOptions) { o.id = id }
}

// Build compiles resources with tl and assembles a registry using conv.
// Any error aborts the whole build and no registry is returned.
func Build(ctx context.Context, tl TypeLoader, resources []loader.Resource, conv Conventions, opts ...Option) (*Registry, error) {
	if tl == nil {
		return nil, ErrNilLoader
	}
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions{workers: 1, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	units, err := compile(ctx, tl, resources, o.workers)
	if err != nil {
		return nil, err
	}
	for _, unit := range units {
		tl.Define(unit)
	}

	types := tl.Types()
	log.Debug(log.CatRegistry, "classifying loaded types", "build", o.id, "resources", len(resources), "types", len(types))

	b := newBuilder(o)
	if err := b.classifyDomains(types, conv.Domain); err != nil {
		return nil, err
	}
	if err := b.classifyRoles(types, conv.Roles); err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// compile parses every resource. Sequentially it stops at the first failure;
// with workers > 1 the failure of the earliest resource in input order wins.
func compile(ctx context.Context, tl TypeLoader, resources []loader.Resource, workers int) ([]*loader.Unit, error) {
	units := make([]*loader.Unit, len(resources))

	if workers <= 1 || len(resources) < 2 {
		for i, res := range resources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			unit, err := tl.Parse(ctx, res)
			if err != nil {
				return nil, &CompilationError{Resource: res.Path, Err: err}
			}
			units[i] = unit
		}
		return units, nil
	}

	// Every resource is parsed so that the reported failure does not depend
	// on scheduling.
	errs := make([]error, len(resources))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, res := range resources {
		g.Go(func() error {
			unit, err := tl.Parse(ctx, res)
			if err != nil {
				errs[i] = err
				return err
			}
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return units, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, &CompilationError{Resource: resources[i].Path, Err: err}
		}
	}
	return units, nil
}

type builder struct {
	opts        buildOptions
	published   map[Role]map[string]Artifact
	dataSource  Artifact
	domainTypes map[string]bool
}

func newBuilder(o buildOptions) *builder {
	b := &builder{
		opts:        o,
		published:   make(map[Role]map[string]Artifact),
		domainTypes: make(map[string]bool),
	}
	for _, role := range []Role{RoleDomain, RoleHandler, RoleFlow, RoleService} {
		b.published[role] = make(map[string]Artifact)
	}
	return b
}

func (b *builder) classifyDomains(types []*loader.Type, domain Classifier) error {
	for _, t := range types {
		if !domain.Match(t) {
			continue
		}
		a, err := domain.Build(t)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: %s %s", ErrNilArtifact, RoleDomain, t.QualifiedName())
		}
		if err := b.publish(RoleDomain, Decapitalize(a.Name()), a); err != nil {
			return err
		}
		b.domainTypes[t.QualifiedName()] = true
	}
	return nil
}

func (b *builder) classifyRoles(types []*loader.Type, roles []Classifier) error {
	for _, t := range types {
		if t.Abstract() {
			continue
		}
		for _, cl := range roles {
			if !cl.Match(t) {
				continue
			}
			if err := b.accept(cl, t); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (b *builder) accept(cl Classifier, t *loader.Type) error {
	a, err := cl.Build(t)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("%w: %s %s", ErrNilArtifact, cl.Role, t.QualifiedName())
	}

	switch cl.Role {
	case RoleHandler:
		if _, ok := a.(Handler); !ok {
			return ErrNotHandler
		}
		fallthrough
	case RoleFlow:
		if !a.Available() {
			log.Debug(log.CatRegistry, "discarding unavailable artifact", "role", cl.Role, "type", t.QualifiedName())
			return nil
		}
		return b.publish(cl.Role, a.FullName(), a)
	case RoleDataSource:
		if !a.Available() {
			log.Debug(log.CatRegistry, "discarding unavailable data source", "type", t.QualifiedName())
			return nil
		}
		if b.dataSource != nil {
			return &DuplicateDataSourceError{Existing: b.dataSource.FullName(), Conflicting: a.FullName()}
		}
		b.dataSource = a
		return nil
	case RoleService:
		return b.publish(RoleService, a.FullName(), a)
	}
	return nil
}

func (b *builder) publish(role Role, key string, a Artifact) error {
	m := b.published[role]
	if prev, exists := m[key]; exists {
		if b.opts.strictNames {
			return &DuplicateNameError{
				Role:        role,
				Key:         key,
				Existing:    prev.Type().QualifiedName(),
				Conflicting: a.Type().QualifiedName(),
			}
		}
		log.Warn(log.CatRegistry, "artifact name collision, keeping the later one",
			"role", role, "key", key, "replaced", prev.Type().QualifiedName(), "by", a.Type().QualifiedName())
	}
	m[key] = a
	return nil
}

func (b *builder) finish() *Registry {
	r := &Registry{
		id:         b.opts.id,
		builtAt:    b.opts.now(),
		byName:     b.published,
		snapshots:  make(map[Role][]Artifact, len(b.published)),
		dataSource: b.dataSource,
	}
	for role, m := range b.published {
		r.snapshots[role] = sortedSnapshot(m)
	}
	for _, a := range r.snapshots[RoleHandler] {
		r.handlers = append(r.handlers, a.(Handler))
	}

	for _, role := range []Role{RoleHandler, RoleFlow, RoleService} {
		for _, a := range r.snapshots[role] {
			if b.domainTypes[a.Type().QualifiedName()] {
				r.dual = append(r.dual, a.Type().QualifiedName())
			}
		}
	}
	if r.dataSource != nil && b.domainTypes[r.dataSource.Type().QualifiedName()] {
		r.dual = append(r.dual, r.dataSource.Type().QualifiedName())
	}
	for _, name := range r.dual {
		log.Warn(log.CatRegistry, "type registered as domain and another role", "type", name)
	}
	return r
}

// Decapitalize lower-cases the first character of name only.
func Decapitalize(name string) string {
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(first)) + name[size:]
}
