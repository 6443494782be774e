package registry

import (
	"slices"
	"strings"
	"time"
)

// Registry is the immutable result of a build: artifacts indexed by role and
// published key, plus the active data source. It is safe for concurrent use.
type Registry struct {
	id         string
	builtAt    time.Time
	byName     map[Role]map[string]Artifact
	snapshots  map[Role][]Artifact // sorted by published key
	handlers   []Handler           // same order as snapshots[RoleHandler]
	dataSource Artifact
	dual       []string
}

// ID identifies the build that produced the registry.
func (r *Registry) ID() string { return r.id }

// BuiltAt is when the build completed.
func (r *Registry) BuiltAt() time.Time { return r.builtAt }

// Lookup returns the artifact published under key for role. Domain keys are
// decapitalized logical names; the others are full names.
func (r *Registry) Lookup(role Role, key string) (Artifact, bool) {
	if role == RoleDataSource {
		if r.dataSource != nil && r.dataSource.FullName() == key {
			return r.dataSource, true
		}
		return nil, false
	}
	a, ok := r.byName[role][key]
	return a, ok
}

// List returns a fresh copy of the artifacts of role, ordered by key.
func (r *Registry) List(role Role) []Artifact {
	if role == RoleDataSource {
		if r.dataSource == nil {
			return []Artifact{}
		}
		return []Artifact{r.dataSource}
	}
	return append([]Artifact{}, r.snapshots[role]...)
}

// Domain looks up a domain artifact by decapitalized name.
func (r *Registry) Domain(name string) (Artifact, bool) { return r.Lookup(RoleDomain, name) }

// Handler looks up a published handler by full name.
func (r *Registry) Handler(fullName string) (Handler, bool) {
	a, ok := r.Lookup(RoleHandler, fullName)
	if !ok {
		return nil, false
	}
	h, ok := a.(Handler)
	return h, ok
}

// Flow looks up a published flow by full name.
func (r *Registry) Flow(fullName string) (Artifact, bool) { return r.Lookup(RoleFlow, fullName) }

// Service looks up a published service by full name.
func (r *Registry) Service(fullName string) (Artifact, bool) { return r.Lookup(RoleService, fullName) }

// Domains lists the domain artifacts.
func (r *Registry) Domains() []Artifact { return r.List(RoleDomain) }

// Handlers lists the published handlers.
func (r *Registry) Handlers() []Handler { return append([]Handler{}, r.handlers...) }

// Flows lists the published flows.
func (r *Registry) Flows() []Artifact { return r.List(RoleFlow) }

// Services lists the published services.
func (r *Registry) Services() []Artifact { return r.List(RoleService) }

// DataSource returns the active data source, if any.
func (r *Registry) DataSource() (Artifact, bool) {
	return r.dataSource, r.dataSource != nil
}

// DispatchURI returns the first handler, in key order, that maps uri.
func (r *Registry) DispatchURI(uri string) (Handler, bool) {
	for _, h := range r.handlers {
		if h.MapsToURI(uri) {
			return h, true
		}
	}
	return nil, false
}

// Keys returns the published keys of role in order.
func (r *Registry) Keys(role Role) []string {
	artifacts := r.List(role)
	keys := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		keys = append(keys, publishedKey(role, a))
	}
	return keys
}

// Counts reports the number of published artifacts per role.
func (r *Registry) Counts() map[Role]int {
	counts := make(map[Role]int, len(Roles()))
	for _, role := range Roles() {
		counts[role] = len(r.List(role))
	}
	return counts
}

// DualRegistered lists qualified names of types published both as a domain
// artifact and under another role.
func (r *Registry) DualRegistered() []string {
	return slices.Clone(r.dual)
}

func publishedKey(role Role, a Artifact) string {
	if role == RoleDomain {
		return Decapitalize(a.Name())
	}
	return a.FullName()
}

func sortedSnapshot(m map[string]Artifact) []Artifact {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	out := make([]Artifact, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
