package conventions

import (
	"errors"
	"go/token"
	"strings"

	"github.com/zjrosen/roster/internal/loader"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

// Directive keys read from type doc comments.
const (
	DirectiveDisabled      = "disabled"
	DirectiveDefault       = "default"
	DirectiveURI           = "uri"
	DirectiveTransactional = "transactional"
)

// Name suffixes that select a role.
const (
	SuffixHandler    = "Controller"
	SuffixFlow       = "Flow"
	SuffixDataSource = "DataSource"
	SuffixService    = "Service"
)

// Construction errors.
var (
	ErrInvalidPattern = errors.New("invalid uri pattern")
	ErrUnknownAction  = errors.New("unknown default action")
	ErrInvalidSetting = errors.New("invalid data source setting")
	ErrMissingDriver  = errors.New("data source has no driver")
	ErrInvalidValue   = errors.New("invalid directive value")
)

// Default returns the conventions table: domain first, then handler, flow,
// data source and service in priority order.
func Default() registry.Conventions {
	return registry.Conventions{
		Domain: registry.Classifier{Role: registry.RoleDomain, Match: IsDomain, Build: adapt(NewDomain)},
		Roles: []registry.Classifier{
			{Role: registry.RoleHandler, Match: IsRequestHandler, Build: adapt(NewHandler)},
			{Role: registry.RoleFlow, Match: IsFlow, Build: adapt(NewFlow)},
			{Role: registry.RoleDataSource, Match: IsDataSource, Build: adapt(NewDataSource)},
			{Role: registry.RoleService, Match: IsService, Build: adapt(NewService)},
		},
	}
}

func adapt[A registry.Artifact](fn func(*loader.Type) (A, error)) func(*loader.Type) (registry.Artifact, error) {
	return func(t *loader.Type) (registry.Artifact, error) {
		a, err := fn(t)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// IsRequestHandler reports whether t is named like a request handler.
func IsRequestHandler(t *loader.Type) bool { return hasRoleSuffix(t, SuffixHandler) }

// IsFlow reports whether t is named like a flow.
func IsFlow(t *loader.Type) bool { return hasRoleSuffix(t, SuffixFlow) }

// IsDataSource reports whether t is named like a data source.
func IsDataSource(t *loader.Type) bool { return hasRoleSuffix(t, SuffixDataSource) }

// IsService reports whether t is named like a service.
func IsService(t *loader.Type) bool { return hasRoleSuffix(t, SuffixService) }

func hasRoleSuffix(t *loader.Type, suffix string) bool {
	return t != nil && len(t.Name()) > len(suffix) && strings.HasSuffix(t.Name(), suffix)
}

// artifact holds what every facade shares.
type artifact struct {
	typ       *loader.Type
	name      string
	available bool
}

func newArtifact(t *loader.Type, suffix string) artifact {
	return artifact{
		typ:       t,
		name:      strings.TrimSuffix(t.Name(), suffix),
		available: !disabled(t),
	}
}

func (a artifact) Name() string       { return a.name }
func (a artifact) FullName() string   { return a.typ.QualifiedName() }
func (a artifact) Available() bool    { return a.available }
func (a artifact) Type() *loader.Type { return a.typ }

func disabled(t *loader.Type) bool {
	_, ok := t.Directive(DirectiveDisabled)
	return ok
}

func exportedMethods(t *loader.Type) []string {
	var names []string
	for _, m := range t.Methods() {
		if token.IsExported(m.Name) {
			names = append(names, m.Name)
		}
	}
	return names
}
