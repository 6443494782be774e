package registry

import (
	"io/fs"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/roster/internal/cachemanager"
	"github.com/zjrosen/roster/internal/loader"
	"github.com/zjrosen/roster/internal/metrics"
	"github.com/zjrosen/roster/internal/registry/domain"
)

// Option configures a RegistryService.
type Option func(*RegistryService)

// WithSourceFS reads resources from fsys below root instead of the
// configured source directory.
func WithSourceFS(fsys fs.FS, root string) Option {
	return func(s *RegistryService) {
		s.fsys = fsys
		s.root = root
	}
}

// WithConventions replaces the default classification conventions.
func WithConventions(conv registry.Conventions) Option {
	return func(s *RegistryService) { s.conv = conv }
}

// WithCatalog records successful builds in repo.
func WithCatalog(repo registry.CatalogRepository) Option {
	return func(s *RegistryService) { s.catalog = repo }
}

// WithMetrics reports builds and dispatches to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RegistryService) { s.metrics = m }
}

// WithTracer traces reloads and dispatches with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *RegistryService) { s.tracer = tracer }
}

// WithDispatchCache memoizes dispatch results in cache. Values are handler
// full names, empty for a URI no handler maps.
func WithDispatchCache(cache cachemanager.CacheManager[string, string]) Option {
	return func(s *RegistryService) { s.dispatchCache = cache }
}

// WithParseCache reuses parsed resources across reloads.
func WithParseCache(cache *loader.ParseCache) Option {
	return func(s *RegistryService) { s.parseCache = cache }
}
