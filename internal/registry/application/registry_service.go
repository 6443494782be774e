package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/roster/internal/cachemanager"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/conventions"
	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/loader"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/metrics"
	"github.com/zjrosen/roster/internal/pubsub"
	"github.com/zjrosen/roster/internal/registry/domain"
	"github.com/zjrosen/roster/internal/tracing"
)

// ReloadEvent describes a finished reload. Err is set for failed reloads.
type ReloadEvent struct {
	BuildID   string
	SourceDir string
	Counts    map[string]int
	Duration  time.Duration
	Err       error
}

// Dispatch cache results reported to metrics.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

type dispatchInput struct {
	reg      *registry.Registry
	uri      string
	computed *bool
}

// RegistryService handles registry builds and queries
type RegistryService struct {
	cfg   config.Config
	flags *flags.Registry
	fsys  fs.FS
	root  string
	conv  registry.Conventions

	holder     *registry.Holder
	space      *loader.Space // shared across reloads unless loader.reset_on_reload
	parseCache *loader.ParseCache

	catalog       registry.CatalogRepository
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	dispatchCache cachemanager.CacheManager[string, string]
	dispatch      *cachemanager.ReadThroughCache[string, string, dispatchInput]
	broker        *pubsub.Broker[ReloadEvent]

	mu sync.Mutex // serializes reloads
}

// NewRegistryService creates a service for cfg. No registry is loaded until
// the first Reload.
func NewRegistryService(cfg config.Config, opts ...Option) (*RegistryService, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &RegistryService{
		cfg:    cfg,
		flags:  flags.New(cfg.Flags),
		root:   ".",
		conv:   conventions.Default(),
		holder: registry.NewHolder(nil),
		broker: pubsub.NewBroker[ReloadEvent](),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fsys == nil {
		s.fsys = os.DirFS(cfg.SourceDir)
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(tracing.DefaultServiceName)
	}
	if s.parseCache == nil && cfg.Loader.ParseCacheSize > 0 {
		pc, err := loader.NewParseCache(cfg.Loader.ParseCacheSize)
		if err != nil {
			return nil, err
		}
		s.parseCache = pc
	}
	if s.dispatchCache == nil {
		s.dispatchCache = cachemanager.NewInMemoryCacheManager[string, string]("dispatch", cfg.Cache.TTL, cachemanager.DefaultCleanupInterval)
	}
	s.dispatch = cachemanager.NewReadThroughCache(
		s.dispatchCache,
		resolveHandler,
		!s.flags.Enabled(flags.FlagDispatchCache),
	)
	s.space = s.newSpace()

	return s, nil
}

func (s *RegistryService) newSpace() *loader.Space {
	if s.parseCache != nil {
		return loader.NewSpace(loader.WithParseCache(s.parseCache))
	}
	return loader.NewSpace()
}

// resolveHandler returns the full name of the handler dispatching input.uri,
// empty when none does.
func resolveHandler(_ context.Context, input dispatchInput) (string, error) {
	*input.computed = true
	h, ok := input.reg.DispatchURI(input.uri)
	if !ok {
		return "", nil
	}
	return h.FullName(), nil
}

// Reload rebuilds the registry from the source directory. On success the new
// registry becomes current; on failure the previous one stays current and
// the error is returned.
func (s *RegistryService) Reload(ctx context.Context) (*registry.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, tracing.SpanReload,
		trace.WithAttributes(attribute.String(tracing.AttrSourceDir, s.cfg.SourceDir)))
	defer span.End()

	start := time.Now()
	reg, err := s.rebuild(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveBuild(err, elapsed)
	tracing.RecordError(span, err)

	if err != nil {
		log.ErrorErr(log.CatRegistry, "reload failed", err, "source", s.cfg.SourceDir)
		s.broker.Publish(pubsub.ReloadFailedEvent, ReloadEvent{
			SourceDir: s.cfg.SourceDir,
			Duration:  elapsed,
			Err:       err,
		})
		return nil, err
	}

	counts := countsByName(reg.Counts())
	span.SetAttributes(attribute.String(tracing.AttrBuildID, reg.ID()))
	for role, n := range counts {
		span.SetAttributes(tracing.CountAttr(role).Int(n))
	}

	s.holder.Swap(reg)
	if err := s.dispatch.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "flushing dispatch cache", err)
	}
	s.metrics.SetArtifacts(counts)
	s.record(ctx, reg)

	log.Info(log.CatRegistry, "registry reloaded", "build", reg.ID(), "duration", elapsed)
	s.broker.Publish(pubsub.ReloadedEvent, ReloadEvent{
		BuildID:   reg.ID(),
		SourceDir: s.cfg.SourceDir,
		Counts:    counts,
		Duration:  elapsed,
	})
	return reg, nil
}

func (s *RegistryService) rebuild(ctx context.Context) (*registry.Registry, error) {
	resources, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	space := s.space
	if s.cfg.Loader.ResetOnReload {
		space = s.newSpace()
	}

	opts := []registry.Option{registry.WithCompileWorkers(s.cfg.Loader.CompileWorkers)}
	if s.flags.Enabled(flags.FlagStrictNames) {
		opts = append(opts, registry.WithStrictNames())
	}

	ctx, span := s.tracer.Start(ctx, tracing.SpanBuild,
		trace.WithAttributes(attribute.Int(tracing.AttrResourceCount, len(resources))))
	defer span.End()

	reg, err := registry.Build(ctx, space, resources, s.conv, opts...)
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *RegistryService) discover(ctx context.Context) ([]loader.Resource, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanDiscover)
	defer span.End()

	resources, err := loader.Discover(s.fsys, s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s: %w", ErrNoSourceDir, s.cfg.SourceDir, err)
		}
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrResourceCount, len(resources)))
	log.Debug(log.CatLoader, "discovered resources", "source", s.cfg.SourceDir, "count", len(resources))
	return resources, nil
}

// record stores reg in the catalog. Catalog failures are logged and do not
// fail the reload.
func (s *RegistryService) record(ctx context.Context, reg *registry.Registry) {
	if s.catalog == nil || !s.flags.Enabled(flags.FlagCatalog) {
		return
	}
	if err := s.catalog.SaveBuild(ctx, reg.Record(s.cfg.SourceDir)); err != nil {
		log.ErrorErr(log.CatDB, "recording build", err, "build", reg.ID())
	}
}

// Current returns the current registry.
func (s *RegistryService) Current() (*registry.Registry, error) {
	reg := s.holder.Load()
	if reg == nil {
		return nil, ErrNotLoaded
	}
	return reg, nil
}

// Lookup returns the artifact published under key for role.
func (s *RegistryService) Lookup(role registry.Role, key string) (registry.Artifact, error) {
	reg, err := s.Current()
	if err != nil {
		return nil, err
	}
	a, ok := reg.Lookup(role, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, role, key)
	}
	return a, nil
}

// DataSource returns the data source of the current registry.
func (s *RegistryService) DataSource() (registry.Artifact, error) {
	reg, err := s.Current()
	if err != nil {
		return nil, err
	}
	ds, ok := reg.DataSource()
	if !ok {
		return nil, fmt.Errorf("%w: no data source", ErrNotFound)
	}
	return ds, nil
}

// Dispatch returns the request handler for uri in the current registry.
func (s *RegistryService) Dispatch(ctx context.Context, uri string) (registry.Handler, error) {
	reg, err := s.Current()
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracing.SpanDispatch,
		trace.WithAttributes(
			attribute.String(tracing.AttrBuildID, reg.ID()),
			attribute.String(tracing.AttrURI, uri),
		))
	defer span.End()

	var computed bool
	fullName, err := s.dispatch.Get(ctx, reg.ID()+"|"+uri, dispatchInput{reg: reg, uri: uri, computed: &computed}, s.cfg.Cache.TTL)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	result := cacheHit
	switch {
	case !s.flags.Enabled(flags.FlagDispatchCache):
		result = cacheBypass
	case computed:
		result = cacheMiss
	}
	s.metrics.IncrementDispatch(result)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, result == cacheHit))

	if fullName == "" {
		err := fmt.Errorf("%w: no handler for %q", ErrNotFound, uri)
		tracing.RecordError(span, err)
		return nil, err
	}
	h, ok := reg.Handler(fullName)
	if !ok {
		err := fmt.Errorf("%w: handler %s", ErrNotFound, fullName)
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String(tracing.AttrHandler, fullName))
	tracing.RecordError(span, nil)
	return h, nil
}

// History returns up to limit recorded builds, newest first. A limit <= 0
// returns every build.
func (s *RegistryService) History(ctx context.Context, limit int) ([]registry.BuildRecord, error) {
	if s.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return s.catalog.ListBuilds(ctx, limit)
}

// BuildArtifacts returns the artifacts recorded for a build.
func (s *RegistryService) BuildArtifacts(ctx context.Context, buildID string) ([]registry.ArtifactRecord, error) {
	if s.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return s.catalog.ArtifactsForBuild(ctx, buildID)
}

// Subscribe returns reload events until ctx is cancelled.
func (s *RegistryService) Subscribe(ctx context.Context) <-chan pubsub.Event[ReloadEvent] {
	return s.broker.Subscribe(ctx)
}

// Close releases subscribers.
func (s *RegistryService) Close() {
	s.broker.Close()
}

// ParseRoles maps role names to roles. No names means every role.
func ParseRoles(names []string) ([]registry.Role, error) {
	if len(names) == 0 {
		return registry.Roles(), nil
	}
	roles := make([]registry.Role, 0, len(names))
	for _, name := range names {
		role, err := registry.ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func countsByName(counts map[registry.Role]int) map[string]int {
	out := make(map[string]int, len(counts))
	for role, n := range counts {
		out[role.String()] = n
	}
	return out
}
