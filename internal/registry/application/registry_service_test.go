package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/roster/internal/cachemanager"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/metrics"
	"github.com/zjrosen/roster/internal/mocks"
	"github.com/zjrosen/roster/internal/pubsub"
	"github.com/zjrosen/roster/internal/registry/domain"
	"github.com/zjrosen/roster/internal/tracing"
)

const (
	bookSrc = `package app

type Book struct {
	ID      int64
	Version int64
	Title   string
}
`
	bookControllerSrc = `package app

type BookController struct{}

func (c *BookController) Index() {}
func (c *BookController) Show()  {}
`
	authorControllerSrc = `package app

type AuthorController struct{}

func (c *AuthorController) Index() {}
`
	mailServiceSrc = `package app

type MailService struct{}
`
)

// createTestFS creates a MapFS holding a small application under app/.
func createTestFS() fstest.MapFS {
	return fstest.MapFS{
		"app/book.go":            {Data: []byte(bookSrc)},
		"app/book_controller.go": {Data: []byte(bookControllerSrc)},
		"app/mail_service.go":    {Data: []byte(mailServiceSrc)},
	}
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Catalog.Path = ""
	cfg.Loader.ParseCacheSize = 0
	return cfg
}

func newTestService(t *testing.T, fsys fstest.MapFS, cfg config.Config, opts ...Option) *RegistryService {
	t.Helper()
	opts = append([]Option{WithSourceFS(fsys, "app")}, opts...)
	svc, err := NewRegistryService(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestNewRegistryService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SourceDir = ""
	_, err := NewRegistryService(cfg)
	require.Error(t, err)
}

func TestRegistryService_NotLoaded(t *testing.T) {
	svc := newTestService(t, createTestFS(), testConfig())

	_, err := svc.Current()
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = svc.Dispatch(context.Background(), "/book")
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = svc.Lookup(registry.RoleDomain, "book")
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestRegistryService_Reload(t *testing.T) {
	svc := newTestService(t, createTestFS(), testConfig())

	reg, err := svc.Reload(context.Background())
	require.NoError(t, err)

	current, err := svc.Current()
	require.NoError(t, err)
	require.Same(t, reg, current)

	book, err := svc.Lookup(registry.RoleDomain, "book")
	require.NoError(t, err)
	require.Equal(t, "app.Book", book.FullName())

	_, err = svc.Lookup(registry.RoleService, "app.Missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.DataSource()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryService_FailedReloadKeepsPrevious(t *testing.T) {
	fsys := createTestFS()
	svc := newTestService(t, fsys, testConfig())
	ctx := context.Background()

	events := svc.Subscribe(ctx)

	first, err := svc.Reload(ctx)
	require.NoError(t, err)
	ev := <-events
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.Equal(t, first.ID(), ev.Payload.BuildID)
	require.Equal(t, 1, ev.Payload.Counts["handler"])

	fsys["app/broken.go"] = &fstest.MapFile{Data: []byte("package app\n\ntype Broken struct {\n")}
	_, err = svc.Reload(ctx)
	var compErr *registry.CompilationError
	require.ErrorAs(t, err, &compErr)

	ev = <-events
	require.Equal(t, pubsub.ReloadFailedEvent, ev.Type)
	require.Error(t, ev.Payload.Err)

	current, err := svc.Current()
	require.NoError(t, err)
	require.Same(t, first, current)
}

func TestRegistryService_NoSourceDir(t *testing.T) {
	cfg := testConfig()
	cfg.SourceDir = filepath.Join(t.TempDir(), "missing")
	svc, err := NewRegistryService(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	_, err = svc.Reload(context.Background())
	require.ErrorIs(t, err, ErrNoSourceDir)
}

func TestRegistryService_ResetOnReload(t *testing.T) {
	tests := []struct {
		name          string
		reset         bool
		wantHandlers  int
		wantRemaining bool
	}{
		{name: "fresh space drops removed resources", reset: true, wantHandlers: 1},
		{name: "shared space keeps removed resources", reset: false, wantHandlers: 2, wantRemaining: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := createTestFS()
			fsys["app/author_controller.go"] = &fstest.MapFile{Data: []byte(authorControllerSrc)}
			cfg := testConfig()
			cfg.Loader.ResetOnReload = tt.reset
			svc := newTestService(t, fsys, cfg)
			ctx := context.Background()

			_, err := svc.Reload(ctx)
			require.NoError(t, err)

			delete(fsys, "app/author_controller.go")
			reg, err := svc.Reload(ctx)
			require.NoError(t, err)

			require.Len(t, reg.Handlers(), tt.wantHandlers)
			_, ok := reg.Handler("app.AuthorController")
			require.Equal(t, tt.wantRemaining, ok)
		})
	}
}

func TestRegistryService_StrictNamesFlag(t *testing.T) {
	fsys := createTestFS()
	fsys["lib/book.go"] = &fstest.MapFile{Data: []byte("package lib\n\ntype Book struct {\n\tID      int64\n\tVersion int64\n}\n")}

	lenient := newTestService(t, fsys, testConfig(), WithSourceFS(fsys, "."))
	_, err := lenient.Reload(context.Background())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Flags[flags.FlagStrictNames] = true
	strict := newTestService(t, fsys, cfg, WithSourceFS(fsys, "."))
	_, err = strict.Reload(context.Background())
	var dupErr *registry.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, "book", dupErr.Key)
}

func TestRegistryService_Dispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newTestService(t, createTestFS(), testConfig(), WithMetrics(m))
	ctx := context.Background()

	_, err := svc.Reload(ctx)
	require.NoError(t, err)

	for range 3 {
		h, err := svc.Dispatch(ctx, "/book/show")
		require.NoError(t, err)
		require.Equal(t, "app.BookController", h.FullName())
	}
	require.InDelta(t, 1, testutil.ToFloat64(m.Dispatches.WithLabelValues("miss")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.Dispatches.WithLabelValues("hit")), 0)

	_, err = svc.Dispatch(ctx, "/nothing/here")
	require.ErrorIs(t, err, ErrNotFound)

	// A reload flushes memoized results.
	_, err = svc.Reload(ctx)
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, "/book/show")
	require.NoError(t, err)
	require.InDelta(t, 3, testutil.ToFloat64(m.Dispatches.WithLabelValues("miss")), 0)
}

func TestRegistryService_DispatchCacheDisabled(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	cfg := testConfig()
	cfg.Flags[flags.FlagDispatchCache] = false
	svc := newTestService(t, createTestFS(), cfg, WithMetrics(m))
	ctx := context.Background()

	_, err := svc.Reload(ctx)
	require.NoError(t, err)
	for range 2 {
		_, err := svc.Dispatch(ctx, "/book")
		require.NoError(t, err)
	}
	require.InDelta(t, 2, testutil.ToFloat64(m.Dispatches.WithLabelValues("bypass")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(m.Dispatches.WithLabelValues("hit")), 0)
}

func TestRegistryService_DispatchWithRedisCache(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache, err := cachemanager.NewRedisCacheManager[string, string]("dispatch", client, "test", time.Minute)
	require.NoError(t, err)

	svc := newTestService(t, createTestFS(), testConfig(), WithDispatchCache(cache))
	ctx := context.Background()
	reg, err := svc.Reload(ctx)
	require.NoError(t, err)

	h, err := svc.Dispatch(ctx, "/book")
	require.NoError(t, err)
	require.Equal(t, "app.BookController", h.FullName())
	require.True(t, mr.Exists("test:dispatch:"+reg.ID()+"|/book"))

	_, err = svc.Reload(ctx)
	require.NoError(t, err)
	require.Zero(t, cache.Len())
}

func TestRegistryService_RecordsBuilds(t *testing.T) {
	catalog := mocks.NewMockCatalogRepository(t)
	catalog.EXPECT().
		SaveBuild(mock.Anything, mock.MatchedBy(func(rec registry.BuildRecord) bool {
			return rec.SourceDir == "." && rec.Counts[registry.RoleDomain] == 1 && len(rec.Artifacts) == 3
		})).
		Return(nil).
		Once()

	svc := newTestService(t, createTestFS(), testConfig(), WithCatalog(catalog))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)
}

func TestRegistryService_CatalogFailureDoesNotFailReload(t *testing.T) {
	catalog := mocks.NewMockCatalogRepository(t)
	catalog.EXPECT().SaveBuild(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	svc := newTestService(t, createTestFS(), testConfig(), WithCatalog(catalog))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	_, err = svc.Current()
	require.NoError(t, err)
}

func TestRegistryService_CatalogFlagDisabled(t *testing.T) {
	catalog := mocks.NewMockCatalogRepository(t)
	cfg := testConfig()
	cfg.Flags[flags.FlagCatalog] = false

	svc := newTestService(t, createTestFS(), cfg, WithCatalog(catalog))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)
	catalog.AssertNotCalled(t, "SaveBuild", mock.Anything, mock.Anything)
}

func TestRegistryService_History(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, createTestFS(), testConfig())
	_, err := svc.History(ctx, 10)
	require.ErrorIs(t, err, ErrCatalogDisabled)
	_, err = svc.BuildArtifacts(ctx, "b-1")
	require.ErrorIs(t, err, ErrCatalogDisabled)

	catalog := mocks.NewMockCatalogRepository(t)
	catalog.EXPECT().ListBuilds(mock.Anything, 10).Return([]registry.BuildRecord{{ID: "b-1"}}, nil).Once()
	catalog.EXPECT().ArtifactsForBuild(mock.Anything, "b-1").Return([]registry.ArtifactRecord{{Key: "book"}}, nil).Once()

	svc = newTestService(t, createTestFS(), testConfig(), WithCatalog(catalog))
	builds, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, builds, 1)

	artifacts, err := svc.BuildArtifacts(ctx, "b-1")
	require.NoError(t, err)
	require.Equal(t, "book", artifacts[0].Key)
}

func TestRegistryService_TracesReload(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	provider := tracing.NewProviderWithExporter(exp)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc := newTestService(t, createTestFS(), testConfig(), WithTracer(provider.Tracer()))
	ctx := context.Background()
	_, err := svc.Reload(ctx)
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, "/book")
	require.NoError(t, err)

	var names []string
	for _, span := range exp.GetSpans() {
		names = append(names, span.Name)
	}
	require.ElementsMatch(t, []string{
		tracing.SpanDiscover,
		tracing.SpanBuild,
		tracing.SpanReload,
		tracing.SpanDispatch,
	}, names)
}

func TestRegistryService_BuildMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	fsys := createTestFS()
	svc := newTestService(t, fsys, testConfig(), WithMetrics(m))
	ctx := context.Background()

	_, err := svc.Reload(ctx)
	require.NoError(t, err)
	require.InDelta(t, 1, testutil.ToFloat64(m.Artifacts.WithLabelValues("handler")), 0)

	fsys["app/broken.go"] = &fstest.MapFile{Data: []byte("not go")}
	_, err = svc.Reload(ctx)
	require.Error(t, err)

	require.InDelta(t, 1, testutil.ToFloat64(m.Builds.WithLabelValues(metrics.OutcomeSuccess)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Builds.WithLabelValues(metrics.OutcomeFailure)), 0)
}

func TestRegistryService_Watch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.go"), []byte(bookSrc), 0o600))

	cfg := testConfig()
	cfg.SourceDir = dir
	cfg.Watch.Debounce = 20 * time.Millisecond
	svc, err := NewRegistryService(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = svc.Reload(ctx)
	require.NoError(t, err)
	events := svc.Subscribe(ctx)

	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book_controller.go"), []byte(bookControllerSrc), 0o600))

	// A reload may observe the file half-written; wait for the one that sees it.
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case ev := <-events:
			reloaded = ev.Type == pubsub.ReloadedEvent && ev.Payload.Counts["handler"] == 1
		case <-timeout:
			t.Fatal("no reload after source change")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles(nil)
	require.NoError(t, err)
	require.Equal(t, registry.Roles(), roles)

	roles, err = ParseRoles([]string{"controller", "Service"})
	require.NoError(t, err)
	require.Equal(t, []registry.Role{registry.RoleHandler, registry.RoleService}, roles)

	_, err = ParseRoles([]string{"widget"})
	require.ErrorIs(t, err, ErrInvalidRole)
}
