package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/zjrosen/roster/internal/cachemanager"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/infrastructure/sqlite"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/metrics"
	appreg "github.com/zjrosen/roster/internal/registry/application"
	"github.com/zjrosen/roster/internal/tracing"
)

// runtime holds the service and everything that must be closed with it.
type runtime struct {
	service  *appreg.RegistryService
	registry *prometheus.Registry
	closers  []func() error
}

// serviceOptions selects the optional collaborators of a command.
type serviceOptions struct {
	// catalog opens the build catalog; watch records builds, history reads them.
	catalog bool
}

func newRuntime(ctx context.Context, c config.Config, so serviceOptions) (*runtime, error) {
	rt := &runtime{registry: prometheus.NewRegistry()}
	rt.registry.MustRegister(collectors.NewGoCollector())

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	rt.closers = append(rt.closers, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return provider.Shutdown(shutdownCtx)
	})

	opts := []appreg.Option{
		appreg.WithTracer(provider.Tracer()),
		appreg.WithMetrics(metrics.New(rt.registry)),
	}

	if c.Cache.Backend == config.CacheBackendRedis {
		cache, closeRedis, err := newRedisCache(ctx, c.Cache)
		if err != nil {
			log.Warn(log.CatCache, "redis unavailable, using in-memory dispatch cache", "addr", c.Cache.RedisAddr, "error", err.Error())
		} else {
			opts = append(opts, appreg.WithDispatchCache(cache))
			rt.closers = append(rt.closers, closeRedis)
		}
	}

	if so.catalog && flags.New(c.Flags).Enabled(flags.FlagCatalog) && c.Catalog.Path != "" {
		db, err := sqlite.NewDB(c.Catalog.Path)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		opts = append(opts, appreg.WithCatalog(db.CatalogRepository()))
		rt.closers = append(rt.closers, db.Close)
	}

	svc, err := appreg.NewRegistryService(c, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.service = svc
	return rt, nil
}

func newRedisCache(ctx context.Context, c config.CacheConfig) (cachemanager.CacheManager[string, string], func() error, error) {
	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr, DB: c.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	cache, err := cachemanager.NewRedisCacheManager[string, string]("dispatch", client, c.Prefix, c.TTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return cache, client.Close, nil
}

// Close releases the service and its collaborators in reverse order.
func (rt *runtime) Close() error {
	if rt.service != nil {
		rt.service.Close()
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// loadRegistry builds the registry once for a one-shot query command.
func loadRegistry(ctx context.Context) (*runtime, error) {
	rt, err := newRuntime(ctx, cfg, serviceOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := rt.service.Reload(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}
