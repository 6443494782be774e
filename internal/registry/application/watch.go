package registry

import (
	"context"
	"fmt"

	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/watcher"
)

// Watch reloads the registry whenever a resource under the source directory
// changes, until ctx is cancelled. Failed reloads are logged and published;
// the previous registry stays current.
func (s *RegistryService) Watch(ctx context.Context) error {
	cfg := watcher.DefaultConfig(s.cfg.SourceDir)
	if s.cfg.Watch.Debounce > 0 {
		cfg.DebounceDur = s.cfg.Watch.Debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("watching %s: %w", s.cfg.SourceDir, err)
	}
	defer func() { _ = w.Stop() }()

	log.Info(log.CatWatcher, "watching source directory", "dir", s.cfg.SourceDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatcher, "source changed, reloading", "dir", s.cfg.SourceDir)
			_, _ = s.Reload(ctx)
		}
	}
}
