package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/roster/internal/api"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/presentation"
	"github.com/zjrosen/roster/internal/pubsub"
	appreg "github.com/zjrosen/roster/internal/registry/application"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

var watchAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the registry whenever a source file changes",
	Long: `Build the registry, then rebuild it whenever a .go resource under the
source directory changes. A failed rebuild keeps the previous registry.

With --addr (or watch.metrics_addr) an HTTP API is served with the
current artifacts, URI dispatch, build history, reload events and
Prometheus metrics.

Examples:
  roster watch
  roster watch --addr localhost:9090
  curl localhost:9090/dispatch?uri=/book/show`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "", "Serve the HTTP API on this address (default: watch.metrics_addr)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	p := presentation.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, serviceOptions{catalog: true})
	if err != nil {
		return p.Error("Could not start", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.ErrorErr(log.CatConfig, "closing runtime", err)
		}
	}()

	events := rt.service.Subscribe(ctx)
	go printReloads(p, events)

	p.Step("Building %s", cfg.SourceDir)
	if _, err := rt.service.Reload(ctx); err != nil {
		if errors.Is(err, appreg.ErrNoSourceDir) {
			return p.Error("Source directory not found", err, "Pass --source or set source_dir in the config")
		}
		// The reload event reports the failure; keep watching for a fix.
	}

	addr := watchAddr
	if addr == "" {
		addr = cfg.Watch.MetricsAddr
	}
	errCh := make(chan error, 2)
	var server *api.Server
	if addr != "" {
		server, err = api.NewServer(api.ServerConfig{
			Addr:     addr,
			Service:  rt.service,
			Gatherer: rt.registry,
		})
		if err != nil {
			return p.Error("Could not start API server", err)
		}
		go func() { errCh <- server.Start() }()
		p.Info("API listening on port %d", server.Port())
	}

	go func() { errCh <- rt.service.Watch(ctx) }()
	p.Info("Watching %s, press Ctrl+C to stop", cfg.SourceDir)

	select {
	case <-ctx.Done():
		p.Info("\nShutting down...")
	case err := <-errCh:
		if err != nil {
			stop()
			return p.Error("Watch stopped", err)
		}
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.ErrorErr(log.CatAPI, "stopping API server", err)
		}
	}
	return nil
}

func printReloads(p *presentation.Printer, events <-chan pubsub.Event[appreg.ReloadEvent]) {
	for event := range events {
		ev := event.Payload
		if ev.Err != nil {
			p.Warning("Build failed after %s: %v", ev.Duration.Round(time.Millisecond), ev.Err)
			continue
		}
		p.Success("Build %s in %s %s", ev.BuildID, ev.Duration.Round(time.Millisecond), formatCounts(ev.Counts))
	}
}

// formatCounts renders per-role counts in classification order.
func formatCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, role := range registry.Roles() {
		parts = append(parts, fmt.Sprintf("%s=%d", role, counts[role.String()]))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
