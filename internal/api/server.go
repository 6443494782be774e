package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zjrosen/roster/internal/log"
	appreg "github.com/zjrosen/roster/internal/registry/application"
)

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int // Actual port after binding (useful when using :0)
}

// ServerConfig configures the API server.
type ServerConfig struct {
	// Addr is the address to listen on (e.g., ":9090" or "localhost:0").
	Addr string
	// Service is the registry service to expose via HTTP.
	Service *appreg.RegistryService
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration
}

// NewServer creates a new API server listening on cfg.Addr.
// If Addr uses port 0 the OS assigns an available port; see Port.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("registry service is required")
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		port:     port,
		listener: listener,
		server: &http.Server{
			Handler:           NewHandler(cfg.Service, cfg.Gatherer).Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			// No write timeout: /events streams.
		},
	}, nil
}

// Start serves requests. It blocks until the server is stopped or fails;
// a graceful stop returns nil.
func (s *Server) Start() error {
	log.Info(log.CatAPI, "Starting API server", "addr", s.listener.Addr().String(), "port", s.port)
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatAPI, "Stopping API server")
	return s.server.Shutdown(ctx)
}

// Port returns the actual port the server is listening on.
func (s *Server) Port() int {
	return s.port
}
