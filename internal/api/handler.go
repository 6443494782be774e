// Package api provides an HTTP API over the registry service.
// It exposes read endpoints for artifacts and builds, a reload trigger,
// Prometheus metrics and SSE for reload events.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/presentation"
	"github.com/zjrosen/roster/internal/pubsub"
	appreg "github.com/zjrosen/roster/internal/registry/application"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

// Handler provides HTTP endpoints for RegistryService operations.
type Handler struct {
	service  *appreg.RegistryService
	gatherer prometheus.Gatherer
}

// NewHandler creates a new API handler. A nil gatherer disables /metrics.
func NewHandler(service *appreg.RegistryService, gatherer prometheus.Gatherer) *Handler {
	return &Handler{service: service, gatherer: gatherer}
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Get("/artifacts", h.ListArtifacts)
	r.Get("/artifacts/{role}/{key}", h.GetArtifact)
	r.Get("/dispatch", h.Dispatch)

	r.Get("/builds", h.ListBuilds)
	r.Post("/reload", h.Reload)
	r.Get("/events", h.StreamEvents)

	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// === Response Types ===

// ErrorResponse is the response body for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the response body for the health endpoint.
type HealthResponse struct {
	Status  string     `json:"status"`
	BuildID string     `json:"build_id,omitempty"`
	BuiltAt *time.Time `json:"built_at,omitempty"`
}

// DispatchResponse is the response body for a dispatched URI.
type DispatchResponse = presentation.DispatchDTO

// ReloadResponse is the response body for a successful reload.
type ReloadResponse struct {
	BuildID string         `json:"build_id"`
	BuiltAt time.Time      `json:"built_at"`
	Counts  map[string]int `json:"counts"`
}

// === Handlers ===

// Health reports whether a registry is loaded.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Current()
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	builtAt := reg.BuiltAt()
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", BuildID: reg.ID(), BuiltAt: &builtAt})
}

// ListArtifacts lists artifacts of the current registry, filtered by the
// repeatable role query parameter.
// GET /artifacts?role=handler
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	roles, err := appreg.ParseRoles(r.URL.Query()["role"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_role", "Invalid role", err.Error())
		return
	}
	reg, err := h.service.Current()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, presentation.FromRegistry(reg, roles...))
}

// GetArtifact returns one artifact by role and published key.
// GET /artifacts/{role}/{key}
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	role, err := registry.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_role", "Invalid role", err.Error())
		return
	}
	key := chi.URLParam(r, "key")
	a, err := h.service.Lookup(role, key)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, presentation.FromArtifact(role, key, a))
}

// Dispatch resolves a URI to its request handler.
// GET /dispatch?uri=/book/show
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		h.writeError(w, http.StatusBadRequest, "missing_uri", "uri query parameter is required", "")
		return
	}
	handler, err := h.service.Dispatch(r.Context(), uri)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, presentation.FromDispatch(uri, handler))
}

// ListBuilds returns recorded builds, newest first.
// GET /builds?limit=10
func (h *Handler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer", raw)
			return
		}
		limit = n
	}
	builds, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, presentation.FromBuildRecords(builds))
}

// Reload rebuilds the registry.
// POST /reload
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Reload(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	counts := make(map[string]int)
	for role, n := range reg.Counts() {
		counts[role.String()] = n
	}
	h.writeJSON(w, http.StatusOK, ReloadResponse{BuildID: reg.ID(), BuiltAt: reg.BuiltAt(), Counts: counts})
}

// StreamEvents streams reload events over SSE.
// GET /events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
		return
	}

	ctx := r.Context()
	events := h.service.Subscribe(ctx)

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(eventToJSON(event))
			if err != nil {
				log.ErrorErr(log.CatAPI, "Failed to marshal event", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// === Helpers ===

func eventToJSON(event pubsub.Event[appreg.ReloadEvent]) map[string]any {
	result := map[string]any{
		"type":        string(event.Type),
		"timestamp":   event.Timestamp,
		"source_dir":  event.Payload.SourceDir,
		"duration_ms": event.Payload.Duration.Milliseconds(),
	}
	if event.Payload.BuildID != "" {
		result["build_id"] = event.Payload.BuildID
		result["counts"] = event.Payload.Counts
	}
	if event.Payload.Err != nil {
		result["error"] = event.Payload.Err.Error()
	}
	return result
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appreg.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", "Not found", err.Error())
	case errors.Is(err, appreg.ErrNotLoaded):
		h.writeError(w, http.StatusServiceUnavailable, "not_loaded", "No registry loaded", err.Error())
	case errors.Is(err, appreg.ErrCatalogDisabled):
		h.writeError(w, http.StatusNotImplemented, "catalog_disabled", "Build catalog is disabled", err.Error())
	case isBuildError(err):
		h.writeError(w, http.StatusUnprocessableEntity, "build_failed", "Build failed", err.Error())
	default:
		log.ErrorErr(log.CatAPI, "Request failed", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "Internal error", err.Error())
	}
}

func isBuildError(err error) bool {
	var compErr *registry.CompilationError
	var dsErr *registry.DuplicateDataSourceError
	var nameErr *registry.DuplicateNameError
	return errors.As(err, &compErr) || errors.As(err, &dsErr) || errors.As(err, &nameErr) ||
		errors.Is(err, appreg.ErrNoSourceDir)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.ErrorErr(log.CatAPI, "Failed to encode JSON response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
