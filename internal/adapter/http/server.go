// Package http exposes the serve-mode endpoints: health, readiness,
// metrics, the rendered GeoJSON map layer, and run statistics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maltlab/brewmap/internal/adapter/geojsonout"
	"github.com/maltlab/brewmap/internal/domain"
	"github.com/maltlab/brewmap/internal/pipeline"
)

// SnapshotProvider hands out the latest enrichment run for the map and
// stats endpoints.
type SnapshotProvider interface {
	CheckReadiness(ctx context.Context) error
	Snapshot() ([]domain.EnrichedRecord, *pipeline.Result)
}

// Server exposes health, readiness, metrics, and dataset HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   SnapshotProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /breweries.geojson, and /stats routes.
func NewServer(addr string, provider SnapshotProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /breweries.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /stats", s.handleStats)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleGeoJSON serves the map layer for the latest run. Rows without
// coordinates are absent from the collection.
func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	records, result := s.provider.Snapshot()
	if result == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no enrichment pass has completed yet",
		})
		return
	}

	fc := geojsonout.BuildFeatureCollection(records)
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		s.logger.Error("encoding geojson response", "error", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	_, result := s.provider.Snapshot()
	if result == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no enrichment pass has completed yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":           result.RunID,
		"beers_read":       result.BeersRead,
		"breweries_read":   result.BreweriesRead,
		"excluded_ibu":     result.ExcludedIBU,
		"excluded_state":   result.ExcludedState,
		"dangling_refs":    result.DanglingRefs,
		"records":          result.Records,
		"unique_places":    result.Resolution.UniqueKeys,
		"geocode_calls":    result.Resolution.Calls,
		"places_resolved":  result.Resolution.Resolved,
		"places_failed":    result.Resolution.Failed,
		"places_no_match":  result.Resolution.NoMatch,
		"rows_with_coords": result.WithCoords,
		"review_lookups":   result.Reviews,
		"duration_seconds": result.Duration.Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
