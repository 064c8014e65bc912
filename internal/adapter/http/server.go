// Package http exposes the service's HTTP surface: health, readiness,
// Prometheus metrics, and the JSON hand-off consumed by the rendering
// layer.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazewatch/hotspot-etl/internal/adapter/openaq"
	"github.com/hazewatch/hotspot-etl/internal/ml"
	"github.com/hazewatch/hotspot-etl/internal/pipeline"
)

// SnapshotProvider serves the latest scored snapshot and the trained
// model's feature importances. The pipeline implements it.
type SnapshotProvider interface {
	CheckReadiness(ctx context.Context) error
	Snapshot() (pipeline.Snapshot, bool)
	Importances() ([]ml.Importance, bool)
}

// AirQualityProvider serves current air-quality readings. May be nil,
// in which case the route is not registered.
type AirQualityProvider interface {
	Latest(ctx context.Context) ([]openaq.Station, error)
}

// Server exposes health, readiness, metrics, and data API endpoints.
type Server struct {
	httpServer *http.Server
	provider   SnapshotProvider
	airQuality AirQualityProvider
	logger     *slog.Logger
}

// NewServer creates the HTTP server. airQuality may be nil.
func NewServer(addr string, provider SnapshotProvider, airQuality AirQualityProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider:   provider,
		airQuality: airQuality,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/hotspots", s.handleHotspots)
	mux.HandleFunc("GET /api/importances", s.handleImportances)
	if airQuality != nil {
		mux.HandleFunc("GET /api/airquality", s.handleAirQuality)
	}

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

func (s *Server) handleHotspots(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Snapshot()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no snapshot available yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImportances(w http.ResponseWriter, _ *http.Request) {
	imps, ok := s.provider.Importances()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "model not trained yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"importances": imps})
}

func (s *Server) handleAirQuality(w http.ResponseWriter, r *http.Request) {
	stations, err := s.airQuality.Latest(r.Context())
	if err != nil {
		s.logger.Error("air quality fetch failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "air quality source unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": stations})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
