// Package router configures HTTP routes for the forecaster's HTTP API.
//
// The forecaster exposes an HTTP server on port 8081 (configurable) that
// provides forecast snapshot retrieval, health checks, and Prometheus
// metrics. This package sets up the routes for that HTTP server.
//
// Routes configured:
//   - GET /forecast/current?zone=<zone> - Retrieve latest forecast snapshot
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//
// The /forecast/current endpoint returns forecast snapshots in JSON format,
// including per-hour predicted load and metadata (generated timestamp, origin,
// horizon). Snapshots older than the stale threshold include an
// X-Loadcast-Stale header.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loadcast/pkg/httpx"
	"loadcast/pkg/storage"
)

var zoneRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,30}[a-zA-Z0-9])?$`)

// SetupRoutes configures HTTP endpoints for the forecaster.
func SetupRoutes(store storage.Store, staleAfter time.Duration, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.Handle("/healthz", httpx.HealthHandler())

	// Forecast snapshot endpoint
	mux.HandleFunc("/forecast/current", handleGetSnapshot(store, staleAfter, logger))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleGetSnapshot returns a handler for GET /forecast/current?zone=<zone>.
func handleGetSnapshot(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zone := r.URL.Query().Get("zone")
		if zone == "" {
			httpx.WriteError(w, http.StatusBadRequest, "zone parameter required")
			return
		}

		if !zoneRegex.MatchString(zone) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid zone format")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		snapshot, found, err := store.GetLatest(ctx, zone)
		if err != nil {
			logger.Error("failed to get snapshot", "zone", zone, "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteError(w, http.StatusNotFound, fmt.Sprintf("snapshot not found for zone %q", zone))
			return
		}

		if time.Since(snapshot.GeneratedAt) > staleAfter {
			w.Header().Set("X-Loadcast-Stale", "true")
		}

		resp := map[string]any{
			"zone":         snapshot.Zone,
			"model":        snapshot.Model,
			"generatedAt":  snapshot.GeneratedAt.Format(time.RFC3339),
			"origin":       snapshot.Origin.Format(time.RFC3339),
			"horizonHours": snapshot.HorizonHours,
			"values":       snapshot.Values,
			"trainSamples": snapshot.TrainSamples,
		}
		if len(snapshot.CommittedUnits) > 0 {
			resp["committedUnits"] = snapshot.CommittedUnits
		}

		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}
