// Command forecaster implements the Loadcast day-ahead forecast engine.
//
// The forecaster runs a continuous forecast loop that:
//  1. Collects hourly electricity load history from the configured source
//  2. Builds a lagged training dataset over the history window
//  3. Trains the forecasting model and predicts the next day hour by hour
//  4. Stores forecast snapshots for downstream consumers
//  5. Exposes snapshots via HTTP API at /forecast/current
//
// The forecaster serves an HTTP API on port 8081 (configurable) providing:
//   - GET /forecast/current?zone=<zone> - Retrieve latest forecast snapshot
//   - GET /healthz - Health check endpoint
//   - GET /metrics - Prometheus metrics endpoint
//
// Usage:
//
//	forecaster \
//	  -zone=ES \
//	  -adapter=esios \
//	  -model=ridge \
//	  -lags=1-72,145-168 \
//	  -horizon=24 \
//	  -window-days=60
//
// Environment variables:
//
//	ZONE            - Bidding zone (default: ES)
//	ADAPTER         - Data source: esios, http, csv (default: esios)
//	ADAPTER_CONFIG  - Adapter settings as a JSON object
//	ESIOS_TOKEN     - API token for the esios adapter
//	MODEL           - Forecasting model (default: ridge)
//	LAGS            - Lag hours, comma/range list (default: 1-72,145-168)
//	HORIZON_HOURS   - Forecast horizon in hours (default: 24)
//	WINDOW_DAYS     - History window in days (default: 60)
//	INTERVAL        - Forecast loop interval (default: 1h)
//	UNIT_CAPACITY_MW - MW per committed unit; 0 disables commitment planning
//	RESERVE_MARGIN  - Reserve over the point forecast (default: 1.1)
//	STORAGE         - Snapshot store: memory, redis (default: memory)
//	REDIS_ADDR      - Redis address (default: localhost:6379)
//	LOG_LEVEL       - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT      - Logging format: text, json (default: text)
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loadcast/cmd/forecaster/config"
	"loadcast/cmd/forecaster/metrics"
	"loadcast/cmd/forecaster/router"
	"loadcast/pkg/adapters"
	"loadcast/pkg/httpx"
	"loadcast/pkg/models"
	"loadcast/pkg/schedule"
	"loadcast/pkg/storage"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting loadcast forecaster",
		"version", version,
		"zone", cfg.Zone,
		"adapter", cfg.Adapter,
		"model", cfg.Model,
	)

	adapter, err := adapters.New(cfg.Adapter, cfg.AdapterConfig)
	if err != nil {
		logger.Error("failed to create adapter", "adapter", cfg.Adapter, "error", err)
		os.Exit(1)
	}

	model, err := models.New(cfg.Model, models.Options{
		MovingAverageDays: cfg.MovingAverageDays,
		RidgeLambda:       cfg.RidgeLambda,
	})
	if err != nil {
		logger.Error("failed to create model", "model", cfg.Model, "error", err)
		os.Exit(1)
	}

	store := newStore(cfg, logger)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close store", "error", err)
			}
		}()
	}

	var policy *schedule.Policy
	if cfg.UnitCapacityMW > 0 {
		policy = &schedule.Policy{
			UnitCapacityMW: cfg.UnitCapacityMW,
			ReserveMargin:  cfg.ReserveMargin,
			MinUnits:       cfg.MinUnits,
			MaxUnits:       cfg.MaxUnits,
		}
		logger.Info("commitment planning enabled",
			"unit_capacity_mw", cfg.UnitCapacityMW,
			"reserve_margin", cfg.ReserveMargin,
		)
	}

	f := New(
		cfg.Zone,
		adapter,
		model,
		store,
		cfg.Lags,
		cfg.HorizonHours,
		time.Duration(cfg.WindowDays)*24*time.Hour,
		policy,
		logger,
		metrics.New(cfg.Zone, cfg.Adapter, cfg.Model),
	)

	staleAfter := 2 * cfg.Interval // Snapshot is stale if older than 2x the interval
	mux := router.SetupRoutes(store, staleAfter, logger)
	handler := httpx.RecoveryMiddleware(logger)(httpx.LoggingMiddleware(logger)(mux))
	httpServer := httpx.NewServer(cfg.Listen, handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := f.Run(ctx, cfg.Interval); err != nil && err != context.Canceled {
			logger.Error("forecast loop failed", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	logger.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// newStore builds the snapshot store from config.
func newStore(cfg *config.Config, logger *slog.Logger) storage.Store {
	switch cfg.Storage {
	case "redis":
		store, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		logger.Info("using redis snapshot store", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
		return store
	default:
		logger.Info("using in-memory snapshot store")
		return storage.NewMemoryStore()
	}
}
