// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package main is the entry point for the Reelrank serving process.
//
// Reelrank serves movie recommendations over a REST API. The server is
// read-only with respect to models: it loads the artifacts a training
// run (reelrank-trainer) produced and answers recommendation, similar
// item, search, and catalog queries from memory.
//
// # Startup Order
//
//  1. Configuration: load settings from defaults, config.yaml, and
//     environment variables (Koanf v2)
//  2. Logging: initialize zerolog with the configured level and format
//  3. Artifact store and movie catalog: open the artifacts directory and
//     read movies.csv from the dataset directory
//  4. Models: load the popularity model for the configured run; the
//     content model is loaded lazily on first use
//  5. HTTP server: chi router with CORS, rate limiting, Prometheus
//     metrics, and gzip compression
//  6. Supervisor tree: the HTTP server and maintenance loops run under
//     suture supervision until SIGINT or SIGTERM
//
// A missing training run is not fatal. The server starts, /health
// reports models_loaded=false, and the /v1 recommendation endpoints
// answer 503 until a run exists and the process restarts.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (REELRANK_* plus RUN_ID, PORT, DATA_DIR, ...)
//   - Config file (CONFIG_PATH, ./config.yaml, /etc/reelrank/config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
// Serve the artifacts of a named training run:
//
//	export ARTIFACTS_DIR=/var/lib/reelrank/artifacts
//	export RUN_ID=2026-08-23
//	export DATA_DIR=/var/lib/reelrank/data
//	./reelrank-server
//
// Development with console logs on a different port:
//
//	export LOG_FORMAT=console
//	export LOG_LEVEL=debug
//	export PORT=8081
//	./reelrank-server
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown_timeout)
//   - Stops maintenance loops and reports anything that hangs
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/marekv42/reelrank/internal/api"
	"github.com/marekv42/reelrank/internal/artifact"
	"github.com/marekv42/reelrank/internal/catalog"
	"github.com/marekv42/reelrank/internal/config"
	"github.com/marekv42/reelrank/internal/dataset"
	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/metrics"
	"github.com/marekv42/reelrank/internal/middleware"
	"github.com/marekv42/reelrank/internal/service"
	"github.com/marekv42/reelrank/internal/supervisor"
	"github.com/marekv42/reelrank/internal/supervisor/services"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const (
	// latencyWindowSize is how many recent requests the latency monitor
	// keeps for percentile stats and slow request sweeps.
	latencyWindowSize = 512

	latencySweepInterval = time.Minute
	slowRequestThreshold = time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Reelrank server")
	metrics.SetAppInfo(version)

	logging.Info().
		Str("artifacts_dir", cfg.Artifacts.Dir).
		Str("run_id", cfg.Artifacts.RunID).
		Str("data_dir", cfg.Data.Dir).
		Str("addr", cfg.Addr()).
		Msg("Configuration loaded")

	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open artifact store")
	}

	datasetDir := filepath.Join(cfg.Data.Dir, dataset.DatasetDirName)
	cat, err := catalog.Load(datasetDir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", datasetDir).Msg("Failed to load movie catalog")
	}
	logging.Info().Int("movies", cat.Len()).Msg("Movie catalog loaded")

	svc := service.New(store, cat, cfg.Artifacts.RunID)
	// Missing models leave the service degraded, not dead. LoadModels
	// logs what it found.
	svc.LoadModels(context.Background())

	monitor := middleware.NewLatencyMonitor(latencyWindowSize)
	router := api.NewRouter(svc, cfg, monitor)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddServingService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	tree.AddMaintenanceService(services.NewLatencySweepService(monitor, latencySweepInterval, slowRequestThreshold))
	logging.Info().Msg("Latency sweep service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, s := range unstopped {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Server stopped gracefully")
}
