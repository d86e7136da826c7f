// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package main is the entry point for the StageGate server.
//
// StageGate is a self-hosted stage-gate project portfolio manager. It
// tracks projects through gates G0 (ideation) to G5 (closure), records
// gate review decisions, and manages budgets, red flags and portfolio
// clusters behind a role-aware authorization gate.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml and
//     environment variables (Koanf v2)
//  2. Database: embedded DuckDB for users, projects, reviews, budgets,
//     documents and red flags
//  3. Authentication: JWT session tokens, OAuth providers, a
//     BadgerDB-backed OAuth state store and the login lockout tracker
//  4. HTTP Server: Chi router with the route authorization gate,
//     Prometheus instrumentation and rate limiting
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (AUTH_JWT_SECRET, DATABASE_PATH, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// The only required setting is AUTH_JWT_SECRET (32+ characters):
//
//	export AUTH_JWT_SECRET=$(openssl rand -base64 32)
//	export DATABASE_PATH=/data/stagegate.duckdb
//	./stagegate
//
// OAuth sign-in is optional; a provider activates when its client
// credentials are configured:
//
//	export GITHUB_CLIENT_ID=...
//	export GITHUB_CLIENT_SECRET=...
//	export GITHUB_REDIRECT_URL=https://stagegate.example.com/api/auth/oauth/github/callback
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Checkpoints and closes the database and the OAuth state store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stagegatehq/stagegate/internal/api"
	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/logging"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting StageGate")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// OAuth providers need network discovery (OIDC issuer metadata), so
	// bound the setup phase.
	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	authConfig, err := auth.NewEdgeConfig(setupCtx, &cfg.Auth)
	setupCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}

	states, err := auth.NewBadgerStateStore(cfg.Auth.StateStorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open OAuth state store")
	}
	defer func() {
		if err := states.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing OAuth state store")
		}
	}()
	authConfig.States = states

	// Background work (the lockout sweep) stops when this context is
	// canceled at shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lockout := auth.NewLockoutTracker(cfg.Auth.Lockout)
	if lockout == nil {
		logging.Warn().Msg("Login lockout is DISABLED (AUTH_LOCKOUT_ENABLED=false)")
	}
	lockout.StartSweepRoutine(ctx)

	// The server holds the full configuration; the edge split exists for
	// deployments that terminate authorization ahead of the app.
	authConfig = auth.NewFullConfig(authConfig, db, lockout)

	for name := range authConfig.Providers {
		logging.Info().Str("provider", name).Msg("OAuth provider enabled")
	}

	router := api.NewRouter(cfg, db, authConfig)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
