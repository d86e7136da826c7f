// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/database"
)

// Handler carries the dependencies every endpoint needs.
type Handler struct {
	db   *database.DB
	auth *auth.Config
	cfg  *config.Config
}

// NewHandler creates the API handler set. authConfig must be the full
// configuration: the auth endpoints use its credentials provider.
func NewHandler(cfg *config.Config, db *database.DB, authConfig *auth.Config) *Handler {
	return &Handler{db: db, auth: authConfig, cfg: cfg}
}

// Healthz reports liveness, including a database ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respondData(w, httpStatus, map[string]string{"status": status})
}
