// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/logging"
	"github.com/stagegatehq/stagegate/internal/models"
)

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ListUsers returns all accounts. Route placement under /admin already
// restricts this to ADMIN and GATEKEEPER.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	users, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondStoreError(w, err, "users")
		return
	}
	respondData(w, http.StatusOK, users)
}

// UpdateUserRole assigns a user's role. CUSTOM is assignable here as an
// opaque marker; it grants access to nothing until the role table says
// otherwise. Users cannot change their own role.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "unknown role", nil)
		return
	}

	targetID := chi.URLParam(r, "id")
	session := auth.SessionFromContext(r.Context())
	if session != nil && session.UserID == targetID {
		respondError(w, http.StatusForbidden, codeForbidden, "cannot change own role", nil)
		return
	}

	if err := h.db.UpdateUserRole(r.Context(), targetID, role); err != nil {
		respondStoreError(w, err, "user")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("target_user_id", targetID).
		Str("new_role", string(role)).
		Msg("user role changed")
	respondData(w, http.StatusOK, map[string]string{"status": "role updated"})
}
