// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/models"
)

type createProjectRequest struct {
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Summary   string `json:"summary" validate:"max=5000"`
	ClusterID string `json:"cluster_id" validate:"omitempty,uuid"`
}

type updateProjectRequest struct {
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Summary   string `json:"summary" validate:"max=5000"`
	ClusterID string `json:"cluster_id" validate:"omitempty,uuid"`
	Status    string `json:"status" validate:"required"`
}

// ListProjects returns projects, optionally filtered by status,
// cluster, lead or stage.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)

	filter := database.ProjectFilter{
		Status:    r.URL.Query().Get("status"),
		ClusterID: r.URL.Query().Get("cluster_id"),
		LeadID:    r.URL.Query().Get("lead_id"),
	}
	if s := r.URL.Query().Get("stage"); s != "" {
		stage := models.GateStage(getIntParam(r, "stage", 0))
		if !stage.Valid() {
			respondError(w, http.StatusBadRequest, codeBadRequest, "invalid gate stage", nil)
			return
		}
		filter.Stage = &stage
	}

	projects, err := h.db.ListProjects(r.Context(), filter, limit, offset)
	if err != nil {
		respondStoreError(w, err, "projects")
		return
	}
	respondData(w, http.StatusOK, projects)
}

// GetProject returns one project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.db.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "project")
		return
	}
	respondData(w, http.StatusOK, project)
}

// CreateProject creates a project at gate G0 with the caller as lead.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := auth.SessionFromContext(r.Context())
	leadID, err := uuid.Parse(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "invalid session subject", err)
		return
	}

	project := &models.Project{
		Title:   req.Title,
		Summary: req.Summary,
		LeadID:  leadID,
		Stage:   models.GateG0,
	}
	if req.ClusterID != "" {
		id := uuid.MustParse(req.ClusterID) // validated above
		project.ClusterID = &id
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondStoreError(w, err, "project")
		return
	}
	respondData(w, http.StatusCreated, project)
}

// UpdateProject updates title, summary, cluster and status. Gate stage
// is never writable here: only an approved review advances it.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidProjectStatus(req.Status) {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid project status", nil)
		return
	}

	project, err := h.db.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "project")
		return
	}

	project.Title = req.Title
	project.Summary = req.Summary
	project.Status = models.ProjectStatus(req.Status)
	project.ClusterID = nil
	if req.ClusterID != "" {
		id := uuid.MustParse(req.ClusterID)
		project.ClusterID = &id
	}

	if err := h.db.UpdateProject(r.Context(), project); err != nil {
		respondStoreError(w, err, "project")
		return
	}
	respondData(w, http.StatusOK, project)
}

// DeleteProject removes a project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "project")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
