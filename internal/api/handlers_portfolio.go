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

// --- Clusters ---

type clusterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func (h *Handler) ListClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.db.ListClusters(r.Context())
	if err != nil {
		respondStoreError(w, err, "clusters")
		return
	}
	respondData(w, http.StatusOK, clusters)
}

func (h *Handler) GetCluster(w http.ResponseWriter, r *http.Request) {
	cluster, err := h.db.GetCluster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "cluster")
		return
	}
	respondData(w, http.StatusOK, cluster)
}

func (h *Handler) CreateCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cluster := &models.Cluster{Name: req.Name, Description: req.Description}
	if err := h.db.CreateCluster(r.Context(), cluster); err != nil {
		respondStoreError(w, err, "cluster")
		return
	}
	respondData(w, http.StatusCreated, cluster)
}

func (h *Handler) UpdateCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cluster, err := h.db.GetCluster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "cluster")
		return
	}
	cluster.Name = req.Name
	cluster.Description = req.Description
	if err := h.db.UpdateCluster(r.Context(), cluster); err != nil {
		respondStoreError(w, err, "cluster")
		return
	}
	respondData(w, http.StatusOK, cluster)
}

func (h *Handler) DeleteCluster(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteCluster(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "cluster")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Budgets ---

type budgetRequest struct {
	ProjectID    string `json:"project_id" validate:"required,uuid"`
	Year         int    `json:"year" validate:"required,min=2000,max=2100"`
	PlannedCents int64  `json:"planned_cents" validate:"min=0"`
	ActualCents  int64  `json:"actual_cents" validate:"min=0"`
	Currency     string `json:"currency" validate:"required,len=3"`
}

// ListBudgets returns a project's budget entries; project_id is
// required because budgets are meaningless without their project.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		respondError(w, http.StatusBadRequest, codeBadRequest, "project_id is required", nil)
		return
	}
	budgets, err := h.db.ListBudgetsByProject(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err, "budgets")
		return
	}
	respondData(w, http.StatusOK, budgets)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := h.db.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "budget")
		return
	}
	respondData(w, http.StatusOK, budget)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget := &models.Budget{
		ProjectID:    uuid.MustParse(req.ProjectID),
		Year:         req.Year,
		PlannedCents: req.PlannedCents,
		ActualCents:  req.ActualCents,
		Currency:     req.Currency,
	}
	if err := h.db.CreateBudget(r.Context(), budget); err != nil {
		respondStoreError(w, err, "budget")
		return
	}
	respondData(w, http.StatusCreated, budget)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget, err := h.db.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "budget")
		return
	}
	budget.PlannedCents = req.PlannedCents
	budget.ActualCents = req.ActualCents
	budget.Currency = req.Currency
	if err := h.db.UpdateBudget(r.Context(), budget); err != nil {
		respondStoreError(w, err, "budget")
		return
	}
	respondData(w, http.StatusOK, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "budget")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Documents ---

type documentRequest struct {
	ProjectID   string `json:"project_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	StorageKey  string `json:"storage_key" validate:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes" validate:"min=0"`
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		respondError(w, http.StatusBadRequest, codeBadRequest, "project_id is required", nil)
		return
	}
	docs, err := h.db.ListDocumentsByProject(r.Context(), projectID)
	if err != nil {
		respondStoreError(w, err, "documents")
		return
	}
	respondData(w, http.StatusOK, docs)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.db.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "document")
		return
	}
	respondData(w, http.StatusOK, doc)
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session := auth.SessionFromContext(r.Context())
	uploadedBy, err := uuid.Parse(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "invalid session subject", err)
		return
	}

	doc := &models.Document{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Title:       req.Title,
		StorageKey:  req.StorageKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  uploadedBy,
	}
	if err := h.db.CreateDocument(r.Context(), doc); err != nil {
		respondStoreError(w, err, "document")
		return
	}
	respondData(w, http.StatusCreated, doc)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "document")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Red flags ---

type redFlagRequest struct {
	ProjectID   string `json:"project_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Severity    string `json:"severity" validate:"required"`
}

type resolveRedFlagRequest struct {
	Resolution string `json:"resolution" validate:"required,max=5000"`
}

func (h *Handler) ListRedFlags(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	flags, err := h.db.ListRedFlags(r.Context(), database.RedFlagFilter{
		ProjectID: r.URL.Query().Get("project_id"),
		Severity:  r.URL.Query().Get("severity"),
		OpenOnly:  r.URL.Query().Get("open") == "true",
	}, limit, offset)
	if err != nil {
		respondStoreError(w, err, "red flags")
		return
	}
	respondData(w, http.StatusOK, flags)
}

func (h *Handler) GetRedFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := h.db.GetRedFlag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "red flag")
		return
	}
	respondData(w, http.StatusOK, flag)
}

func (h *Handler) CreateRedFlag(w http.ResponseWriter, r *http.Request) {
	var req redFlagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidRedFlagSeverity(req.Severity) {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid severity", nil)
		return
	}
	session := auth.SessionFromContext(r.Context())
	raisedBy, err := uuid.Parse(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "invalid session subject", err)
		return
	}

	flag := &models.RedFlag{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Title:       req.Title,
		Description: req.Description,
		Severity:    models.RedFlagSeverity(req.Severity),
		RaisedBy:    raisedBy,
	}
	if err := h.db.CreateRedFlag(r.Context(), flag); err != nil {
		respondStoreError(w, err, "red flag")
		return
	}
	respondData(w, http.StatusCreated, flag)
}

func (h *Handler) ResolveRedFlag(w http.ResponseWriter, r *http.Request) {
	var req resolveRedFlagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.db.ResolveRedFlag(r.Context(), chi.URLParam(r, "id"), req.Resolution); err != nil {
		respondStoreError(w, err, "open red flag")
		return
	}
	flag, err := h.db.GetRedFlag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "red flag")
		return
	}
	respondData(w, http.StatusOK, flag)
}
