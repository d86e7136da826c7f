// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/models"
)

// Home is the public landing page stand-in.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"service": "stagegate"})
}

// dashboardSummary is the signed-in landing payload.
type dashboardSummary struct {
	Session       *models.Session   `json:"session"`
	ActiveCount   int               `json:"active_projects"`
	OpenRedFlags  int               `json:"open_red_flags"`
	PendingCount  int               `json:"pending_reviews"`
	RecentFlagged []*models.RedFlag `json:"recent_red_flags"`
}

// Dashboard returns the portfolio summary for the landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	active, err := h.db.ListProjects(r.Context(), database.ProjectFilter{Status: "active"},
		h.cfg.API.MaxPageSize, 0)
	if err != nil {
		respondStoreError(w, err, "projects")
		return
	}

	openFlags, err := h.db.ListRedFlags(r.Context(), database.RedFlagFilter{OpenOnly: true},
		h.cfg.API.MaxPageSize, 0)
	if err != nil {
		respondStoreError(w, err, "red flags")
		return
	}

	pending, err := h.db.ListReviews(r.Context(), database.ReviewFilter{Decision: "pending"},
		h.cfg.API.MaxPageSize, 0)
	if err != nil {
		respondStoreError(w, err, "reviews")
		return
	}

	recent := openFlags
	if len(recent) > 5 {
		recent = recent[:5]
	}

	respondData(w, http.StatusOK, &dashboardSummary{
		Session:       auth.SessionFromContext(r.Context()),
		ActiveCount:   len(active),
		OpenRedFlags:  len(openFlags),
		PendingCount:  len(pending),
		RecentFlagged: recent,
	})
}

// stageCount is one row of the portfolio gate distribution.
type stageCount struct {
	Stage    string `json:"stage"`
	Projects int    `json:"projects"`
}

// PortfolioReport breaks the portfolio down by gate stage.
func (h *Handler) PortfolioReport(w http.ResponseWriter, r *http.Request) {
	projects, err := h.db.ListProjects(r.Context(), database.ProjectFilter{},
		h.cfg.API.MaxPageSize, 0)
	if err != nil {
		respondStoreError(w, err, "projects")
		return
	}

	byStage := make(map[models.GateStage]int)
	for _, p := range projects {
		byStage[p.Stage]++
	}

	report := make([]stageCount, 0, int(models.GateG5)+1)
	for stage := models.GateG0; stage <= models.GateG5; stage++ {
		report = append(report, stageCount{Stage: stage.String(), Projects: byStage[stage]})
	}
	respondData(w, http.StatusOK, report)
}

// BudgetReport returns the per-year budget aggregation.
func (h *Handler) BudgetReport(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.db.SummarizeBudgets(r.Context())
	if err != nil {
		respondStoreError(w, err, "budgets")
		return
	}
	respondData(w, http.StatusOK, summaries)
}

// RedFlagReport returns all open flags ordered by recency, the raw
// material for the portfolio risk review.
func (h *Handler) RedFlagReport(w http.ResponseWriter, r *http.Request) {
	flags, err := h.db.ListRedFlags(r.Context(), database.RedFlagFilter{
		OpenOnly: true,
		Severity: r.URL.Query().Get("severity"),
	}, h.cfg.API.MaxPageSize, 0)
	if err != nil {
		respondStoreError(w, err, "red flags")
		return
	}
	respondData(w, http.StatusOK, flags)
}
