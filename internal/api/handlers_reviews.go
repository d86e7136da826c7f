// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/logging"
	"github.com/stagegatehq/stagegate/internal/models"
)

type scheduleReviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes" validate:"max=10000"`
}

type decideReviewRequest struct {
	Decision   string `json:"decision" validate:"required"`
	Conditions string `json:"conditions" validate:"max=5000"`
	Notes      string `json:"notes" validate:"max=10000"`
}

// ScheduleReview schedules a gate review for a project at its current
// gate. Mounted under /projects/{id}/review, which the access gate
// already restricts to the review roles.
func (h *Handler) ScheduleReview(w http.ResponseWriter, r *http.Request) {
	var req scheduleReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.db.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "project")
		return
	}

	session := auth.SessionFromContext(r.Context())
	reviewerID, err := uuid.Parse(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "invalid session subject", err)
		return
	}

	review := &models.GateReview{
		ProjectID:   project.ID,
		Gate:        project.Stage,
		ReviewerID:  reviewerID,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	}
	if err := h.db.CreateReview(r.Context(), review); err != nil {
		respondStoreError(w, err, "review")
		return
	}
	respondData(w, http.StatusCreated, review)
}

// ListReviews returns reviews, optionally filtered by project or
// decision.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	reviews, err := h.db.ListReviews(r.Context(), database.ReviewFilter{
		ProjectID: r.URL.Query().Get("project_id"),
		Decision:  r.URL.Query().Get("decision"),
	}, limit, offset)
	if err != nil {
		respondStoreError(w, err, "reviews")
		return
	}
	respondData(w, http.StatusOK, reviews)
}

// GetReview returns one review.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.db.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "review")
		return
	}
	respondData(w, http.StatusOK, review)
}

// DecideReview records a review outcome. Approved and conditional
// decisions advance the project to the next gate; G5 projects are
// marked completed instead, having nothing left to advance into.
func (h *Handler) DecideReview(w http.ResponseWriter, r *http.Request) {
	var req decideReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidReviewDecision(req.Decision) || req.Decision == string(models.DecisionPending) {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid review decision", nil)
		return
	}
	decision := models.ReviewDecision(req.Decision)
	if decision == models.DecisionConditional && req.Conditions == "" {
		respondError(w, http.StatusBadRequest, codeBadRequest,
			"conditional approval requires conditions", nil)
		return
	}

	review, err := h.db.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "review")
		return
	}

	session := auth.SessionFromContext(r.Context())
	reviewerID, err := uuid.Parse(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "invalid session subject", err)
		return
	}

	if err := h.db.DecideReview(r.Context(), review.ID.String(), reviewerID,
		decision, req.Conditions, req.Notes); err != nil {
		respondStoreError(w, err, "pending review")
		return
	}

	if decision == models.DecisionApproved || decision == models.DecisionConditional {
		if err := h.advanceProject(r, review); err != nil {
			respondStoreError(w, err, "project")
			return
		}
	}

	decided, err := h.db.GetReview(r.Context(), review.ID.String())
	if err != nil {
		respondStoreError(w, err, "review")
		return
	}
	respondData(w, http.StatusOK, decided)
}

// advanceProject moves the reviewed project forward after approval.
func (h *Handler) advanceProject(r *http.Request, review *models.GateReview) error {
	projectID := review.ProjectID.String()

	next, ok := review.Gate.Next()
	if !ok {
		project, err := h.db.GetProject(r.Context(), projectID)
		if err != nil {
			return err
		}
		project.Status = models.ProjectCompleted
		return h.db.UpdateProject(r.Context(), project)
	}

	logging.Ctx(r.Context()).Info().
		Str("project_id", projectID).
		Str("gate", next.String()).
		Msg("project advanced to next gate")
	return h.db.AdvanceProjectStage(r.Context(), projectID, next)
}
