// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDecision is the outcome of a gate review.
type ReviewDecision string

const (
	// DecisionPending marks a review that has been scheduled but not held.
	DecisionPending ReviewDecision = "pending"

	// DecisionApproved advances the project to the next gate.
	DecisionApproved ReviewDecision = "approved"

	// DecisionConditional approves with follow-up conditions; the project
	// advances but the conditions are tracked on the review record.
	DecisionConditional ReviewDecision = "conditional"

	// DecisionRejected holds the project at its current gate.
	DecisionRejected ReviewDecision = "rejected"
)

// ValidReviewDecisions lists the accepted decision values.
var ValidReviewDecisions = []ReviewDecision{
	DecisionPending, DecisionApproved, DecisionConditional, DecisionRejected,
}

// IsValidReviewDecision reports whether s is an accepted decision value.
func IsValidReviewDecision(s string) bool {
	for _, v := range ValidReviewDecisions {
		if string(v) == s {
			return true
		}
	}
	return false
}

// GateReview records the review of a project at a specific gate.
type GateReview struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// ProjectID is the project under review.
	ProjectID uuid.UUID `json:"project_id"`

	// Gate is the stage being reviewed.
	Gate GateStage `json:"gate"`

	// ReviewerID is the user who recorded the decision.
	ReviewerID uuid.UUID `json:"reviewer_id"`

	// Decision is the review outcome.
	Decision ReviewDecision `json:"decision"`

	// Conditions holds follow-up conditions for conditional approvals.
	Conditions string `json:"conditions,omitempty" validate:"max=5000"`

	// Notes is free-text review commentary.
	Notes string `json:"notes,omitempty" validate:"max=10000"`

	// ScheduledAt is when the review is (or was) scheduled.
	ScheduledAt time.Time `json:"scheduled_at"`

	// DecidedAt is when the decision was recorded. Nil while pending.
	DecidedAt *time.Time `json:"decided_at,omitempty"`

	// CreatedAt is when the review record was created.
	CreatedAt time.Time `json:"created_at"`
}

// IsDecided reports whether the review has a recorded outcome.
func (r *GateReview) IsDecided() bool {
	return r.Decision != DecisionPending && r.DecidedAt != nil
}
