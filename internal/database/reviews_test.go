// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/models"
)

func seedReview(t *testing.T, db *DB, project *models.Project, reviewer *models.User) *models.GateReview {
	t.Helper()
	r := &models.GateReview{
		ProjectID:   project.ID,
		Gate:        project.Stage,
		ReviewerID:  reviewer.ID,
		ScheduledAt: time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, db.CreateReview(t.Context(), r))
	return r
}

func TestReviewLifecycle(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	reviewer := seedUser(t, db, "reviewer@example.com", models.RoleReviewer)
	project := seedProject(t, db, lead, "Reviewed project")

	r := seedReview(t, db, project, reviewer)
	assert.Equal(t, models.DecisionPending, r.Decision)

	got, err := db.GetReview(t.Context(), r.ID.String())
	require.NoError(t, err)
	assert.False(t, got.IsDecided())

	require.NoError(t, db.DecideReview(t.Context(), r.ID.String(), reviewer.ID,
		models.DecisionConditional, "resubmit budget forecast", "solid science case"))

	decided, err := db.GetReview(t.Context(), r.ID.String())
	require.NoError(t, err)
	assert.True(t, decided.IsDecided())
	assert.Equal(t, models.DecisionConditional, decided.Decision)
	assert.Equal(t, "resubmit budget forecast", decided.Conditions)
	require.NotNil(t, decided.DecidedAt)
}

func TestDecideReviewOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	reviewer := seedUser(t, db, "reviewer@example.com", models.RoleReviewer)
	project := seedProject(t, db, lead, "One shot")

	r := seedReview(t, db, project, reviewer)
	require.NoError(t, db.DecideReview(t.Context(), r.ID.String(), reviewer.ID,
		models.DecisionApproved, "", ""))

	err := db.DecideReview(t.Context(), r.ID.String(), reviewer.ID,
		models.DecisionRejected, "", "second thoughts")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := db.GetReview(t.Context(), r.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, got.Decision)
}

func TestListReviewsFilters(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	reviewer := seedUser(t, db, "reviewer@example.com", models.RoleReviewer)
	p1 := seedProject(t, db, lead, "P1")
	p2 := seedProject(t, db, lead, "P2")

	seedReview(t, db, p1, reviewer)
	r2 := seedReview(t, db, p2, reviewer)
	require.NoError(t, db.DecideReview(t.Context(), r2.ID.String(), reviewer.ID,
		models.DecisionApproved, "", ""))

	pending, err := db.ListReviews(t.Context(), ReviewFilter{Decision: "pending"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	forP2, err := db.ListReviews(t.Context(), ReviewFilter{ProjectID: p2.ID.String()}, 10, 0)
	require.NoError(t, err)
	require.Len(t, forP2, 1)
	assert.Equal(t, models.DecisionApproved, forP2[0].Decision)
}
