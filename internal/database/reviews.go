// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stagegatehq/stagegate/internal/database/query"
	"github.com/stagegatehq/stagegate/internal/models"
)

const reviewColumns = `id, project_id, gate, reviewer_id, decision, conditions, notes, scheduled_at, decided_at, created_at`

// ReviewFilter narrows ListReviews. Zero values mean "no filter".
type ReviewFilter struct {
	ProjectID string
	Decision  string
}

func scanReview(row interface{ Scan(...any) error }) (*models.GateReview, error) {
	var (
		r         models.GateReview
		gate      int
		decision  string
		decidedAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.ProjectID, &gate, &r.ReviewerID, &decision,
		&r.Conditions, &r.Notes, &r.ScheduledAt, &decidedAt, &r.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	r.Gate = models.GateStage(gate)
	r.Decision = models.ReviewDecision(decision)
	if decidedAt.Valid {
		t := decidedAt.Time
		r.DecidedAt = &t
	}
	return &r, nil
}

// CreateReview schedules a gate review for a project. The decision
// starts out pending.
func (db *DB) CreateReview(ctx context.Context, r *models.GateReview) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Decision == "" {
		r.Decision = models.DecisionPending
	}
	r.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO gate_reviews (id, project_id, gate, reviewer_id, decision, conditions, notes, scheduled_at, decided_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, int(r.Gate), r.ReviewerID, string(r.Decision),
		r.Conditions, r.Notes, r.ScheduledAt, r.DecidedAt, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetReview returns the review with the given ID, or ErrNotFound.
func (db *DB) GetReview(ctx context.Context, id string) (*models.GateReview, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM gate_reviews WHERE id = ?`, id)
	return scanReview(row)
}

// ListReviews returns reviews matching the filter, newest first.
func (db *DB) ListReviews(ctx context.Context, filter ReviewFilter, limit, offset int) ([]*models.GateReview, error) {
	where, args := query.NewWhereBuilder().
		AddEquals("project_id", filter.ProjectID).
		AddEquals("decision", filter.Decision).
		BuildWithPrefix()
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM gate_reviews `+where+
			` ORDER BY scheduled_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer closeQuietly(rows)

	var reviews []*models.GateReview
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// DecideReview records the outcome of a pending review. Only pending
// reviews can be decided; deciding twice returns ErrNotFound because
// the WHERE clause no longer matches.
func (db *DB) DecideReview(ctx context.Context, id string, reviewerID uuid.UUID, decision models.ReviewDecision, conditions, notes string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE gate_reviews
		 SET decision = ?, reviewer_id = ?, conditions = ?, notes = ?, decided_at = ?
		 WHERE id = ? AND decision = 'pending'`,
		string(decision), reviewerID, conditions, notes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("decide review %s: %w", id, err)
	}
	return requireOneRow(res, "review")
}
