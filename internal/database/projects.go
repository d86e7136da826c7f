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

const projectColumns = `id, title, summary, cluster_id, lead_id, stage, status, created_at, updated_at`

// ProjectFilter narrows ListProjects. Zero values mean "no filter".
type ProjectFilter struct {
	Status    string
	ClusterID string
	LeadID    string
	Stage     *models.GateStage
}

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p         models.Project
		clusterID sql.NullString
		stage     int
		status    string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Summary, &clusterID, &p.LeadID,
		&stage, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	if clusterID.Valid {
		id, err := uuid.Parse(clusterID.String)
		if err != nil {
			return nil, fmt.Errorf("project %s: bad cluster id: %w", p.ID, err)
		}
		p.ClusterID = &id
	}
	p.Stage = models.GateStage(stage)
	p.Status = models.ProjectStatus(status)
	return &p, nil
}

// CreateProject inserts a new project at its initial gate.
func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, title, summary, cluster_id, lead_id, stage, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Summary, nullableUUID(p.ClusterID), p.LeadID,
		int(p.Stage), string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject returns the project with the given ID, or ErrNotFound.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// ListProjects returns projects matching the filter, newest first.
func (db *DB) ListProjects(ctx context.Context, filter ProjectFilter, limit, offset int) ([]*models.Project, error) {
	wb := query.NewWhereBuilder().
		AddEquals("status", filter.Status).
		AddEquals("cluster_id", filter.ClusterID).
		AddEquals("lead_id", filter.LeadID)
	if filter.Stage != nil {
		wb.AddClause("stage = ?", int(*filter.Stage))
	}
	where, args := wb.BuildWithPrefix()
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects `+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer closeQuietly(rows)

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates the mutable project fields: title, summary,
// cluster assignment and status.
func (db *DB) UpdateProject(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET title = ?, summary = ?, cluster_id = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Summary, nullableUUID(p.ClusterID), string(p.Status), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	return requireOneRow(res, "project")
}

// AdvanceProjectStage moves a project to the given gate. Called by the
// review workflow after an approving decision; the stage is written
// explicitly rather than incremented so a replayed call is harmless.
func (db *DB) AdvanceProjectStage(ctx context.Context, id string, stage models.GateStage) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET stage = ?, updated_at = ? WHERE id = ?`,
		int(stage), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("advance project %s: %w", id, err)
	}
	return requireOneRow(res, "project")
}

// DeleteProject removes a project row.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return requireOneRow(res, "project")
}

// nullableUUID converts an optional UUID to a driver-friendly value.
func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// requireOneRow maps zero affected rows to ErrNotFound.
func requireOneRow(res sql.Result, entity string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
