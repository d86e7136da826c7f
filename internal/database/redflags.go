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

const redFlagColumns = `id, project_id, title, description, severity, raised_by, resolved_at, resolution, created_at`

// RedFlagFilter narrows ListRedFlags. Zero values mean "no filter";
// OpenOnly limits to unresolved flags.
type RedFlagFilter struct {
	ProjectID string
	Severity  string
	OpenOnly  bool
}

func scanRedFlag(row interface{ Scan(...any) error }) (*models.RedFlag, error) {
	var (
		f          models.RedFlag
		severity   string
		resolvedAt sql.NullTime
	)
	err := row.Scan(&f.ID, &f.ProjectID, &f.Title, &f.Description, &severity,
		&f.RaisedBy, &resolvedAt, &f.Resolution, &f.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	f.Severity = models.RedFlagSeverity(severity)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		f.ResolvedAt = &t
	}
	return &f, nil
}

// CreateRedFlag raises a flag on a project.
func (db *DB) CreateRedFlag(ctx context.Context, f *models.RedFlag) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Severity == "" {
		f.Severity = models.SeverityMedium
	}
	f.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO red_flags (id, project_id, title, description, severity, raised_by, resolved_at, resolution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, f.Title, f.Description, string(f.Severity),
		f.RaisedBy, f.ResolvedAt, f.Resolution, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create red flag: %w", err)
	}
	return nil
}

// GetRedFlag returns the flag with the given ID, or ErrNotFound.
func (db *DB) GetRedFlag(ctx context.Context, id string) (*models.RedFlag, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+redFlagColumns+` FROM red_flags WHERE id = ?`, id)
	return scanRedFlag(row)
}

// ListRedFlags returns flags matching the filter, newest first.
func (db *DB) ListRedFlags(ctx context.Context, filter RedFlagFilter, limit, offset int) ([]*models.RedFlag, error) {
	wb := query.NewWhereBuilder().
		AddEquals("project_id", filter.ProjectID).
		AddEquals("severity", filter.Severity)
	if filter.OpenOnly {
		wb.AddNull("resolved_at", true)
	}
	where, args := wb.BuildWithPrefix()
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+redFlagColumns+` FROM red_flags `+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list red flags: %w", err)
	}
	defer closeQuietly(rows)

	var flags []*models.RedFlag
	for rows.Next() {
		f, err := scanRedFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// ResolveRedFlag closes an open flag with a resolution note. Resolving
// an already-resolved flag returns ErrNotFound.
func (db *DB) ResolveRedFlag(ctx context.Context, id string, resolution string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE red_flags SET resolved_at = ?, resolution = ?
		 WHERE id = ? AND resolved_at IS NULL`,
		time.Now().UTC(), resolution, id)
	if err != nil {
		return fmt.Errorf("resolve red flag %s: %w", id, err)
	}
	return requireOneRow(res, "red flag")
}
