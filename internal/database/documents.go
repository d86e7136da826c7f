// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stagegatehq/stagegate/internal/models"
)

const documentColumns = `id, project_id, title, storage_key, content_type, size_bytes, uploaded_by, created_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.ProjectID, &d.Title, &d.StorageKey,
		&d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &d, nil
}

// CreateDocument inserts a document metadata record.
func (db *DB) CreateDocument(ctx context.Context, d *models.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, title, storage_key, content_type, size_bytes, uploaded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, d.Title, d.StorageKey, d.ContentType,
		d.SizeBytes, d.UploadedBy, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument returns the document with the given ID, or ErrNotFound.
func (db *DB) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocumentsByProject returns a project's documents, newest first.
func (db *DB) ListDocumentsByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE project_id = ?
		 ORDER BY created_at DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer closeQuietly(rows)

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document metadata record. The stored object
// itself is the caller's responsibility.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return requireOneRow(res, "document")
}
