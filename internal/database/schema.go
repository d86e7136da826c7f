// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates all tables and indexes. Every statement is
// idempotent, so startup after an unclean shutdown is safe.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("execute schema statement: %s: %w", query, err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_oauth BOOLEAN NOT NULL DEFAULT false,
		email_verified_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS clusters (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		cluster_id UUID,
		lead_id UUID NOT NULL,
		stage INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL,
		year INTEGER NOT NULL,
		planned_cents BIGINT NOT NULL DEFAULT 0,
		actual_cents BIGINT NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'EUR',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (project_id, year)
	)`,

	`CREATE TABLE IF NOT EXISTS gate_reviews (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL,
		gate INTEGER NOT NULL,
		reviewer_id UUID NOT NULL,
		decision TEXT NOT NULL DEFAULT 'pending',
		conditions TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		scheduled_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL,
		title TEXT NOT NULL,
		storage_key TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		size_bytes BIGINT NOT NULL DEFAULT 0,
		uploaded_by UUID NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS red_flags (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		severity TEXT NOT NULL DEFAULT 'medium',
		raised_by UUID NOT NULL,
		resolved_at TIMESTAMP,
		resolution TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_cluster ON projects (cluster_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_lead ON projects (lead_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status)`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_project ON budgets (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_project ON gate_reviews (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_project ON documents (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_redflags_project ON red_flags (project_id)`,
}
