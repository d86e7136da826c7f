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

const budgetColumns = `id, project_id, year, planned_cents, actual_cents, currency, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.ProjectID, &b.Year, &b.PlannedCents,
		&b.ActualCents, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &b, nil
}

// CreateBudget inserts a budget entry. One entry per project and year.
func (db *DB) CreateBudget(ctx context.Context, b *models.Budget) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO budgets (id, project_id, year, planned_cents, actual_cents, currency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ProjectID, b.Year, b.PlannedCents, b.ActualCents, b.Currency,
		b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// GetBudget returns the budget entry with the given ID, or ErrNotFound.
func (db *DB) GetBudget(ctx context.Context, id string) (*models.Budget, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	return scanBudget(row)
}

// ListBudgetsByProject returns a project's budget entries by year.
func (db *DB) ListBudgetsByProject(ctx context.Context, projectID string) ([]*models.Budget, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE project_id = ? ORDER BY year`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer closeQuietly(rows)

	var budgets []*models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpdateBudget updates planned and actual spend.
func (db *DB) UpdateBudget(ctx context.Context, b *models.Budget) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE budgets SET planned_cents = ?, actual_cents = ?, currency = ?, updated_at = ?
		 WHERE id = ?`,
		b.PlannedCents, b.ActualCents, b.Currency, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	return requireOneRow(res, "budget")
}

// DeleteBudget removes a budget entry.
func (db *DB) DeleteBudget(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return requireOneRow(res, "budget")
}

// BudgetSummary aggregates planned and actual spend for one year,
// either portfolio-wide or per cluster.
type BudgetSummary struct {
	Year         int    `json:"year"`
	Currency     string `json:"currency"`
	PlannedCents int64  `json:"planned_cents"`
	ActualCents  int64  `json:"actual_cents"`
	Projects     int    `json:"projects"`
}

// SummarizeBudgets aggregates budgets per year across all projects.
// DuckDB's columnar engine makes this a single cheap scan.
func (db *DB) SummarizeBudgets(ctx context.Context) ([]*BudgetSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT year, currency,
		        COALESCE(SUM(planned_cents), 0),
		        COALESCE(SUM(actual_cents), 0),
		        COUNT(DISTINCT project_id)
		 FROM budgets
		 GROUP BY year, currency
		 ORDER BY year, currency`)
	if err != nil {
		return nil, fmt.Errorf("summarize budgets: %w", err)
	}
	defer closeQuietly(rows)

	var summaries []*BudgetSummary
	for rows.Next() {
		var s BudgetSummary
		if err := rows.Scan(&s.Year, &s.Currency, &s.PlannedCents, &s.ActualCents, &s.Projects); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}
