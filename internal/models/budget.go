// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a per-project, per-year budget entry. Amounts are stored in
// cents to avoid floating-point drift in aggregation queries.
type Budget struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// ProjectID is the owning project.
	ProjectID uuid.UUID `json:"project_id"`

	// Year is the budget year.
	Year int `json:"year" validate:"required,min=2000,max=2100"`

	// PlannedCents is the planned spend for the year, in cents.
	PlannedCents int64 `json:"planned_cents" validate:"min=0"`

	// ActualCents is the recorded actual spend, in cents.
	ActualCents int64 `json:"actual_cents" validate:"min=0"`

	// Currency is the ISO 4217 currency code.
	Currency string `json:"currency" validate:"required,len=3"`

	// CreatedAt is when the entry was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the entry was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// VarianceCents returns actual minus planned spend. Positive values
// indicate overspend.
func (b *Budget) VarianceCents() int64 {
	return b.ActualCents - b.PlannedCents
}
