// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"time"

	"github.com/google/uuid"
)

// RedFlagSeverity grades the impact of a raised issue.
type RedFlagSeverity string

const (
	SeverityLow      RedFlagSeverity = "low"
	SeverityMedium   RedFlagSeverity = "medium"
	SeverityHigh     RedFlagSeverity = "high"
	SeverityCritical RedFlagSeverity = "critical"
)

// ValidRedFlagSeverities lists the accepted severity values.
var ValidRedFlagSeverities = []RedFlagSeverity{
	SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical,
}

// IsValidRedFlagSeverity reports whether s is an accepted severity.
func IsValidRedFlagSeverity(s string) bool {
	for _, v := range ValidRedFlagSeverities {
		if string(v) == s {
			return true
		}
	}
	return false
}

// RedFlag is a raised issue on a project, tracked until resolution.
type RedFlag struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// ProjectID is the affected project.
	ProjectID uuid.UUID `json:"project_id"`

	// Title is a short issue summary.
	Title string `json:"title" validate:"required,min=3,max=200"`

	// Description details the issue.
	Description string `json:"description" validate:"max=5000"`

	// Severity grades the issue impact.
	Severity RedFlagSeverity `json:"severity"`

	// RaisedBy is the user who raised the flag.
	RaisedBy uuid.UUID `json:"raised_by"`

	// ResolvedAt is when the flag was resolved. Nil while open.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Resolution describes how the issue was resolved.
	Resolution string `json:"resolution,omitempty" validate:"max=5000"`

	// CreatedAt is when the flag was raised.
	CreatedAt time.Time `json:"created_at"`
}

// IsOpen reports whether the flag is still unresolved.
func (f *RedFlag) IsOpen() bool {
	return f.ResolvedAt == nil
}
