// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GateStage identifies a project's position in the stage-gate lifecycle.
// Projects advance one gate at a time through approved gate reviews.
type GateStage int

// Gate stages G0 (ideation) through G5 (closure).
const (
	GateG0 GateStage = iota
	GateG1
	GateG2
	GateG3
	GateG4
	GateG5
)

// String returns the canonical gate label (G0..G5).
func (g GateStage) String() string {
	return fmt.Sprintf("G%d", int(g))
}

// Valid reports whether the stage is within the defined gate range.
func (g GateStage) Valid() bool {
	return g >= GateG0 && g <= GateG5
}

// Next returns the following gate stage and whether one exists.
func (g GateStage) Next() (GateStage, bool) {
	if g >= GateG5 {
		return g, false
	}
	return g + 1, true
}

// ProjectStatus describes a project's lifecycle state independent of
// its gate position.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ValidProjectStatuses lists the accepted status values.
var ValidProjectStatuses = []ProjectStatus{
	ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled,
}

// IsValidProjectStatus reports whether s is an accepted status value.
func IsValidProjectStatus(s string) bool {
	for _, v := range ValidProjectStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// Project is a stage-gate managed research or development effort.
type Project struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// Title is the short project name.
	Title string `json:"title" validate:"required,min=3,max=200"`

	// Summary is a free-text description.
	Summary string `json:"summary" validate:"max=5000"`

	// ClusterID groups the project into a portfolio cluster. Nil for
	// unclustered projects.
	ClusterID *uuid.UUID `json:"cluster_id,omitempty"`

	// LeadID is the user ID of the project lead.
	LeadID uuid.UUID `json:"lead_id"`

	// Stage is the project's current gate stage.
	Stage GateStage `json:"stage"`

	// Status is the lifecycle state.
	Status ProjectStatus `json:"status"`

	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Cluster groups related projects for portfolio reporting.
type Cluster struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
