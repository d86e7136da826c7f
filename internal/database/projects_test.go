// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/models"
)

func TestProjectCRUD(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)

	p := seedProject(t, db, lead, "Thermal storage pilot")
	assert.Equal(t, models.ProjectActive, p.Status)

	got, err := db.GetProject(t.Context(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Thermal storage pilot", got.Title)
	assert.Equal(t, models.GateG0, got.Stage)
	assert.Nil(t, got.ClusterID)

	got.Title = "Thermal storage pilot II"
	got.Status = models.ProjectOnHold
	require.NoError(t, db.UpdateProject(t.Context(), got))

	updated, err := db.GetProject(t.Context(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Thermal storage pilot II", updated.Title)
	assert.Equal(t, models.ProjectOnHold, updated.Status)

	require.NoError(t, db.DeleteProject(t.Context(), p.ID.String()))
	_, err = db.GetProject(t.Context(), p.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceProjectStage(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	p := seedProject(t, db, lead, "Gate walker")

	require.NoError(t, db.AdvanceProjectStage(t.Context(), p.ID.String(), models.GateG1))

	got, err := db.GetProject(t.Context(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.GateG1, got.Stage)

	err = db.AdvanceProjectStage(t.Context(), uuid.NewString(), models.GateG1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProjectsFilters(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	other := seedUser(t, db, "other@example.com", models.RoleProjectLead)

	cluster := &models.Cluster{Name: "Energy"}
	require.NoError(t, db.CreateCluster(t.Context(), cluster))

	a := seedProject(t, db, lead, "Alpha")
	a.ClusterID = &cluster.ID
	require.NoError(t, db.UpdateProject(t.Context(), a))

	b := seedProject(t, db, other, "Beta")
	b.Status = models.ProjectCompleted
	require.NoError(t, db.UpdateProject(t.Context(), b))

	seedProject(t, db, lead, "Gamma")

	byCluster, err := db.ListProjects(t.Context(), ProjectFilter{ClusterID: cluster.ID.String()}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byCluster, 1)
	assert.Equal(t, "Alpha", byCluster[0].Title)
	require.NotNil(t, byCluster[0].ClusterID)
	assert.Equal(t, cluster.ID, *byCluster[0].ClusterID)

	byStatus, err := db.ListProjects(t.Context(), ProjectFilter{Status: "completed"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Beta", byStatus[0].Title)

	byLead, err := db.ListProjects(t.Context(), ProjectFilter{LeadID: lead.ID.String()}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byLead, 2)

	stage := models.GateG0
	all, err := db.ListProjects(t.Context(), ProjectFilter{Stage: &stage}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClusterCRUD(t *testing.T) {
	db := newTestDB(t)

	c := &models.Cluster{Name: "Materials", Description: "Advanced materials"}
	require.NoError(t, db.CreateCluster(t.Context(), c))

	dup := &models.Cluster{Name: "Materials"}
	assert.ErrorIs(t, db.CreateCluster(t.Context(), dup), ErrDuplicate)

	got, err := db.GetCluster(t.Context(), c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Materials", got.Name)

	got.Description = "Advanced and 2D materials"
	require.NoError(t, db.UpdateCluster(t.Context(), got))

	clusters, err := db.ListClusters(t.Context())
	require.NoError(t, err)
	assert.Len(t, clusters, 1)
}

func TestDeleteClusterDetachesProjects(t *testing.T) {
	db := newTestDB(t)
	lead := seedUser(t, db, "lead@example.com", models.RoleProjectLead)

	c := &models.Cluster{Name: "Sunset"}
	require.NoError(t, db.CreateCluster(t.Context(), c))

	p := seedProject(t, db, lead, "Orphan-to-be")
	p.ClusterID = &c.ID
	require.NoError(t, db.UpdateProject(t.Context(), p))

	require.NoError(t, db.DeleteCluster(t.Context(), c.ID.String()))

	got, err := db.GetProject(t.Context(), p.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got.ClusterID, "project should be detached, not deleted")
}
