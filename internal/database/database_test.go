// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/models"
)

// newTestDB opens a fresh database in a temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "stagegate.db"),
		MaxMemory: "256MB",
		Threads:   2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedUser inserts a user with sensible defaults.
func seedUser(t *testing.T, db *DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$12$notarealhashnotarealhashnotarealhash",
		Role:         role,
	}
	require.NoError(t, db.CreateUser(t.Context(), u))
	return u
}

// seedProject inserts a project led by the given user.
func seedProject(t *testing.T, db *DB, lead *models.User, title string) *models.Project {
	t.Helper()
	p := &models.Project{
		Title:  title,
		LeadID: lead.ID,
		Stage:  models.GateG0,
	}
	require.NoError(t, db.CreateProject(t.Context(), p))
	return p
}

func TestOpenAndPing(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(t.Context()))
	assert.NotNil(t, db.Conn())
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	// A second run of the schema must not fail.
	assert.NoError(t, db.createSchema())
}

func TestUserCRUD(t *testing.T) {
	db := newTestDB(t)

	u := seedUser(t, db, "lead@example.com", models.RoleProjectLead)
	require.NotEqual(t, uuid.Nil, u.ID)

	byID, err := db.GetUserByID(t.Context(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "lead@example.com", byID.Email)
	assert.Equal(t, models.RoleProjectLead, byID.Role)
	assert.False(t, byID.IsVerified())

	byEmail, err := db.GetUserByEmail(t.Context(), "lead@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = db.GetUserByEmail(t.Context(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "dup@example.com", models.RoleUser)

	err := db.CreateUser(t.Context(), &models.User{
		Email: "dup@example.com",
		Name:  "Other",
		Role:  models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "promote@example.com", models.RoleUser)

	require.NoError(t, db.UpdateUserRole(t.Context(), u.ID.String(), models.RoleGatekeeper))

	got, err := db.GetUserByID(t.Context(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RoleGatekeeper, got.Role)

	err = db.UpdateUserRole(t.Context(), uuid.NewString(), models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkEmailVerified(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "verify@example.com", models.RoleUser)

	require.NoError(t, db.MarkEmailVerified(t.Context(), u.ID.String()))

	got, err := db.GetUserByID(t.Context(), u.ID.String())
	require.NoError(t, err)
	assert.True(t, got.IsVerified())
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", models.RoleUser)
	seedUser(t, db, "b@example.com", models.RoleAdmin)
	seedUser(t, db, "c@example.com", models.RoleReviewer)

	users, err := db.ListUsers(t.Context(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	rest, err := db.ListUsers(t.Context(), 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
