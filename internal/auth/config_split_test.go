// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/models"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
	for _, u := range users {
		s.byID[u.ID.String()] = u
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            testSecret,
		SessionTimeout:       time.Hour,
		DefaultLoginRedirect: "/dashboard",
		CookieName:           "stagegate_session",
	}
}

func newEdge(t *testing.T) *Config {
	t.Helper()
	edge, err := NewEdgeConfig(t.Context(), testAuthConfig())
	require.NoError(t, err)
	return edge
}

func TestEdgeConfigHasNoCredentialsProvider(t *testing.T) {
	edge := newEdge(t)
	assert.True(t, edge.IsEdge())
	assert.Nil(t, edge.Credentials)
	assert.Empty(t, edge.Providers, "no provider credentials configured")
	assert.Equal(t, "/auth/login", edge.Pages.SignIn)
	assert.Equal(t, "/auth/error", edge.Pages.Error)
}

func TestEdgeTokenCallbackIsIdentity(t *testing.T) {
	edge := newEdge(t)

	claims := &TokenClaims{Role: string(models.RoleReviewer), Name: "R", Email: "r@example.com"}
	before := *claims
	require.NoError(t, edge.TokenCallback(t.Context(), claims, TriggerSignIn))
	assert.Equal(t, before.Role, claims.Role)
	assert.Equal(t, before.Name, claims.Name)
	assert.Equal(t, before.Email, claims.Email)
}

func TestEdgeSessionFromTokenNeedsNoStore(t *testing.T) {
	edge := newEdge(t)

	user := &models.User{
		ID:    uuid.New(),
		Email: "gk@example.com",
		Name:  "Gatekeeper",
		Role:  models.RoleGatekeeper,
	}
	token, err := edge.IssueToken(t.Context(), ClaimsFromUser(user), TriggerSignIn)
	require.NoError(t, err)

	session, err := edge.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGatekeeper, session.Role)
	assert.Equal(t, user.ID.String(), session.UserID)
}

func TestFullConfigSharesEdgeParts(t *testing.T) {
	edge := newEdge(t)
	full := NewFullConfig(edge, newFakeUserStore(), nil)

	assert.False(t, full.IsEdge())
	assert.NotNil(t, full.Credentials)
	// Shared structurally, not by convention.
	assert.Equal(t, edge.Pages, full.Pages)
	assert.Same(t, edge.Tokens, full.Tokens)
	assert.Equal(t, edge.CookieName, full.CookieName)
	// The edge value itself stays untouched.
	assert.True(t, edge.IsEdge())
}

func TestFullTokenCallbackEmbedsUserOnSignIn(t *testing.T) {
	verified := time.Now()
	user := &models.User{
		ID:              uuid.New(),
		Email:           "admin@example.com",
		Name:            "Admin",
		Role:            models.RoleAdmin,
		EmailVerifiedAt: &verified,
	}
	full := NewFullConfig(newEdge(t), newFakeUserStore(user), nil)

	claims := &TokenClaims{}
	claims.Subject = user.ID.String()
	require.NoError(t, full.TokenCallback(t.Context(), claims, TriggerSignIn))

	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsVerified)
	assert.False(t, claims.IsOAuth)
}

func TestFullTokenCallbackRefreshesRoleOnUpdate(t *testing.T) {
	user := &models.User{
		ID:    uuid.New(),
		Email: "u@example.com",
		Role:  models.RoleUser,
	}
	store := newFakeUserStore(user)
	full := NewFullConfig(newEdge(t), store, nil)

	claims := &TokenClaims{Role: string(models.RoleUser), Name: "before", Email: "u@example.com"}
	claims.Subject = user.ID.String()

	// Administrator promotes the user between requests.
	user.Role = models.RoleProjectLead

	require.NoError(t, full.TokenCallback(t.Context(), claims, TriggerUpdate))
	assert.Equal(t, "PROJECT_LEAD", claims.Role)
	// Update refreshes role and verification only; identity fields stay.
	assert.Equal(t, "before", claims.Name)
}

func TestFullTokenCallbackFailsForUnknownUser(t *testing.T) {
	full := NewFullConfig(newEdge(t), newFakeUserStore(), nil)
	claims := &TokenClaims{}
	claims.Subject = uuid.NewString()

	err := full.TokenCallback(t.Context(), claims, TriggerSignIn)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = full.TokenCallback(t.Context(), claims, TriggerUpdate)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEdgeConfigRejectsCredentialsSignIn(t *testing.T) {
	edge := newEdge(t)

	_, err := edge.Authenticate(t.Context(), "u@example.com", "irrelevant")
	assert.ErrorIs(t, err, ErrCredentialsDisabled)
}

func TestFullConfigDelegatesCredentialsSignIn(t *testing.T) {
	full := NewFullConfig(newEdge(t), newFakeUserStore(), nil)

	_, err := full.Authenticate(t.Context(), "nobody@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProviderLookup(t *testing.T) {
	edge := newEdge(t)

	_, err := edge.Provider(ProviderGitHub)
	assert.ErrorIs(t, err, ErrUnknownProvider, "no provider credentials configured")
}
