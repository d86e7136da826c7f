// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)

	user := &models.User{
		ID:      uuid.New(),
		Email:   "lead@example.com",
		Name:    "Project Lead",
		Role:    models.RoleProjectLead,
		IsOAuth: true,
	}

	token, err := tm.Issue(ClaimsFromUser(user))
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)

	session, err := SessionFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), session.UserID)
	assert.Equal(t, models.RoleProjectLead, session.Role)
	assert.Equal(t, "lead@example.com", session.Email)
	assert.True(t, session.IsOAuth)
	assert.False(t, session.IsVerified)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm := newTestTokenManager(t)
	other, err := NewTokenManager("another-secret-another-secret-xx", time.Hour)
	require.NoError(t, err)

	token, err := tm.Issue(&TokenClaims{Role: string(models.RoleUser)})
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm, err := NewTokenManager(testSecret, -time.Minute)
	require.NoError(t, err)

	token, err := tm.Issue(&TokenClaims{Role: string(models.RoleUser)})
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := newTestTokenManager(t)
	_, err := tm.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionFromClaimsRejectsUnknownRole(t *testing.T) {
	_, err := SessionFromClaims(&TokenClaims{Role: "SUPERUSER"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionContext(t *testing.T) {
	session := &models.Session{UserID: "u-1", Role: models.RoleAdmin}
	ctx := ContextWithSession(t.Context(), session)
	assert.Same(t, session, SessionFromContext(ctx))
	assert.Nil(t, SessionFromContext(t.Context()))
}
