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

	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/models"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "anything"))
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        "lead@example.com",
		Name:         "Lead",
		Role:         models.RoleProjectLead,
		PasswordHash: hash,
	}
	oauthUser := &models.User{
		ID:      uuid.New(),
		Email:   "sso@example.com",
		Role:    models.RoleUser,
		IsOAuth: true,
		// No password hash: account was created via an OAuth provider.
	}
	provider := NewCredentialsProvider(newFakeUserStore(user, oauthUser), nil)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := provider.Authenticate(t.Context(), "lead@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := provider.Authenticate(t.Context(), "lead@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		_, err := provider.Authenticate(t.Context(), "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("oauth account has no password sign-in", func(t *testing.T) {
		_, err := provider.Authenticate(t.Context(), "sso@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := provider.Authenticate(t.Context(), "", "s3cret")
		assert.ErrorIs(t, err, ErrNoCredentials)
		_, err = provider.Authenticate(t.Context(), "lead@example.com", "")
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestAuthenticateLockout(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "lead@example.com",
		Role:         models.RoleProjectLead,
		PasswordHash: hash,
	}

	tracker := NewLockoutTracker(config.LockoutConfig{
		Enabled:           true,
		MaxAttempts:       3,
		LockoutDuration:   time.Minute,
		AttemptsPerMinute: 60,
	})
	provider := NewCredentialsProvider(newFakeUserStore(user), tracker)

	for i := 0; i < 3; i++ {
		_, err := provider.Authenticate(t.Context(), "lead@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// The budget is spent; even the right password is rejected now.
	_, err = provider.Authenticate(t.Context(), "lead@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.True(t, IsLockoutError(err))

	// Other subjects are unaffected.
	assert.False(t, tracker.IsLocked("other@example.com"))
}
