// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/logging"
	"github.com/stagegatehq/stagegate/internal/models"
)

// NewFullConfig extends an edge configuration with the Node-only parts:
// a credentials provider and a store-backed token callback. The shared
// parts (providers, pages, token manager, session callback) are taken
// from the edge value structurally, so edge and full cannot drift apart.
func NewFullConfig(edge *Config, users UserStore, lockout *LockoutTracker) *Config {
	full := *edge
	full.Credentials = NewCredentialsProvider(users, lockout)
	full.TokenCallback = storeTokenCallback(users)
	return &full
}

// Authenticate validates an email+password sign-in. The edge
// configuration carries no credentials provider and rejects the attempt
// with ErrCredentialsDisabled.
func (c *Config) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if c.Credentials == nil {
		return nil, ErrCredentialsDisabled
	}
	return c.Credentials.Authenticate(ctx, email, password)
}

// storeTokenCallback returns the full configuration's token callback.
// On first sign-in it loads the user record and embeds role,
// OAuth-origin and verification state into the token. On an explicit
// session update it refreshes the role from the store. Any other
// invocation passes the token through unchanged.
func storeTokenCallback(users UserStore) TokenCallback {
	return func(ctx context.Context, claims *TokenClaims, trigger TokenTrigger) error {
		switch trigger {
		case TriggerSignIn:
			user, err := users.GetUserByID(ctx, claims.Subject)
			if err != nil {
				return fmt.Errorf("load user for token: %w", lookupError(err))
			}
			claims.Role = string(user.Role)
			claims.Name = user.Name
			claims.Email = user.Email
			claims.IsOAuth = user.IsOAuth
			claims.IsVerified = user.IsVerified()
			return nil

		case TriggerUpdate:
			user, err := users.GetUserByID(ctx, claims.Subject)
			if err != nil {
				return fmt.Errorf("refresh role for token: %w", lookupError(err))
			}
			if string(user.Role) != claims.Role {
				logging.Ctx(ctx).Info().
					Str("user_id", claims.Subject).
					Str("old_role", claims.Role).
					Str("new_role", string(user.Role)).
					Msg("session role refreshed")
			}
			claims.Role = string(user.Role)
			claims.IsVerified = user.IsVerified()
			return nil

		default:
			return nil
		}
	}
}

// lookupError translates a store miss into ErrUserNotFound: a token
// whose subject no longer exists (deleted account) must fail the same
// way everywhere.
func lookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
