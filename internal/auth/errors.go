// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import "errors"

// Standard authentication errors.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a session token failed validation.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrAccountLocked indicates the subject is locked out after
	// repeated failed attempts.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrUserNotFound indicates no account matches the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrCredentialsDisabled indicates credentials sign-in was attempted
	// against the edge configuration, which carries no credentials
	// provider.
	ErrCredentialsDisabled = errors.New("credentials provider not available in this configuration")

	// ErrStateNotFound indicates an OAuth state parameter is unknown.
	ErrStateNotFound = errors.New("oauth state not found")

	// ErrStateExpired indicates an OAuth state parameter has expired.
	ErrStateExpired = errors.New("oauth state expired")

	// ErrUnknownProvider indicates an OAuth provider name is not configured.
	ErrUnknownProvider = errors.New("unknown oauth provider")
)
