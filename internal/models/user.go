// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a persisted account. Credentials-based users carry a
// bcrypt password hash; OAuth-origin users have an empty hash and
// IsOAuth set.
type User struct {
	// ID is the primary key.
	ID uuid.UUID `json:"id"`

	// Email is the unique login identifier.
	Email string `json:"email"`

	// Name is the display name.
	Name string `json:"name"`

	// PasswordHash is the bcrypt hash of the password, empty for
	// OAuth-origin accounts. Never serialized.
	PasswordHash string `json:"-"`

	// Role is the user's authorization level. Assigned at creation,
	// mutated only by administrative action.
	Role Role `json:"role"`

	// IsOAuth indicates the account originated from an OAuth provider.
	IsOAuth bool `json:"is_oauth"`

	// EmailVerifiedAt is when the email address was verified.
	// Nil means unverified.
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the account was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVerified reports whether the user's email address is verified.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// Session is the authenticated principal's identity for the current
// request. It is constructed from a signed token at request time and is
// never stored server-side.
type Session struct {
	// UserID is the subject identifier from the token.
	UserID string `json:"user_id"`

	// Role is the effective authorization level.
	Role Role `json:"role"`

	// Name is the display name carried in the token.
	Name string `json:"name"`

	// Email is the email address carried in the token.
	Email string `json:"email"`

	// IsOAuth indicates the session originated from an OAuth sign-in.
	IsOAuth bool `json:"is_oauth"`

	// IsVerified indicates the account's email verification state at
	// token issuance.
	IsVerified bool `json:"is_verified"`
}
