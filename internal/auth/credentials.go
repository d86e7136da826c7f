// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/stagegatehq/stagegate/internal/models"
)

// UserStore is the subset of the user store the credentials provider
// and the full token callback need. Only the full configuration ever
// holds an implementation; the edge configuration carries none.
type UserStore interface {
	// GetUserByEmail returns the user with the given email, or
	// database.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the user with the given ID, or
	// database.ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// bcryptCost is the work factor for password hashes.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a password against its bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CredentialsProvider validates email+password sign-ins against the
// user store. It exists only in the full configuration: the edge
// runtime cannot reach the database or bcrypt.
type CredentialsProvider struct {
	users   UserStore
	lockout *LockoutTracker
}

// NewCredentialsProvider creates a credentials provider. lockout may be
// nil to disable lockout tracking.
func NewCredentialsProvider(users UserStore, lockout *LockoutTracker) *CredentialsProvider {
	return &CredentialsProvider{users: users, lockout: lockout}
}

// Authenticate validates the email+password pair and returns the user.
// Failed attempts are recorded against the lockout tracker; a locked
// subject is rejected before the store is consulted.
func (p *CredentialsProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrNoCredentials
	}

	if p.lockout != nil && p.lockout.IsLocked(email) {
		return nil, ErrAccountLocked
	}

	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if p.lockout != nil {
			p.lockout.RecordFailure(email)
		}
		// Same failure mode as a wrong password, so the response does
		// not leak which emails have accounts.
		return nil, ErrInvalidCredentials
	}

	// OAuth-origin accounts have no password hash.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(user.PasswordHash, password) {
		if p.lockout != nil {
			p.lockout.RecordFailure(email)
		}
		return nil, ErrInvalidCredentials
	}

	if p.lockout != nil {
		p.lockout.RecordSuccess(email)
	}
	return user, nil
}

// IsLockoutError reports whether err is a lockout rejection.
func IsLockoutError(err error) bool {
	return errors.Is(err, ErrAccountLocked)
}
