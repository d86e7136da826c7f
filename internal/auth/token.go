// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package auth provides session tokens, credentials and OAuth sign-in,
// and the edge-safe/full configuration split.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stagegatehq/stagegate/internal/models"
)

// TokenClaims is the payload of a signed session token. All role and
// identity information a request needs is embedded here, so the access
// decision path never touches the database.
type TokenClaims struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsOAuth    bool   `json:"is_oauth"`
	IsVerified bool   `json:"is_verified"`
	jwt.RegisteredClaims
}

// TokenManager creates and validates session tokens (HMAC-SHA256).
type TokenManager struct {
	secret  []byte
	timeout time.Duration
}

// NewTokenManager creates a token manager with the given signing secret
// and session TTL. The secret must be non-empty.
func NewTokenManager(secret string, timeout time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session token secret is required but was empty")
	}
	return &TokenManager{
		secret:  []byte(secret),
		timeout: timeout,
	}, nil
}

// Issue signs a session token for the given claims. The config's token
// callback must already have run; Issue does not consult any store.
func (m *TokenManager) Issue(claims *TokenClaims) (string, error) {
	now := time.Now()
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.timeout))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns its claims. It enforces
// the HS256 signing method, the signature, and the expiry.
func (m *TokenManager) Parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionFromClaims converts validated token claims into a Session.
// An unknown role value is a construction-time error, never a silent
// fall-through.
func SessionFromClaims(claims *TokenClaims) (*models.Session, error) {
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &models.Session{
		UserID:     claims.Subject,
		Role:       role,
		Name:       claims.Name,
		Email:      claims.Email,
		IsOAuth:    claims.IsOAuth,
		IsVerified: claims.IsVerified,
	}, nil
}

// ClaimsFromUser builds sign-in claims for a user record.
func ClaimsFromUser(u *models.User) *TokenClaims {
	return &TokenClaims{
		Role:       string(u.Role),
		Name:       u.Name,
		Email:      u.Email,
		IsOAuth:    u.IsOAuth,
		IsVerified: u.IsVerified(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID.String(),
		},
	}
}

// Session context plumbing.

type contextKey string

// sessionContextKey stores the request's *models.Session.
const sessionContextKey contextKey = "session"

// ContextWithSession stores a session in the context.
func ContextWithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the session from context, or nil when
// the request is unauthenticated.
func SessionFromContext(ctx context.Context) *models.Session {
	if s, ok := ctx.Value(sessionContextKey).(*models.Session); ok {
		return s
	}
	return nil
}
