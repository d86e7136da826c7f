// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/stagegatehq/stagegate/internal/access"
	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/models"
)

// TokenTrigger says why a token callback is running.
type TokenTrigger int

const (
	// TriggerSignIn is the first token issuance after authentication.
	TriggerSignIn TokenTrigger = iota

	// TriggerUpdate is an explicit session refresh, e.g. after an
	// administrator changed the user's role.
	TriggerUpdate
)

// TokenCallback may enrich token claims before signing. The edge
// configuration installs a strict identity callback; the full
// configuration installs a store-backed one.
type TokenCallback func(ctx context.Context, claims *TokenClaims, trigger TokenTrigger) error

// SessionCallback maps validated token claims onto the per-request
// session object.
type SessionCallback func(claims *TokenClaims) (*models.Session, error)

// Pages names the custom auth page paths the application serves.
type Pages struct {
	// SignIn is the sign-in form path.
	SignIn string

	// Error is the authentication error page path.
	Error string
}

// Config is an authentication configuration. The edge variant carries
// OAuth providers, pages and pass-through callbacks only, so it can run
// where database drivers and native crypto are unavailable; the full
// variant extends it with a credentials provider and a store-backed
// token callback. The access decision path (internal/access) is
// constructible from the edge variant alone: role information arrives
// pre-embedded in the session token.
type Config struct {
	// Providers are the configured OAuth relying parties.
	Providers map[string]OAuthProvider

	// Pages are the custom auth page paths.
	Pages Pages

	// Tokens signs and validates session tokens.
	Tokens *TokenManager

	// States persists OAuth flow state across the redirect round-trip.
	States StateStore

	// SessionCallback maps token claims onto the session object.
	SessionCallback SessionCallback

	// TokenCallback runs before a token is signed.
	TokenCallback TokenCallback

	// Credentials validates email+password sign-ins. Nil in the edge
	// configuration: credentials need the user store and bcrypt.
	Credentials *CredentialsProvider

	// DefaultLoginRedirect is where users land after sign-in.
	DefaultLoginRedirect string

	// CookieName is the session cookie name.
	CookieName string

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool

	// SessionTimeout is the session token TTL, also used for cookies.
	SessionTimeout time.Duration
}

// NewEdgeConfig builds the edge-safe configuration: OAuth providers,
// pages, a session callback that copies subject, role, name, email and
// the OAuth-origin flag off the token, and an identity token callback.
// No database handle, no credentials provider.
func NewEdgeConfig(ctx context.Context, cfg *config.AuthConfig) (*Config, error) {
	tokens, err := NewTokenManager(cfg.JWTSecret, cfg.SessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("edge config: %w", err)
	}

	providers, err := NewProviders(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("edge config: %w", err)
	}

	return &Config{
		Providers: providers,
		Pages: Pages{
			SignIn: access.LoginPath,
			Error:  access.AuthErrorPath,
		},
		Tokens:          tokens,
		SessionCallback: SessionFromClaims,
		// Strict identity: no mutation, no I/O.
		TokenCallback: func(ctx context.Context, claims *TokenClaims, trigger TokenTrigger) error {
			return nil
		},
		Credentials:          nil,
		DefaultLoginRedirect: cfg.DefaultLoginRedirect,
		CookieName:           cfg.CookieName,
		CookieSecure:         cfg.CookieSecure,
		SessionTimeout:       cfg.SessionTimeout,
	}, nil
}

// IsEdge reports whether this configuration is the edge-safe subset.
func (c *Config) IsEdge() bool {
	return c.Credentials == nil
}

// IssueToken runs the token callback for the trigger and signs the
// resulting claims.
func (c *Config) IssueToken(ctx context.Context, claims *TokenClaims, trigger TokenTrigger) (string, error) {
	if err := c.TokenCallback(ctx, claims, trigger); err != nil {
		return "", fmt.Errorf("token callback: %w", err)
	}
	return c.Tokens.Issue(claims)
}

// SessionFromToken validates a raw token and maps it to a session via
// the session callback. This is the only door between a request and an
// authenticated identity.
func (c *Config) SessionFromToken(tokenString string) (*models.Session, error) {
	claims, err := c.Tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return c.SessionCallback(claims)
}
