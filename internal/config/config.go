// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package config loads and validates the StageGate server configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
package config

import "time"

// Config is the root configuration for the StageGate server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
	API      APIConfig      `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout bounds request read/write.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds embedded database settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// AuthConfig holds authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the session token TTL.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// DefaultLoginRedirect is where users land after sign-in.
	DefaultLoginRedirect string `koanf:"default_login_redirect"`

	// CookieName is the session cookie name.
	CookieName string `koanf:"cookie_name"`

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool `koanf:"cookie_secure"`

	// StateStorePath is the BadgerDB directory for OAuth flow state.
	StateStorePath string `koanf:"state_store_path"`

	// Lockout configures the failed-login lockout tracker.
	Lockout LockoutConfig `koanf:"lockout"`

	// Google is the Google OAuth provider.
	Google OAuthProviderConfig `koanf:"google"`

	// GitHub is the GitHub OAuth provider.
	GitHub OAuthProviderConfig `koanf:"github"`

	// Entra is the Microsoft Entra ID (enterprise directory) provider.
	// Requires TenantID in addition to client credentials.
	Entra EntraConfig `koanf:"entra"`
}

// OAuthProviderConfig holds one OAuth relying-party registration.
type OAuthProviderConfig struct {
	// ClientID is the OAuth 2.0 client identifier.
	ClientID string `koanf:"client_id"`

	// ClientSecret is the OAuth 2.0 client secret.
	ClientSecret string `koanf:"client_secret"`

	// RedirectURL is the authorization-code callback URL.
	RedirectURL string `koanf:"redirect_url"`

	// Scopes are the OAuth scopes to request.
	Scopes []string `koanf:"scopes"`
}

// Enabled reports whether the provider has credentials configured.
func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// EntraConfig is the Microsoft Entra ID registration. It mirrors
// OAuthProviderConfig plus the directory tenant, which determines the
// OIDC issuer URL.
type EntraConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
	TenantID     string   `koanf:"tenant_id"`
}

// Enabled reports whether the provider has credentials configured.
func (p EntraConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Issuer returns the tenant-scoped OIDC issuer URL.
func (p EntraConfig) Issuer() string {
	return "https://login.microsoftonline.com/" + p.TenantID + "/v2.0"
}

// LockoutConfig holds failed-login lockout settings.
type LockoutConfig struct {
	// Enabled controls whether lockout is active.
	Enabled bool `koanf:"enabled"`

	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int `koanf:"max_attempts"`

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration `koanf:"lockout_duration"`

	// AttemptsPerMinute throttles attempt recording per subject.
	AttemptsPerMinute int `koanf:"attempts_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	// DefaultPageSize is used when a list request omits limit.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the limit parameter.
	MaxPageSize int `koanf:"max_page_size"`

	// RateLimitReqs is the per-window request budget per client.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate-limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// AuthRateLimitReqs is the stricter budget for auth endpoints.
	AuthRateLimitReqs int `koanf:"auth_rate_limit_reqs"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8420,
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/stagegate.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Auth: AuthConfig{
			JWTSecret:            "",
			SessionTimeout:       24 * time.Hour,
			DefaultLoginRedirect: "/dashboard",
			CookieName:           "stagegate_session",
			CookieSecure:         true,
			StateStorePath:       "/data/oauth-state",
			Lockout: LockoutConfig{
				Enabled:           true,
				MaxAttempts:       5,
				LockoutDuration:   15 * time.Minute,
				AttemptsPerMinute: 10,
			},
			Google: OAuthProviderConfig{
				Scopes: []string{"openid", "profile", "email"},
			},
			GitHub: OAuthProviderConfig{
				Scopes: []string{"read:user", "user:email"},
			},
			Entra: EntraConfig{
				Scopes: []string{"openid", "profile", "email"},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		API: APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			AuthRateLimitReqs: 10,
		},
	}
}
