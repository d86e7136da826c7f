// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package config

import (
	"errors"
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum accepted session secret length.
const minJWTSecretLength = 32

// Validate checks the configuration for internal consistency. Secrets
// and provider credentials are only enforced in production: development
// setups may run without OAuth providers or with auth fully unset.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("server.environment %q must be development or production", c.Server.Environment))
	}

	if c.Auth.SessionTimeout <= 0 {
		errs = append(errs, errors.New("auth.session_timeout must be positive"))
	}
	if !strings.HasPrefix(c.Auth.DefaultLoginRedirect, "/") {
		errs = append(errs, fmt.Errorf("auth.default_login_redirect %q must be an absolute path", c.Auth.DefaultLoginRedirect))
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < minJWTSecretLength {
			errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d characters in production", minJWTSecretLength))
		}
		if c.Auth.Entra.Enabled() && c.Auth.Entra.TenantID == "" {
			errs = append(errs, errors.New("auth.entra.tenant_id is required when entra credentials are set"))
		}
	}

	if c.API.DefaultPageSize < 1 {
		errs = append(errs, errors.New("api.default_page_size must be at least 1"))
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		errs = append(errs, errors.New("api.max_page_size must be >= api.default_page_size"))
	}

	if c.Auth.Lockout.Enabled && c.Auth.Lockout.MaxAttempts < 1 {
		errs = append(errs, errors.New("auth.lockout.max_attempts must be at least 1"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
