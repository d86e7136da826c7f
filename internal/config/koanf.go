// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stagegate/config.yaml",
	"/etc/stagegate/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. Defaults from defaultConfig()
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// Environment variables transform to koanf paths:
	// SERVER_PORT -> server.port, AUTH_JWT_SECRET -> auth.jwt_secret.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive as strings from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"auth.google.scopes",
	"auth.github.scopes",
	"auth.entra.scopes",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var parts []string
		for _, item := range strings.Split(s, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps well-known environment variable names onto config
// paths. Variables not listed here are ignored, so unrelated environment
// noise cannot perturb the configuration.
var envMappings = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"environment": "server.environment",

	"server_host":         "server.host",
	"server_port":         "server.port",
	"server_timeout":      "server.timeout",
	"server_environment":  "server.environment",
	"server_cors_origins": "server.cors_origins",

	"duckdb_path":         "database.path",
	"database_path":       "database.path",
	"database_max_memory": "database.max_memory",
	"database_threads":    "database.threads",

	"jwt_secret":                  "auth.jwt_secret",
	"auth_jwt_secret":             "auth.jwt_secret",
	"auth_session_timeout":        "auth.session_timeout",
	"auth_default_login_redirect": "auth.default_login_redirect",
	"auth_cookie_name":            "auth.cookie_name",
	"auth_cookie_secure":          "auth.cookie_secure",
	"auth_state_store_path":       "auth.state_store_path",

	"auth_lockout_enabled":             "auth.lockout.enabled",
	"auth_lockout_max_attempts":        "auth.lockout.max_attempts",
	"auth_lockout_duration":            "auth.lockout.lockout_duration",
	"auth_lockout_attempts_per_minute": "auth.lockout.attempts_per_minute",

	"google_client_id":     "auth.google.client_id",
	"google_client_secret": "auth.google.client_secret",
	"google_redirect_url":  "auth.google.redirect_url",
	"google_scopes":        "auth.google.scopes",

	"github_client_id":     "auth.github.client_id",
	"github_client_secret": "auth.github.client_secret",
	"github_redirect_url":  "auth.github.redirect_url",
	"github_scopes":        "auth.github.scopes",

	"entra_client_id":     "auth.entra.client_id",
	"entra_client_secret": "auth.entra.client_secret",
	"entra_redirect_url":  "auth.entra.redirect_url",
	"entra_tenant_id":     "auth.entra.tenant_id",
	"entra_scopes":        "auth.entra.scopes",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"api_default_page_size":    "api.default_page_size",
	"api_max_page_size":        "api.max_page_size",
	"api_rate_limit_reqs":      "api.rate_limit_reqs",
	"api_rate_limit_window":    "api.rate_limit_window",
	"api_auth_rate_limit_reqs": "api.auth_rate_limit_reqs",
}

// envTransformFunc converts an environment variable name to its config
// path, or "" to skip the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
