// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/stagegatehq/stagegate/internal/config"
)

// Stack bundles the cross-cutting middleware built from configuration:
// CORS and the per-surface rate limiters.
type Stack struct {
	cors func(http.Handler) http.Handler

	rateLimitReqs     int
	rateLimitWindow   time.Duration
	authRateLimitReqs int
}

// NewStack builds the middleware stack from server and API config.
func NewStack(server config.ServerConfig, api config.APIConfig) *Stack {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	window := api.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return &Stack{
		cors:              corsHandler,
		rateLimitReqs:     api.RateLimitReqs,
		rateLimitWindow:   window,
		authRateLimitReqs: api.AuthRateLimitReqs,
	}
}

// CORS returns the CORS middleware. It must sit in the global chain so
// OPTIONS preflights are answered on every route.
func (s *Stack) CORS() func(http.Handler) http.Handler {
	return s.cors
}

// RateLimit returns the general per-IP rate limiter.
func (s *Stack) RateLimit() func(http.Handler) http.Handler {
	if s.rateLimitReqs <= 0 {
		return passthrough
	}
	return httprate.LimitByRealIP(s.rateLimitReqs, s.rateLimitWindow)
}

// RateLimitAuth returns the stricter limiter for the authentication
// endpoints, which are the primary brute-force surface.
func (s *Stack) RateLimitAuth() func(http.Handler) http.Handler {
	if s.authRateLimitReqs <= 0 {
		return passthrough
	}
	return httprate.LimitByRealIP(s.authRateLimitReqs, s.rateLimitWindow)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
