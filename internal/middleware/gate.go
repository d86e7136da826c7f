// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package middleware

import (
	"net/http"

	"github.com/stagegatehq/stagegate/internal/access"
	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/logging"
	"github.com/stagegatehq/stagegate/internal/models"
)

// Gate enforces route authorization for every request. It extracts the
// session from the request (cookie or bearer token), evaluates the
// access decision for the request path, and either redirects or lets
// the request proceed with the session in its context.
//
// The gate only needs the edge half of the auth configuration: token
// verification is pure HS256, no database or credentials provider is
// consulted here.
type Gate struct {
	auth *auth.Config
}

// NewGate creates the access gate middleware around an auth
// configuration.
func NewGate(authConfig *auth.Config) *Gate {
	return &Gate{auth: authConfig}
}

// Handler is the Chi middleware entry point.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := g.sessionFromRequest(r)

		rc := access.Classify(r.URL.Path)
		decision := access.Decide(session, r.URL.Path, r.URL.RawQuery)
		access.RecordDecision(rc, decision)

		if !decision.Allowed {
			logging.Ctx(r.Context()).Debug().
				Str("path", r.URL.Path).
				Str("route_class", string(rc)).
				Str("reason", string(decision.Reason)).
				Str("target", decision.Target).
				Msg("request redirected by access gate")
			http.Redirect(w, r, decision.Target, http.StatusFound)
			return
		}

		if session != nil {
			r = r.WithContext(auth.ContextWithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// sessionFromRequest parses the session token, if any. An invalid or
// expired token is treated the same as no token at all: the decision
// engine sees an unauthenticated request.
func (g *Gate) sessionFromRequest(r *http.Request) *models.Session {
	token := g.auth.TokenFromRequest(r)
	if token == "" {
		return nil
	}
	session, err := g.auth.SessionFromToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().
			Err(err).
			Str("path", r.URL.Path).
			Msg("discarding invalid session token")
		return nil
	}
	return session
}

// RequireRole guards a single route group with an explicit role check
// on top of the gate's path-based decision. Handlers that mutate
// records use it as a second line of defense when the URL shape alone
// does not encode the privilege, such as JSON APIs that multiplex
// methods on one path.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.SessionFromContext(r.Context())
			if session == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[session.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
