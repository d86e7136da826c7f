// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package access

import (
	"net/url"

	"github.com/stagegatehq/stagegate/internal/models"
)

// Reason explains a redirect decision.
type Reason string

const (
	// ReasonUnauthenticated means the route requires a session and none
	// was present.
	ReasonUnauthenticated Reason = "unauthenticated"

	// ReasonInsufficientRole means the session's role is not in the
	// route's allow-set.
	ReasonInsufficientRole Reason = "insufficient-role"

	// ReasonAlreadyAuthenticated means an authenticated principal
	// requested an auth-only form.
	ReasonAlreadyAuthenticated Reason = "already-authenticated"
)

// Decision is the outcome of evaluating a request: either allow it to
// proceed, or redirect it to Target.
type Decision struct {
	// Allowed is true when the request may proceed.
	Allowed bool

	// Target is the redirect location when Allowed is false.
	Target string

	// Reason explains the redirect. Empty when Allowed is true.
	Reason Reason
}

// Allow is the decision that lets a request proceed.
var Allow = Decision{Allowed: true}

// Redirect builds a redirect decision.
func Redirect(target string, reason Reason) Decision {
	return Decision{Target: target, Reason: reason}
}

// LoginRedirect builds the redirect to the sign-in form that preserves
// the original path and query as a callbackUrl parameter, so the user
// returns to their intended destination after authenticating.
func LoginRedirect(path, query string) Decision {
	callback := path
	if query != "" {
		callback += "?" + query
	}
	target := LoginPath + "?callbackUrl=" + url.QueryEscape(callback)
	return Redirect(target, ReasonUnauthenticated)
}

// Decide evaluates a request against the route authorization rules.
// session is nil for unauthenticated requests; query is the raw query
// string without the leading '?'.
//
// The evaluation is total: every (session, path, query) triple yields a
// decision, and identical inputs always yield identical decisions. An
// incomplete role table fails closed by redirecting to the default
// landing page.
func Decide(session *models.Session, path, query string) Decision {
	rc := Classify(path)

	// Auth API endpoints manage their own checks.
	if rc == RouteAPIAuth {
		return Allow
	}

	// Auth forms are for signed-out users only.
	if rc == RouteAuthForm {
		if session != nil {
			return Redirect(DefaultLoginRedirect, ReasonAlreadyAuthenticated)
		}
		return Allow
	}

	if rc == RoutePublic {
		return Allow
	}

	if session == nil {
		return LoginRedirect(path, query)
	}

	if !IsAllowed(rc, session.Role) {
		return Redirect(DefaultLoginRedirect, ReasonInsufficientRole)
	}

	return Allow
}
