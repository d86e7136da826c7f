// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package access

import "strings"

// RouteClass is the authorization category a request path is sorted into.
type RouteClass string

const (
	// RoutePublic paths are reachable regardless of session state.
	RoutePublic RouteClass = "PUBLIC"

	// RouteAuthForm paths host sign-in and account-recovery forms,
	// reachable only for unauthenticated principals.
	RouteAuthForm RouteClass = "AUTH_FORM"

	// RouteAPIAuth paths back the authentication flows themselves and
	// are never gated here.
	RouteAPIAuth RouteClass = "API_AUTH"

	// RouteAdminArea covers administration pages.
	RouteAdminArea RouteClass = "ADMIN_AREA"

	// RouteReviewArea covers gate-review pages.
	RouteReviewArea RouteClass = "REVIEW_AREA"

	// RouteProjectMutation covers project creation and editing.
	RouteProjectMutation RouteClass = "PROJECT_MUTATION"

	// RouteReportArea covers portfolio reports.
	RouteReportArea RouteClass = "REPORT_AREA"

	// RouteDefaultProtected covers everything else; any authenticated
	// role passes.
	RouteDefaultProtected RouteClass = "DEFAULT_PROTECTED"
)

// Route path constants. These must match the paths the router mounts.
const (
	// APIAuthPrefix fronts the authentication API endpoints.
	APIAuthPrefix = "/api/auth"

	// LoginPath is the sign-in form.
	LoginPath = "/auth/login"

	// RegisterPath is the account registration form.
	RegisterPath = "/auth/register"

	// AuthErrorPath displays authentication errors.
	AuthErrorPath = "/auth/error"

	// ResetPath starts a password reset.
	ResetPath = "/auth/reset"

	// NewPasswordPath completes a password reset.
	NewPasswordPath = "/auth/new-password"

	// NewVerificationPath confirms an email verification token. It is
	// both an auth form and a public path: verification links must work
	// for signed-in and signed-out users alike.
	NewVerificationPath = "/auth/new-verification"

	// DefaultLoginRedirect is where authenticated users land after
	// sign-in, and where denied users are sent.
	DefaultLoginRedirect = "/dashboard"
)

// publicPaths are reachable regardless of session state (exact match).
var publicPaths = map[string]struct{}{
	"/":                  {},
	NewVerificationPath: {},
}

// authFormPaths host the auth forms (exact match).
var authFormPaths = map[string]struct{}{
	LoginPath:           {},
	RegisterPath:        {},
	AuthErrorPath:       {},
	ResetPath:           {},
	NewPasswordPath:     {},
	NewVerificationPath: {},
}

// Classify maps a request path to exactly one RouteClass. The rules are
// ordered and the first match wins; some rules overlap (a path can start
// with /projects/ and also contain /edit), so the order is part of the
// contract.
//
// Rule 5 deliberately matches the substring "/review" anywhere in the
// path, so /projects/123/review classifies as REVIEW_AREA. This also
// sweeps up any other path containing that text; see the package tests
// for the pinned behavior.
func Classify(path string) RouteClass {
	switch {
	case strings.HasPrefix(path, APIAuthPrefix):
		return RouteAPIAuth
	case isPublicPath(path):
		return RoutePublic
	case isAuthFormPath(path):
		return RouteAuthForm
	case strings.HasPrefix(path, "/admin"):
		return RouteAdminArea
	case strings.HasPrefix(path, "/reviews") || strings.Contains(path, "/review"):
		return RouteReviewArea
	case strings.HasPrefix(path, "/projects/create") ||
		(strings.Contains(path, "/projects/") && strings.Contains(path, "/edit")):
		return RouteProjectMutation
	case strings.HasPrefix(path, "/reports"):
		return RouteReportArea
	default:
		return RouteDefaultProtected
	}
}

// isPublicPath reports whether path is an exact public path.
func isPublicPath(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

// isAuthFormPath reports whether path is an exact auth-form path.
func isAuthFormPath(path string) bool {
	_, ok := authFormPaths[path]
	return ok
}
