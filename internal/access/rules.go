// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package access

import (
	"fmt"

	"github.com/stagegatehq/stagegate/internal/models"
)

// ErrNoAllowSet is returned when the role table is queried for a route
// class that carries no allow-set. PUBLIC and API_AUTH routes are never
// role-checked and must be special-cased by the caller before querying;
// reaching the table with one of them is a programming defect and the
// caller must fail closed.
var ErrNoAllowSet = fmt.Errorf("route class has no allow-set")

// allowSets is the static role authorization table. Built once at
// package init, never mutated. DEFAULT_PROTECTED carries an empty (not
// absent) set: any authenticated role passes.
//
// CUSTOM appears in no allow-set; custom-role users are denied from
// every restricted route class until their permission set is resolved
// upstream.
var allowSets = map[RouteClass][]models.Role{
	RouteAdminArea: {
		models.RoleAdmin,
		models.RoleGatekeeper,
	},
	RouteReviewArea: {
		models.RoleAdmin,
		models.RoleGatekeeper,
		models.RoleReviewer,
	},
	RouteProjectMutation: {
		models.RoleAdmin,
		models.RoleProjectLead,
		models.RoleGatekeeper,
	},
	RouteReportArea: {
		models.RoleAdmin,
		models.RoleGatekeeper,
		models.RoleProjectLead,
		models.RoleReviewer,
	},
	RouteDefaultProtected: {},
}

// AllowedRoles returns the fixed allow-set for a route class. An empty
// slice means no role restriction (any authenticated role passes).
// Returns ErrNoAllowSet for PUBLIC, AUTH_FORM and API_AUTH, which carry
// no allow-set by design.
func AllowedRoles(rc RouteClass) ([]models.Role, error) {
	roles, ok := allowSets[rc]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAllowSet, rc)
	}
	// Copy so callers cannot mutate the table.
	out := make([]models.Role, len(roles))
	copy(out, roles)
	return out, nil
}

// IsAllowed reports whether role may enter the route class. An empty
// allow-set admits every authenticated role. Unknown route classes
// fail closed.
func IsAllowed(rc RouteClass, role models.Role) bool {
	roles, ok := allowSets[rc]
	if !ok {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
