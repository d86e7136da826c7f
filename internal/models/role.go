// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import "fmt"

// Role identifies a user's authorization level. The set is closed: an
// unrecognized role value is rejected at construction time by ParseRole
// rather than silently falling through authorization checks.
type Role string

const (
	// RoleAdmin has full access including user and role management.
	RoleAdmin Role = "ADMIN"

	// RoleUser is the default role for newly registered users.
	RoleUser Role = "USER"

	// RoleGatekeeper owns gate reviews and portfolio governance.
	RoleGatekeeper Role = "GATEKEEPER"

	// RoleProjectLead manages projects they lead, including budgets.
	RoleProjectLead Role = "PROJECT_LEAD"

	// RoleResearcher contributes to projects without management rights.
	RoleResearcher Role = "RESEARCHER"

	// RoleReviewer participates in gate reviews.
	RoleReviewer Role = "REVIEWER"

	// RoleCustom marks a user whose permissions come from a custom
	// permission set resolved outside the static role table.
	RoleCustom Role = "CUSTOM"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{
	RoleAdmin,
	RoleUser,
	RoleGatekeeper,
	RoleProjectLead,
	RoleResearcher,
	RoleReviewer,
	RoleCustom,
}

// ParseRole converts a string to a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role: %q", s)
}

// IsValidRole reports whether s names a known role.
func IsValidRole(s string) bool {
	_, err := ParseRole(s)
	return err == nil
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
