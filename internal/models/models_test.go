// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"USER", RoleUser, false},
		{"GATEKEEPER", RoleGatekeeper, false},
		{"PROJECT_LEAD", RoleProjectLead, false},
		{"RESEARCHER", RoleResearcher, false},
		{"REVIEWER", RoleReviewer, false},
		{"CUSTOM", RoleCustom, false},
		{"admin", "", true}, // case sensitive
		{"OWNER", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		assert.True(t, IsValidRole(string(r)), "role %s should be valid", r)
	}
	assert.False(t, IsValidRole("SUPERUSER"))
}

func TestGateStage(t *testing.T) {
	assert.Equal(t, "G0", GateG0.String())
	assert.Equal(t, "G5", GateG5.String())
	assert.True(t, GateG3.Valid())
	assert.False(t, GateStage(6).Valid())
	assert.False(t, GateStage(-1).Valid())

	next, ok := GateG2.Next()
	require.True(t, ok)
	assert.Equal(t, GateG3, next)

	_, ok = GateG5.Next()
	assert.False(t, ok)
}

func TestBudgetVariance(t *testing.T) {
	b := &Budget{PlannedCents: 100_000, ActualCents: 125_000}
	assert.Equal(t, int64(25_000), b.VarianceCents())

	under := &Budget{PlannedCents: 100_000, ActualCents: 80_000}
	assert.Equal(t, int64(-20_000), under.VarianceCents())
}

func TestGateReviewIsDecided(t *testing.T) {
	now := time.Now()

	pending := &GateReview{Decision: DecisionPending}
	assert.False(t, pending.IsDecided())

	approved := &GateReview{Decision: DecisionApproved, DecidedAt: &now}
	assert.True(t, approved.IsDecided())

	// Decision without timestamp is not considered decided.
	inconsistent := &GateReview{Decision: DecisionApproved}
	assert.False(t, inconsistent.IsDecided())
}

func TestRedFlagIsOpen(t *testing.T) {
	flag := &RedFlag{}
	assert.True(t, flag.IsOpen())

	now := time.Now()
	flag.ResolvedAt = &now
	assert.False(t, flag.IsOpen())
}

func TestUserIsVerified(t *testing.T) {
	u := &User{}
	assert.False(t, u.IsVerified())

	now := time.Now()
	u.EmailVerifiedAt = &now
	assert.True(t, u.IsVerified())
}
