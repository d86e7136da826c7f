// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagegatehq/stagegate/internal/config"
)

func testLockoutConfig() config.LockoutConfig {
	return config.LockoutConfig{
		Enabled:           true,
		MaxAttempts:       5,
		LockoutDuration:   15 * time.Minute,
		AttemptsPerMinute: 600, // high enough that tests never trip the rate doubling
	}
}

func TestLockoutDisabledReturnsNil(t *testing.T) {
	tracker := NewLockoutTracker(config.LockoutConfig{Enabled: false})
	assert.Nil(t, tracker)

	// Nil trackers are inert, not panics.
	assert.False(t, tracker.IsLocked("a@example.com"))
	tracker.RecordFailure("a@example.com")
	tracker.RecordSuccess("a@example.com")
	tracker.Sweep()
	tracker.StartSweepRoutine(t.Context())
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	tracker := NewLockoutTracker(testLockoutConfig())

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("a@example.com")
		assert.False(t, tracker.IsLocked("a@example.com"), "attempt %d should not lock", i+1)
	}
	tracker.RecordFailure("a@example.com")
	assert.True(t, tracker.IsLocked("a@example.com"))
}

func TestLockoutSuccessResetsCounter(t *testing.T) {
	tracker := NewLockoutTracker(testLockoutConfig())

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("a@example.com")
	}
	tracker.RecordSuccess("a@example.com")

	// The counter starts over.
	tracker.RecordFailure("a@example.com")
	assert.False(t, tracker.IsLocked("a@example.com"))
}

func TestLockoutSubjectsAreIndependent(t *testing.T) {
	tracker := NewLockoutTracker(testLockoutConfig())

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("a@example.com")
	}
	assert.True(t, tracker.IsLocked("a@example.com"))
	assert.False(t, tracker.IsLocked("b@example.com"))
}

func TestLockoutRapidFailuresBurnBudgetFaster(t *testing.T) {
	cfg := testLockoutConfig()
	cfg.MaxAttempts = 10
	cfg.AttemptsPerMinute = 1 // limiter allows one failure, then doubles
	tracker := NewLockoutTracker(cfg)

	// 1 + 2*5 >= 10: six rapid failures lock where ten slow ones would.
	for i := 0; i < 6; i++ {
		tracker.RecordFailure("a@example.com")
	}
	assert.True(t, tracker.IsLocked("a@example.com"))
}

func TestLockoutBackgroundSweepPrunesStaleEntries(t *testing.T) {
	cfg := testLockoutConfig()
	cfg.LockoutDuration = time.Millisecond
	tracker := NewLockoutTracker(cfg)

	// Distinct failed subjects each allocate an entry.
	for _, subject := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		tracker.RecordFailure(subject)
	}
	tracker.mu.Lock()
	assert.Len(t, tracker.entries, 3)
	tracker.mu.Unlock()

	// Move past twice the lockout duration so everything is stale.
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	ticker := time.NewTicker(time.Millisecond)
	go tracker.runSweepLoop(ctx, ticker)

	// The loop prunes without any manual Sweep call.
	assert.Eventually(t, func() bool {
		tracker.mu.Lock()
		defer tracker.mu.Unlock()
		return len(tracker.entries) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLockoutSweepKeepsLiveEntries(t *testing.T) {
	tracker := NewLockoutTracker(testLockoutConfig())

	tracker.RecordFailure("fresh@example.com")
	assert.Zero(t, tracker.Sweep(), "recent failures must survive a sweep")

	tracker.mu.Lock()
	assert.Len(t, tracker.entries, 1)
	tracker.mu.Unlock()
}
