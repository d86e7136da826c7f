// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/logging"
)

// sweepInterval is how often the background sweep prunes stale entries.
const sweepInterval = 5 * time.Minute

// lockoutEntry tracks failed sign-in attempts for one subject.
type lockoutEntry struct {
	failedAttempts int
	lastAttempt    time.Time
	lockedUntil    time.Time

	// limiter throttles how fast failures can even be recorded, which
	// blunts high-rate guessing before the attempt counter engages.
	limiter *rate.Limiter
}

// LockoutTracker locks a subject (email) out after repeated failed
// sign-in attempts. State is in-memory; a restart clears it, which is
// acceptable because the tracker guards brute force, not persistence.
type LockoutTracker struct {
	mu      sync.Mutex
	cfg     config.LockoutConfig
	entries map[string]*lockoutEntry
}

// NewLockoutTracker creates a tracker from configuration. Returns nil
// when lockout is disabled, and all methods tolerate a nil receiver.
func NewLockoutTracker(cfg config.LockoutConfig) *LockoutTracker {
	if !cfg.Enabled {
		return nil
	}
	if cfg.AttemptsPerMinute <= 0 {
		cfg.AttemptsPerMinute = 10
	}
	return &LockoutTracker{
		cfg:     cfg,
		entries: make(map[string]*lockoutEntry),
	}
}

// IsLocked reports whether the subject is currently locked out.
func (t *LockoutTracker) IsLocked(subject string) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[subject]
	if !ok {
		return false
	}
	return time.Now().Before(entry.lockedUntil)
}

// RecordFailure registers a failed attempt and locks the subject once
// the attempt budget is exhausted.
func (t *LockoutTracker) RecordFailure(subject string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[subject]
	if !ok {
		entry = &lockoutEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(t.cfg.AttemptsPerMinute)/60.0), t.cfg.AttemptsPerMinute),
		}
		t.entries[subject] = entry
	}

	// Over-rate failures count double: sustained guessing burns the
	// attempt budget faster.
	increment := 1
	if !entry.limiter.Allow() {
		increment = 2
	}

	entry.failedAttempts += increment
	entry.lastAttempt = time.Now()

	if entry.failedAttempts >= t.cfg.MaxAttempts {
		entry.lockedUntil = time.Now().Add(t.cfg.LockoutDuration)
		entry.failedAttempts = 0
		logging.Warn().
			Str("subject", subject).
			Dur("duration", t.cfg.LockoutDuration).
			Msg("account locked after repeated failed sign-ins")
	}
}

// RecordSuccess clears the subject's failure history.
func (t *LockoutTracker) RecordSuccess(subject string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, subject)
}

// Sweep removes stale entries and returns how many were pruned.
// Entries older than twice the lockout duration and no longer locked
// are dropped. StartSweepRoutine calls this on a ticker.
func (t *LockoutTracker) Sweep() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	pruned := 0
	cutoff := time.Now().Add(-2 * t.cfg.LockoutDuration)
	for subject, entry := range t.entries {
		if entry.lastAttempt.Before(cutoff) && time.Now().After(entry.lockedUntil) {
			delete(t.entries, subject)
			pruned++
		}
	}
	return pruned
}

// StartSweepRoutine starts a background goroutine that prunes stale
// entries until ctx is canceled. Subjects are attacker-controlled on an
// unauthenticated surface, so without the sweep the entry map grows for
// the life of the process.
func (t *LockoutTracker) StartSweepRoutine(ctx context.Context) {
	if t == nil {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	go t.runSweepLoop(ctx, ticker)
}

// runSweepLoop runs the sweep loop until context is canceled.
func (t *LockoutTracker) runSweepLoop(ctx context.Context, ticker *time.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := t.Sweep(); pruned > 0 {
				logging.Debug().Int("count", pruned).Msg("pruned stale lockout entries")
			}
		}
	}
}
