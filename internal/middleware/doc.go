// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package middleware provides the HTTP middleware stack: request ID
// propagation, session extraction, the route access gate, and
// Prometheus request instrumentation. All middleware is Chi-shaped,
// func(http.Handler) http.Handler.
package middleware
