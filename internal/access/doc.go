// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package access implements the route authorization decision engine.
//
// Every incoming request path is sorted into exactly one RouteClass by
// an ordered set of prefix and substring rules. A static, immutable
// table maps each restricted RouteClass to the set of roles permitted
// to enter it. Decide combines the route class, the request's session
// (or absence thereof) and the table into a single AccessDecision:
// allow the request, or redirect it.
//
// The package is pure: no I/O, no shared mutable state, no per-request
// allocation beyond the decision value. The role table is built once at
// package init and shared freely across concurrent requests. Decisions
// are computed fresh per request and never cached, since role and
// session state can change between requests.
//
// The package must stay constructible without a database handle: all
// role information arrives pre-embedded in the session token, so the
// decision engine can run in restricted execution environments.
package access
