// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts access decisions by route class and outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of route access decisions",
		},
		[]string{"route_class", "outcome"},
	)

	// RedirectsTotal counts redirects by reason, for alerting on
	// unusual denial rates.
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_redirects_total",
			Help: "Total number of access redirects by reason",
		},
		[]string{"reason"},
	)
)

// RecordDecision records a decision outcome for a route class.
func RecordDecision(rc RouteClass, d Decision) {
	outcome := "allow"
	if !d.Allowed {
		outcome = "redirect"
		RedirectsTotal.WithLabelValues(string(d.Reason)).Inc()
	}
	DecisionsTotal.WithLabelValues(string(rc), outcome).Inc()
}
