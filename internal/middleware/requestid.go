// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package middleware

import (
	"net/http"

	"github.com/stagegatehq/stagegate/internal/logging"
)

// RequestIDHeader is the header the request ID travels in, both on the
// way in (from an upstream proxy) and on the way out.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique ID and threads it through
// the response header and the logging context. Upstream-supplied IDs
// are honored so traces survive proxy hops.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
