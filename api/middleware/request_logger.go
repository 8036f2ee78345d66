// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/cactusfi/cactus/log"
)

// RequestIDHeader carries the id assigned to each request. A client supplied id is kept.
const RequestIDHeader = "X-Request-Id"

// maxLoggedBody caps the request body copied into a log record.
const maxLoggedBody = 4096

// RequestLogger returns a middleware logging requests when enabled, when slower than
// slowQueriesThreshold, or when answered with a 5xx status and log5xxErrors is set.
// Every request gets a request id, echoed back in RequestIDHeader.
func RequestLogger(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration, log5xxErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.New()
			}
			w.Header().Set(RequestIDHeader, reqID)

			if !enabled.Load() && slowQueriesThreshold == 0 && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}

			// the body can be read only once, hand a copy to the next handler
			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "reqID", reqID, "err", err)
					http.Error(w, "unreadable body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > 0 && duration > slowQueriesThreshold
			failed := log5xxErrors && sw.statusCode >= http.StatusInternalServerError
			if !enabled.Load() && !slow && !failed {
				return
			}
			if len(bodyBytes) > maxLoggedBody {
				bodyBytes = bodyBytes[:maxLoggedBody]
			}
			logger.Info("API Request",
				"reqID", reqID,
				"durationMs", duration.Milliseconds(),
				"URI", r.URL.String(),
				"method", r.Method,
				"status", sw.statusCode,
				"body", string(bodyBytes),
			)
		})
	}
}
