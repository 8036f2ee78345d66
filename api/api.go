// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/cactusfi/cactus/api/doc"
	"github.com/cactusfi/cactus/api/events"
	"github.com/cactusfi/cactus/api/middleware"
	"github.com/cactusfi/cactus/api/pool"
	"github.com/cactusfi/cactus/api/subscriptions"
	"github.com/cactusfi/cactus/api/tokens"
	"github.com/cactusfi/cactus/eventlog"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/token"
)

var logger = log.WithContext("pkg", "api")

const defaultEventsLimit = 1000

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	EventsLimit          uint64
	SubscriptionBacklog  int
	EnableMint           bool
}

// New return api router. eventLog and tok are optional: without an event log
// /events is not served, without a token /token is not.
func New(
	stakingPool *staking.Pool,
	eventLog *eventlog.EventLog,
	tok token.Issuer,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = new(atomic.Bool)
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = defaultEventsLimit
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/cactus.yaml", http.StatusTemporaryRedirect)
		})

	pool.New(stakingPool).
		Mount(router, "/pool")
	if eventLog != nil {
		events.New(eventLog, opts.EventsLimit).
			Mount(router, "/events")
	}
	if tok != nil {
		tokens.New(tok, opts.EnableMint).
			Mount(router, "/token")
	}
	subs := subscriptions.New(stakingPool, origins, opts.SubscriptionBacklog)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(middleware.Metrics)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{"x-cactus-ver", middleware.RequestIDHeader}),
	)(handler)
	handler = middleware.RequestLogger(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("x-cactus-ver", doc.Version())
		handler.ServeHTTP(w, req)
	}, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
