// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/cactusfi/cactus/api"
	"github.com/cactusfi/cactus/api/admin"
	"github.com/cactusfi/cactus/api/admin/health"
	"github.com/cactusfi/cactus/boltdb"
	"github.com/cactusfi/cactus/clock"
	"github.com/cactusfi/cactus/cmd/cactus/solo"
	"github.com/cactusfi/cactus/co"
	"github.com/cactusfi/cactus/config"
	"github.com/cactusfi/cactus/eventlog"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/lvldb"
	"github.com/cactusfi/cactus/metrics"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/token"
)

const (
	ntpHost          = "pool.ntp.org"
	ntpCheckInterval = 10 * time.Minute
	shutdownTimeout  = 5 * time.Second
)

// node is everything serve needs from an action.
type node struct {
	name     string
	cfg      config.Config
	dataDir  string
	logLevel *slog.LevelVar
	pool     *staking.Pool
	eventLog *eventlog.EventLog
	token    token.Issuer
	solo     bool
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	lvl := new(slog.LevelVar)
	lvl.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl
}

// initMetrics must run before any pool or API meter is first touched.
func initMetrics(ctx *cli.Context) {
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".org.cactusfi.cactus")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// loadConfig reads --config, else dataDir/config.yaml when it exists, else the
// defaults. Flags override the file.
func loadConfig(ctx *cli.Context, dataDir string) (config.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" && dataDir != "" {
		candidate := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
		logger.Debug("loaded config", "path", path)
	}
	if engine := ctx.String(dbEngineFlag.Name); engine != "" {
		cfg.DBEngine = engine
	}
	return cfg, nil
}

func openMainDB(engine, dataDir string) (kv.StoreCloser, error) {
	switch engine {
	case config.EngineBolt:
		path := filepath.Join(dataDir, "main.bolt")
		db, err := boltdb.New(path)
		if err != nil {
			return nil, errors.WithMessagef(err, "open main database [%v]", path)
		}
		return db, nil
	default:
		fdCache := suggestFDCache()
		logger.Debug("fd cache", "n", fdCache)

		path := filepath.Join(dataDir, "main.db")
		db, err := lvldb.New(path, lvldb.Options{
			CacheSize:              64,
			OpenFilesCacheCapacity: fdCache,
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "open main database [%v]", path)
		}
		return db, nil
	}
}

func openMemMainDB() (kv.StoreCloser, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.WithMessage(err, "open main database")
	}
	return db, nil
}

// openEventLog opens the sqlite event index in dataDir, or in RAM for the "Memory" instance.
func openEventLog(dataDir string) (*eventlog.EventLog, error) {
	if dataDir == "Memory" {
		return eventlog.NewMem()
	}
	path := filepath.Join(dataDir, "events.db")
	db, err := eventlog.New(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "open event log [%v]", path)
	}
	return db, nil
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 0
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// allocate mints the configured allocations into a token ledger that has no supply yet.
func allocate(tok token.Issuer, allocs []config.Allocation) error {
	if !tok.TotalSupply().IsZero() {
		return nil
	}
	for _, a := range allocs {
		if err := tok.Mint(a.Address, a.Amount.Amount); err != nil {
			return errors.WithMessagef(err, "allocate %v", a.Address)
		}
		logger.Info("allocated", "address", a.Address, "amount", a.Amount.Tokens())
	}
	return nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// checkClock reports the NTP offset to h until ctx is done.
func checkClock(ctx context.Context, h *health.Health) {
	ticker := time.NewTicker(ntpCheckInterval)
	defer ticker.Stop()
	for {
		h.ClockChecked(clock.CheckOffset(ntpHost))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// serve runs the API, and the metrics and admin servers when enabled, until
// exitSignal fires or a server fails.
func serve(exitSignal context.Context, ctx *cli.Context, n *node) error {
	var metricsURL, adminURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	apiLogs := new(atomic.Bool)
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	h := health.New(n.pool)

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), n.logLevel, apiLogs, h)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	handler, closeAPI := api.New(n.pool, n.eventLog, n.token, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		SubscriptionBacklog:  ctx.Int(apiSubscriptionBacklogFlag.Name),
		EnableMint:           n.solo,
	})
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}

	g, gctx := errgroup.WithContext(exitSignal)
	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		// websocket conns are hijacked, Shutdown does not see them
		closeAPI()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if ctx.Bool(ntpCheckFlag.Name) {
		g.Go(func() error {
			checkClock(gctx, h)
			return nil
		})
	}

	printStartupMessage(n, "http://"+listener.Addr().String()+"/", metricsURL, adminURL)
	return g.Wait()
}

func printStartupMessage(n *node, apiURL, metricsURL, adminURL string) {
	orNone := func(s string) string {
		if s == "" {
			return "disabled"
		}
		return s
	}

	info := fmt.Sprintf(`Starting %v %v
    Custodian   [ %v ]
    Rate        [ %v%% a year ]
    Stake       [ %v .. %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		n.name, fullVersion(),
		n.cfg.Custodian,
		n.cfg.AnnualRatePercent,
		n.cfg.MinStake.Tokens(), n.cfg.MaxStake.Tokens(),
		n.dataDir,
		apiURL,
		orNone(metricsURL),
		orNone(adminURL))

	if n.solo {
		var b strings.Builder
		b.WriteString(`┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`)
		for _, a := range solo.DevAccounts() {
			fmt.Fprintf(&b, `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`, a.Address, hexutil.Encode(crypto.FromECDSA(a.PrivateKey)))
		}
		b.WriteString(`
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘
`)
		info += b.String()
	}
	fmt.Print(info)
}
