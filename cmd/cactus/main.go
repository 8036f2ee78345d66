// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cmd/cactus/solo"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/token"
	"github.com/cactusfi/cactus/token/kvtoken"
	"github.com/cactusfi/cactus/token/memtoken"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "cactus")
)

// tokenSymbol names the token ledger the node keeps itself.
const tokenSymbol = "CCT"

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	serveFlags := []cli.Flag{
		configFlag,
		dataDirFlag,
		dbEngineFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiEventsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		apiSubscriptionBacklogFlag,
		enableAPILogsFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		ntpCheckFlag,
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "Cactus",
		Usage:     "Single asset staking pool",
		Copyright: "2026 The Cactus developers",
		Flags:     serveFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "Cactus pool with dev accounts for test & dev",
				Flags:  append(serveFlags, persistFlag, soloBalanceFlag),
				Action: soloAction,
			},
			{
				Name:   "dump-config",
				Usage:  "print the effective pool configuration as YAML",
				Flags:  []cli.Flag{configFlag, dataDirFlag, dbEngineFlag},
				Action: dumpConfigAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	initMetrics(ctx)

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx, dataDir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithMessage(err, "config")
	}

	mainDB, err := openMainDB(cfg.DBEngine, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventLog, err := openEventLog(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event log..."); eventLog.Close() }()

	tok, err := kvtoken.New(mainDB, tokenSymbol)
	if err != nil {
		return err
	}
	if err := allocate(tok, cfg.Allocations); err != nil {
		return err
	}

	pool, err := staking.New(cfg.Staking(), mainDB, tok, staking.WithEventSink(eventLog))
	if err != nil {
		return err
	}
	defer pool.Close()

	return serve(exitSignal, ctx, &node{
		name:     "Cactus",
		cfg:      cfg,
		dataDir:  dataDir,
		logLevel: logLevel,
		pool:     pool,
		eventLog: eventLog,
		token:    tok,
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	initMetrics(ctx)

	cfg, err := loadConfig(ctx, "")
	if err != nil {
		return err
	}
	if cfg.Custodian.IsZero() {
		cfg.Custodian = solo.Custodian()
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithMessage(err, "config")
	}
	balance, err := amount.Parse(ctx.String(soloBalanceFlag.Name))
	if err != nil {
		return errors.WithMessagef(err, "--%s", soloBalanceFlag.Name)
	}

	var (
		instanceDir string
		mainDB      kv.StoreCloser
		tok         token.Issuer
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		if mainDB, err = openMainDB(cfg.DBEngine, instanceDir); err != nil {
			return err
		}
		if tok, err = kvtoken.New(mainDB, tokenSymbol); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = openMemMainDB(); err != nil {
			return err
		}
		tok = memtoken.New(tokenSymbol)
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventLog, err := openEventLog(instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event log..."); eventLog.Close() }()

	pool, err := staking.New(cfg.Staking(), mainDB, tok, staking.WithEventSink(eventLog))
	if err != nil {
		return err
	}
	defer pool.Close()
	if _, err := solo.Seed(exitSignal, tok, pool, solo.Options{Balance: balance, Reserve: cfg.RewardReserve.Amount}); err != nil {
		return err
	}

	return serve(exitSignal, ctx, &node{
		name:     "Cactus solo",
		cfg:      cfg,
		dataDir:  instanceDir,
		logLevel: logLevel,
		pool:     pool,
		eventLog: eventLog,
		token:    tok,
		solo:     true,
	})
}

func dumpConfigAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx, ctx.String(dataDirFlag.Name))
	if err != nil {
		return err
	}
	return cfg.Encode(os.Stdout)
}
