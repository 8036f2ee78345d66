// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/config"
	"github.com/cactusfi/cactus/token/memtoken"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{configFlag, dataDirFlag, dbEngineFlag} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(newContext(t), dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	custodian := "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("custodian: "+custodian+"\ndb-engine: bolt\n"), 0o600))

	cfg, err = loadConfig(newContext(t), dir)
	require.NoError(t, err)
	assert.Equal(t, cactus.MustParseAddress(custodian), cfg.Custodian)
	assert.Equal(t, config.EngineBolt, cfg.DBEngine)

	cfg, err = loadConfig(newContext(t, "--db-engine", "leveldb"), dir)
	require.NoError(t, err)
	assert.Equal(t, config.EngineLevelDB, cfg.DBEngine)

	_, err = loadConfig(newContext(t, "--config", filepath.Join(dir, "missing.yaml")), dir)
	assert.Error(t, err)
}

func TestOpenStores(t *testing.T) {
	dir := t.TempDir()
	for _, engine := range []string{config.EngineLevelDB, config.EngineBolt} {
		db, err := openMainDB(engine, dir)
		require.NoError(t, err, engine)
		require.NoError(t, db.Put([]byte("k"), []byte("v")))
		require.NoError(t, db.Close())
	}
	assert.FileExists(t, filepath.Join(dir, "main.bolt"))
	assert.DirExists(t, filepath.Join(dir, "main.db"))

	events, err := openEventLog(dir)
	require.NoError(t, err)
	require.NoError(t, events.Close())
	assert.FileExists(t, filepath.Join(dir, "events.db"))

	events, err = openEventLog("Memory")
	require.NoError(t, err)
	require.NoError(t, events.Close())
}

func TestAllocate(t *testing.T) {
	tok := memtoken.New(tokenSymbol)
	allocs := []config.Allocation{
		{Address: cactus.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), Amount: config.Tokens{Amount: amount.Tokens(5)}},
		{Address: cactus.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"), Amount: config.Tokens{Amount: amount.Tokens(7)}},
	}
	require.NoError(t, allocate(tok, allocs))
	assert.Equal(t, amount.Tokens(12), tok.TotalSupply())

	// a ledger with supply was allocated on an earlier run
	require.NoError(t, allocate(tok, allocs))
	assert.Equal(t, amount.Tokens(12), tok.TotalSupply())
}
