// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

const custodian = "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint64(300), cfg.AnnualRatePercent)
	assert.Equal(t, amount.Tokens(200), cfg.MinStake.Amount)
	assert.Equal(t, amount.Tokens(50_000_000), cfg.MaxStake.Amount)
	assert.Equal(t, EngineLevelDB, cfg.DBEngine)

	// a custodian has to be configured
	assert.Error(t, cfg.Validate())
	cfg.Custodian = cactus.MustParseAddress(custodian)
	assert.NoError(t, cfg.Validate())
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
custodian: ` + custodian + `
annual-rate-percent: 120
min-stake: "0.5"
max-stake: 1000
db-engine: bolt
allocations:
  - address: ` + custodian + `
    amount: "12.5"
`))
	require.NoError(t, err)
	assert.Equal(t, cactus.MustParseAddress(custodian), cfg.Custodian)
	assert.Equal(t, uint64(120), cfg.AnnualRatePercent)
	assert.Equal(t, amount.MustParse("0.5"), cfg.MinStake.Amount)
	assert.Equal(t, amount.Tokens(1000), cfg.MaxStake.Amount)
	// untouched keys keep their defaults
	assert.Equal(t, amount.Tokens(3_000_000), cfg.RewardReserve.Amount)
	assert.Equal(t, EngineBolt, cfg.DBEngine)
	require.Len(t, cfg.Allocations, 1)
	assert.Equal(t, cfg.Custodian, cfg.Allocations[0].Address)
	assert.Equal(t, amount.MustParse("12.5"), cfg.Allocations[0].Amount.Amount)
	assert.NoError(t, cfg.Validate())

	staking := cfg.Staking()
	assert.Equal(t, cfg.MinStake.Amount, staking.MinStake)
	assert.Equal(t, cfg.Custodian, staking.Custodian)
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     "rate: 3",
		"bad amount":      `min-stake: "1.2.3"`,
		"too many digits": `min-stake: "0.0000000000000000001"`,
		"bad address":     "custodian: 0x12",
		"non scalar":      "max-stake: [1, 2]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Custodian = cactus.MustParseAddress(custodian)

	cfg.DBEngine = "rocksdb"
	assert.ErrorContains(t, cfg.Validate(), "unknown db engine")

	cfg.DBEngine = EngineBolt
	cfg.Allocations = []Allocation{{Amount: Tokens{amount.Tokens(1)}}}
	assert.ErrorContains(t, cfg.Validate(), "allocation 0")

	cfg.Allocations = nil
	cfg.MinStake = Tokens{amount.Tokens(100)}
	cfg.MaxStake = Tokens{amount.Tokens(10)}
	assert.Error(t, cfg.Validate())
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Custodian = cactus.MustParseAddress(custodian)
	cfg.MinStake = Tokens{amount.MustParse("0.25")}

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "min-stake: \"0.25\"")
	assert.Contains(t, buf.String(), custodian)

	path := filepath.Join(t.TempDir(), "cactus.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
