// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the pool configuration from YAML.
//
// Amounts are written as decimal token strings:
//
//	token: 0x0000000000000000000000000000456e65726779
//	custodian: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
//	annual-rate-percent: 300
//	min-stake: "200"
//	max-stake: "50000000"
//	max-exposure: "0"
//	reward-reserve: "3000000"
//	db-engine: leveldb
//	allocations:
//	  - address: 0xf077b491b355e64048ce21e3a6fc4751eeea77fa
//	    amount: "1000000"
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/staking"
)

const (
	EngineLevelDB = "leveldb"
	EngineBolt    = "bolt"
)

// Tokens is an amount written in whole tokens, e.g. "200" or "0.5".
type Tokens struct {
	amount.Amount
}

func (t Tokens) MarshalYAML() (any, error) {
	return t.Tokens(), nil
}

func (t *Tokens) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: amount must be a scalar", node.Line)
	}
	v, err := amount.Parse(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	t.Amount = v
	return nil
}

// Allocation credits address with amount when a fresh token ledger is created.
type Allocation struct {
	Address cactus.Address `yaml:"address"`
	Amount  Tokens         `yaml:"amount"`
}

type Config struct {
	Token             cactus.Address `yaml:"token"`
	Custodian         cactus.Address `yaml:"custodian"`
	AnnualRatePercent uint64         `yaml:"annual-rate-percent"`
	MinStake          Tokens         `yaml:"min-stake"`
	MaxStake          Tokens         `yaml:"max-stake"`
	MaxExposure       Tokens         `yaml:"max-exposure"`
	// RewardReserve is funded into the pool at startup in solo mode.
	RewardReserve Tokens       `yaml:"reward-reserve"`
	DBEngine      string       `yaml:"db-engine"`
	Allocations   []Allocation `yaml:"allocations,omitempty"`
}

// Default mirrors the original deployment: 300% a year, stakes between 200 and
// 50,000,000 tokens, with a 3,000,000 token reward reserve.
func Default() Config {
	cfg := staking.DefaultConfig()
	return Config{
		AnnualRatePercent: cfg.AnnualRatePercent,
		MinStake:          Tokens{cfg.MinStake},
		MaxStake:          Tokens{cfg.MaxStake},
		MaxExposure:       Tokens{cfg.MaxExposure},
		RewardReserve:     Tokens{amount.Tokens(3_000_000)},
		DBEngine:          EngineLevelDB,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.WithMessagef(err, "config %v", path)
	}
	return cfg, nil
}

// Decode reads a YAML document over the defaults. An empty document yields the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func (c Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Staking returns the pool part of c.
func (c Config) Staking() staking.Config {
	return staking.Config{
		Token:             c.Token,
		Custodian:         c.Custodian,
		AnnualRatePercent: c.AnnualRatePercent,
		MinStake:          c.MinStake.Amount,
		MaxStake:          c.MaxStake.Amount,
		MaxExposure:       c.MaxExposure.Amount,
	}
}

func (c Config) Validate() error {
	switch c.DBEngine {
	case EngineLevelDB, EngineBolt:
	default:
		return errors.Errorf("unknown db engine %q, want %v or %v", c.DBEngine, EngineLevelDB, EngineBolt)
	}
	for i, a := range c.Allocations {
		if a.Address.IsZero() {
			return errors.Errorf("allocation %d: address required", i)
		}
	}
	cfg := c.Staking()
	return cfg.Validate()
}
