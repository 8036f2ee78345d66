// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

// Config is fixed for the lifetime of a pool.
type Config struct {
	Token             cactus.Address
	Custodian         cactus.Address // the pool's own account on the token ledger
	AnnualRatePercent uint64
	MinStake          amount.Amount // per Stake call
	MaxStake          amount.Amount // per Stake call
	MaxExposure       amount.Amount // cap on total staked principal, zero for none
}

// DefaultConfig returns the limits of the original deployment.
func DefaultConfig() Config {
	return Config{
		AnnualRatePercent: cactus.DefaultAnnualRatePercent,
		MinStake:          amount.Tokens(cactus.DefaultMinStakeTokens),
		MaxStake:          amount.Tokens(cactus.DefaultMaxStakeTokens),
	}
}

func (c *Config) Validate() error {
	if c.Custodian.IsZero() {
		return errors.New("custodian address required")
	}
	if c.MaxStake.IsZero() {
		return errors.New("max stake must be positive")
	}
	if c.MinStake.Gt(c.MaxStake) {
		return errors.Errorf("min stake %v above max stake %v", c.MinStake.Tokens(), c.MaxStake.Tokens())
	}
	if !c.MaxExposure.IsZero() && c.MaxExposure.Lt(c.MinStake) {
		return errors.Errorf("max exposure %v below min stake %v", c.MaxExposure.Tokens(), c.MinStake.Tokens())
	}
	return nil
}
