// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/staking/ledger"
)

// AmountRequest carries a decimal token amount, e.g. {"amount":"200"}.
type AmountRequest struct {
	Amount string `json:"amount"`
}

// FundRequest moves reserve from From into the pool.
type FundRequest struct {
	From   cactus.Address `json:"from"`
	Amount string         `json:"amount"`
}

type Config struct {
	Token             cactus.Address `json:"token"`
	Custodian         cactus.Address `json:"custodian"`
	AnnualRatePercent uint64         `json:"annualRatePercent"`
	MinStake          amount.Amount  `json:"minStake"`
	MaxStake          amount.Amount  `json:"maxStake"`
	MaxExposure       amount.Amount  `json:"maxExposure"`
}

type Totals struct {
	Staked            amount.Amount `json:"staked"`
	Deposited         amount.Amount `json:"deposited"`
	Funded            amount.Amount `json:"funded"`
	RewardPaid        amount.Amount `json:"rewardPaid"`
	PrincipalReturned amount.Amount `json:"principalReturned"`
}

// PoolView is the response of GET /pool.
type PoolView struct {
	Config   Config            `json:"config"`
	Totals   Totals            `json:"totals"`
	Solvency *staking.Solvency `json:"solvency"`
}

type Staker struct {
	Address cactus.Address `json:"address"`
	*staking.UserDetails
}

type Rewards struct {
	Address cactus.Address `json:"address"`
	Rewards amount.Amount  `json:"rewards"`
}

func convertConfig(c staking.Config) Config {
	return Config{
		Token:             c.Token,
		Custodian:         c.Custodian,
		AnnualRatePercent: c.AnnualRatePercent,
		MinStake:          c.MinStake,
		MaxStake:          c.MaxStake,
		MaxExposure:       c.MaxExposure,
	}
}

func convertTotals(t ledger.Totals) Totals {
	return Totals(t)
}
