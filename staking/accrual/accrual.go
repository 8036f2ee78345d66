// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual computes simple-interest staking reward. It holds no state.
package accrual

import (
	"github.com/holiman/uint256"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

// Rate is a fixed annual reward rate.
type Rate struct {
	AnnualPercent  uint64 // 300 means 300% per year
	SecondsPerYear uint64
}

// NewRate returns the rate with the standard year length.
func NewRate(annualPercent uint64) Rate {
	return Rate{
		AnnualPercent:  annualPercent,
		SecondsPerYear: cactus.SecondsPerYear,
	}
}

// Reward returns the reward earned by principal over elapsed seconds.
func (r Rate) Reward(principal amount.Amount, elapsed uint64) (amount.Amount, error) {
	return Compute(principal, r.AnnualPercent, elapsed, r.SecondsPerYear)
}

// Compute returns principal * rateAnnualPercent * elapsedSeconds / (100 * secondsPerYear),
// truncated toward zero.
func Compute(principal amount.Amount, rateAnnualPercent, elapsedSeconds, secondsPerYear uint64) (amount.Amount, error) {
	if principal.IsZero() || rateAnnualPercent == 0 || elapsedSeconds == 0 {
		return amount.Zero(), nil
	}
	// both factors fit 128 bits, so num and den never overflow 256 bits
	var num, den uint256.Int
	num.Mul(uint256.NewInt(rateAnnualPercent), uint256.NewInt(elapsedSeconds))
	den.Mul(uint256.NewInt(100), uint256.NewInt(secondsPerYear))

	return principal.MulDiv(&num, &den)
}

// Elapsed returns to - from, or 0 when to is not after from.
func Elapsed(from, to uint64) uint64 {
	if to <= from {
		return 0
	}
	return to - from
}
