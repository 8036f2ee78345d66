// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cactus

// Constants of the staking pool.
const (
	SecondsPerYear uint64 = 365 * 24 * 60 * 60 // fixed year length used by reward accrual, leap years ignored

	TokenDecimals = 18 // decimal scale of the staked token (wei-like base units)

	DefaultAnnualRatePercent uint64 = 300 // 300% per year, simple interest

	// whole-token bounds of a single stake call, as deployed
	DefaultMinStakeTokens uint64 = 200
	DefaultMaxStakeTokens uint64 = 50_000_000
)
