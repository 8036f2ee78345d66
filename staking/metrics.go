// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"

	"github.com/cactusfi/cactus/metrics"
	"github.com/cactusfi/cactus/staking/reverts"
)

var (
	metricOps          = metrics.LazyLoadCounterVec("pool_ops_count", []string{"op", "result"})
	metricReentrant    = metrics.LazyLoadCounterVec("pool_reentrant_ops_count", []string{"op"})
	metricStakers      = metrics.LazyLoadGauge("pool_active_stakers")
	metricStakedTokens = metrics.LazyLoadGauge("pool_staked_tokens")
	metricSinkFailures = metrics.LazyLoadCounter("pool_event_sink_failures_count")
	metricReserveShort = metrics.LazyLoadCounterVec("pool_reward_reserve_short_count", []string{"op"})
)

func opResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case reverts.IsSolvencyBreach(err):
		return "solvency_breach"
	case errors.Is(err, reverts.ErrTransferFailed):
		return "transfer_failed"
	case reverts.IsRevertErr(err):
		return "reverted"
	default:
		return "error"
	}
}
