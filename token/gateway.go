// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/metrics"
	"github.com/cactusfi/cactus/staking/reverts"
)

var (
	logger = log.WithContext("pkg", "token")

	metricTransfers       = metrics.LazyLoadCounterVec("token_transfers_count", []string{"direction", "result"})
	metricSolvencyBreach  = metrics.LazyLoadCounter("solvency_breach_count")
	metricTransferredToks = metrics.LazyLoadHistogramVec("token_transferred_tokens", []string{"direction"}, metrics.BucketTokens)
)

// Gateway moves tokens between users and the pool's custody account.
// It never retries; a failed transfer is reported as a revert.
type Gateway struct {
	ledger    Ledger
	custodian cactus.Address
}

func NewGateway(ledger Ledger, custodian cactus.Address) *Gateway {
	return &Gateway{ledger: ledger, custodian: custodian}
}

// Custodian returns the pool's own account.
func (g *Gateway) Custodian() cactus.Address {
	return g.custodian
}

// PullFrom moves value from user into custody using the allowance user granted the custodian.
func (g *Gateway) PullFrom(ctx context.Context, user cactus.Address, value amount.Amount) error {
	if value.IsZero() {
		return nil
	}
	if err := g.ledger.TransferFrom(ctx, g.custodian, user, g.custodian, value); err != nil {
		observe("in", "failed", value)
		return reverts.TransferFailed(err)
	}
	observe("in", "ok", value)
	return nil
}

// PushTo pays value out of custody to user.
// Custody short of value means the pool promised more than it holds.
func (g *Gateway) PushTo(ctx context.Context, user cactus.Address, value amount.Amount) error {
	if value.IsZero() {
		return nil
	}
	custody, err := g.Custody(ctx)
	if err != nil {
		observe("out", "failed", value)
		return reverts.TransferFailed(err)
	}
	if custody.Lt(value) {
		observe("out", "breach", value)
		metricSolvencyBreach().Add(1)
		logger.Error("custody cannot cover payout", "user", user, "amount", value, "custody", custody)
		return reverts.SolvencyBreach(errors.Wrapf(ErrInsufficientBalance, "custody %v, payout %v", custody, value))
	}
	if err := g.ledger.Transfer(ctx, g.custodian, user, value); err != nil {
		observe("out", "failed", value)
		return reverts.TransferFailed(err)
	}
	observe("out", "ok", value)
	return nil
}

// Custody returns the custodian's token balance.
func (g *Gateway) Custody(ctx context.Context) (amount.Amount, error) {
	bal, err := g.ledger.BalanceOf(ctx, g.custodian)
	if err != nil {
		return amount.Zero(), errors.WithMessage(err, "custody balance")
	}
	return bal, nil
}

func observe(direction, result string, value amount.Amount) {
	metricTransfers().AddWithLabel(1, map[string]string{"direction": direction, "result": result})
	if result == "ok" {
		metricTransferredToks().ObserveWithLabels(value.WholeTokens(), map[string]string{"direction": direction})
	}
}
