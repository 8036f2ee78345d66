// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements a single asset staking pool paying a fixed annual reward.
package staking

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/clock"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/staking/accrual"
	"github.com/cactusfi/cactus/staking/ledger"
	"github.com/cactusfi/cactus/staking/reverts"
	"github.com/cactusfi/cactus/token"
)

var logger = log.WithContext("pkg", "staking")

// Pool is safe for concurrent use. Operations are serialized by a single lock;
// a token hook may call back into the pool with the context it was given.
type Pool struct {
	cfg     Config
	mu      sync.Mutex
	ledger  *ledger.Ledger
	gateway *token.Gateway
	clock   clock.Clock
	sink    EventSink
	feed    event.Feed
	pub     *publisher
}

// Option customizes a Pool.
type Option func(*Pool)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(p *Pool) { p.clock = c }
}

// WithEventSink stores committed events in s.
func WithEventSink(s EventSink) Option {
	return func(p *Pool) { p.sink = s }
}

// New creates a pool keeping its ledger in store and moving tokens through tokens.
func New(cfg Config, store kv.Store, tokens token.Ledger, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "pool config")
	}
	p := &Pool{
		cfg:     cfg,
		ledger:  ledger.New(store, accrual.NewRate(cfg.AnnualRatePercent)),
		gateway: token.NewGateway(tokens, cfg.Custodian),
		clock:   clock.System(),
	}
	for _, o := range opts {
		o(p)
	}
	p.pub = newPublisher(&p.feed)

	active := int64(0)
	if err := p.ledger.Stakers(func(_ cactus.Address, r ledger.Record) bool {
		if !r.Principal.IsZero() {
			active++
		}
		return true
	}); err != nil {
		return nil, errors.WithMessage(err, "count stakers")
	}
	metricStakers().Set(active)
	if totals, err := p.ledger.Totals(); err == nil {
		metricStakedTokens().Set(totals.Staked.WholeTokens())
	}
	return p, nil
}

// Config returns the pool's configuration.
func (p *Pool) Config() Config {
	return p.cfg
}

// Subscribe delivers every committed event to ch, in commit order.
// Delivery is asynchronous and the receiver may call back into the pool. A subscriber
// that stops draining ch holds up delivery to all the others.
func (p *Pool) Subscribe(ch chan<- *Event) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Close stops event delivery. The pool keeps serving operations.
func (p *Pool) Close() {
	p.pub.close()
}

func (p *Pool) afterCommit(ctx context.Context, f *frame) {
	if f.stakersDelta != 0 {
		metricStakers().Add(f.stakersDelta)
	}
	if totals, err := p.ledger.Totals(); err == nil {
		metricStakedTokens().Set(totals.Staked.WholeTokens())
	}
	if len(f.events) == 0 {
		return
	}
	if p.sink != nil {
		// the ledger is authoritative; a lost index entry does not undo the operation
		if err := p.sink.Write(context.WithoutCancel(ctx), f.events); err != nil {
			metricSinkFailures().Add(1)
			logger.Error("failed to store events", "count", len(f.events), "err", err)
		}
	}
}

// Stake deposits value for user. A user already staking adds to the principal,
// after the reward earned so far is locked in.
func (p *Pool) Stake(ctx context.Context, user cactus.Address, value amount.Amount) (*Receipt, error) {
	logger.Debug("staking", "user", user, "amount", value.Tokens())

	var receipt *Receipt
	err := p.run(ctx, "stake", func(ctx context.Context, f *frame) error {
		if value.Lt(p.cfg.MinStake) {
			return reverts.ErrBelowMinimum
		}
		if value.Gt(p.cfg.MaxStake) {
			return reverts.ErrAboveMaximum
		}
		if !p.cfg.MaxExposure.IsZero() {
			totals, err := p.ledger.Totals()
			if err != nil {
				return err
			}
			after, err := totals.Staked.Add(value)
			if err != nil || after.Gt(p.cfg.MaxExposure) {
				return reverts.ErrExposureExceeded
			}
		}

		before, err := p.ledger.Get(user)
		if err != nil {
			return err
		}
		if err := p.ledger.IncreasePrincipal(user, value, f.now); err != nil {
			return err
		}
		if err := p.gateway.PullFrom(ctx, user, value); err != nil {
			return err
		}
		if before.Principal.IsZero() && !value.IsZero() {
			f.stakersDelta++
		}

		rec, err := p.ledger.Get(user)
		if err != nil {
			return err
		}
		f.emit(&Event{Kind: EventStaked, User: user, Amount: value})
		receipt = &Receipt{User: user, Time: f.now, Staked: value, Principal: rec.Principal}
		return nil
	})
	if err != nil {
		logger.Info("stake failed", "user", user, "amount", value.Tokens(), "error", err)
		return nil, err
	}
	logger.Info("staked", "user", user, "amount", value.Tokens())
	return receipt, nil
}

// Harvest pays user the reward accrued so far and leaves the principal staked.
// It fails with a solvency breach when the funded reserve cannot cover the reward.
func (p *Pool) Harvest(ctx context.Context, user cactus.Address) (*Receipt, error) {
	logger.Debug("harvesting", "user", user)

	var receipt *Receipt
	err := p.run(ctx, "harvest", func(ctx context.Context, f *frame) error {
		if _, err := p.ledger.Settle(user, f.now); err != nil {
			return err
		}
		reserve, err := p.ledger.RewardReserve()
		if err != nil {
			return err
		}
		reward, err := p.ledger.ClearUnpaidReward(user)
		if err != nil {
			return err
		}
		if reward.IsZero() {
			return reverts.ErrNothingToHarvest
		}
		if reserve.Lt(reward) {
			metricReserveShort().AddWithLabel(1, map[string]string{"op": "harvest"})
			logger.Error("reward reserve cannot cover harvest", "user", user, "reward", reward.Tokens(), "reserve", reserve.Tokens())
			return reverts.SolvencyBreach(errors.Errorf("reward reserve %v, reward %v", reserve.Tokens(), reward.Tokens()))
		}
		// effects are in the journal before tokens leave
		if err := p.gateway.PushTo(ctx, user, reward); err != nil {
			return err
		}

		rec, err := p.ledger.Get(user)
		if err != nil {
			return err
		}
		f.emit(&Event{Kind: EventHarvested, User: user, Amount: reward, Reward: reward})
		receipt = &Receipt{User: user, Time: f.now, RewardPaid: reward, Principal: rec.Principal}
		return nil
	})
	if err != nil {
		logger.Info("harvest failed", "user", user, "error", err)
		return nil, err
	}
	logger.Info("harvested", "user", user, "reward", receipt.RewardPaid.Tokens())
	return receipt, nil
}

// Unstake returns user's principal together with all outstanding reward in a single transfer.
// Reward is paid from the funded reserve only; when the reserve falls short the principal
// still goes back and the unpaid part stays owed to user, to be harvested once the pool is funded.
func (p *Pool) Unstake(ctx context.Context, user cactus.Address) (*Receipt, error) {
	logger.Debug("unstaking", "user", user)

	var receipt *Receipt
	err := p.run(ctx, "unstake", func(ctx context.Context, f *frame) error {
		if _, err := p.ledger.Settle(user, f.now); err != nil {
			return err
		}
		reserve, err := p.ledger.RewardReserve()
		if err != nil {
			return err
		}
		owed, err := p.ledger.Outstanding(user, f.now)
		if err != nil {
			return err
		}
		// principal always goes back; reward only as far as the reserve reaches, the rest stays owed
		reward, err := p.ledger.ClearUnpaidRewardUpTo(user, reserve)
		if err != nil {
			return err
		}
		principal, err := p.ledger.ZeroOut(user)
		if err != nil {
			return err
		}
		if principal.IsZero() {
			return reverts.ErrNothingStaked
		}
		total, err := principal.Add(reward)
		if err != nil {
			return err
		}
		if err := p.gateway.PushTo(ctx, user, total); err != nil {
			return err
		}
		f.stakersDelta--
		if reward.Lt(owed) {
			metricReserveShort().AddWithLabel(1, map[string]string{"op": "unstake"})
			logger.Error("reward reserve short at unstake, reward left owed", "user", user, "owed", owed.Tokens(), "paid", reward.Tokens())
		}

		f.emit(&Event{Kind: EventUnstaked, User: user, Amount: total, Principal: principal, Reward: reward})
		receipt = &Receipt{User: user, Time: f.now, RewardPaid: reward, PrincipalReturned: principal}
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "user", user, "error", err)
		return nil, err
	}
	logger.Info("unstaked", "user", user, "principal", receipt.PrincipalReturned.Tokens(), "reward", receipt.RewardPaid.Tokens())
	return receipt, nil
}

// Fund pulls value from from into custody as reward reserve.
func (p *Pool) Fund(ctx context.Context, from cactus.Address, value amount.Amount) error {
	err := p.run(ctx, "fund", func(ctx context.Context, f *frame) error {
		if value.IsZero() {
			return reverts.ErrBelowMinimum
		}
		if err := p.ledger.AddFunded(value); err != nil {
			return err
		}
		if err := p.gateway.PullFrom(ctx, from, value); err != nil {
			return err
		}
		f.emit(&Event{Kind: EventFunded, User: from, Amount: value})
		return nil
	})
	if err != nil {
		logger.Info("fund failed", "from", from, "amount", value.Tokens(), "error", err)
		return err
	}
	logger.Info("funded", "from", from, "amount", value.Tokens())
	return nil
}

// GetRewards returns the reward user could harvest now.
func (p *Pool) GetRewards(ctx context.Context, user cactus.Address) (amount.Amount, error) {
	var out amount.Amount
	err := p.view(ctx, func(now uint64) (err error) {
		out, err = p.ledger.Outstanding(user, now)
		return err
	})
	return out, err
}

// GetUserDetails returns user's principal, last settlement time and the reward it could harvest now.
// An unknown user has a zero record.
func (p *Pool) GetUserDetails(ctx context.Context, user cactus.Address) (*UserDetails, error) {
	var details *UserDetails
	err := p.view(ctx, func(now uint64) error {
		rec, err := p.ledger.Get(user)
		if err != nil {
			return err
		}
		pending, err := p.ledger.Outstanding(user, now)
		if err != nil {
			return err
		}
		details = &UserDetails{
			Principal:       rec.Principal,
			LastAccrualTime: rec.LastAccrualTime,
			PendingReward:   pending,
		}
		return nil
	})
	return details, err
}

// Totals returns the pool wide sums.
func (p *Pool) Totals(ctx context.Context) (ledger.Totals, error) {
	var totals ledger.Totals
	err := p.view(ctx, func(uint64) (err error) {
		totals, err = p.ledger.Totals()
		return err
	})
	return totals, err
}

// Solvency reports whether custody covers staked principal and payouts stayed within intake.
// Reward accrued but not yet settled is not counted.
func (p *Pool) Solvency(ctx context.Context) (*Solvency, error) {
	var s *Solvency
	err := p.view(ctx, func(uint64) error {
		totals, err := p.ledger.Totals()
		if err != nil {
			return err
		}
		custody, err := p.gateway.Custody(ctx)
		if err != nil {
			return err
		}
		paidOut, err := totals.PrincipalReturned.Add(totals.RewardPaid)
		if err != nil {
			return err
		}
		takenIn, err := totals.Deposited.Add(totals.Funded)
		if err != nil {
			return err
		}
		reserve, err := p.ledger.RewardReserve()
		if err != nil {
			return err
		}
		s = &Solvency{
			Custody: custody,
			Staked:  totals.Staked,
			PaidOut: paidOut,
			TakenIn: takenIn,
			Reserve: reserve,
		}
		if custody.Lt(totals.Staked) {
			s.Shortfall, _ = totals.Staked.Sub(custody)
		} else {
			s.Surplus, _ = custody.Sub(totals.Staked)
		}
		s.Healthy = s.Shortfall.IsZero() && !paidOut.Gt(takenIn)
		return nil
	})
	return s, err
}

// Stakers lists users with a non-zero principal, in address order.
func (p *Pool) Stakers(ctx context.Context, offset, limit int) ([]cactus.Address, error) {
	var out []cactus.Address
	err := p.view(ctx, func(uint64) error {
		skipped := 0
		return p.ledger.Stakers(func(user cactus.Address, r ledger.Record) bool {
			if r.Principal.IsZero() {
				return true
			}
			if skipped < offset {
				skipped++
				return true
			}
			out = append(out, user)
			return limit <= 0 || len(out) < limit
		})
	})
	return out, err
}
