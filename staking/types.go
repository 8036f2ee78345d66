// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

// EventKind names what a committed pool operation did.
type EventKind string

const (
	EventStaked    EventKind = "staked"
	EventHarvested EventKind = "harvested"
	EventUnstaked  EventKind = "unstaked"
	EventFunded    EventKind = "funded"
)

// ParseEventKind accepts the names used on the wire.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventStaked, EventHarvested, EventUnstaked, EventFunded:
		return k, nil
	}
	return "", errors.Errorf("unknown event kind %q", s)
}

// Event is emitted by a committed operation.
//
// Amount is the staked, harvested or funded value. For unstaked events it is the total
// transferred, split into Principal and Reward.
type Event struct {
	Kind      EventKind      `json:"kind"`
	User      cactus.Address `json:"user"`
	Amount    amount.Amount  `json:"amount"`
	Principal amount.Amount  `json:"principal"`
	Reward    amount.Amount  `json:"reward"`
	Time      uint64         `json:"time"`
}

// EventSink stores committed events. Write is called once per outermost operation.
type EventSink interface {
	Write(ctx context.Context, events []*Event) error
}

// Receipt describes the effect of a completed operation on the caller.
type Receipt struct {
	User              cactus.Address `json:"user"`
	Time              uint64         `json:"time"`
	Staked            amount.Amount  `json:"staked"`
	RewardPaid        amount.Amount  `json:"rewardPaid"`
	PrincipalReturned amount.Amount  `json:"principalReturned"`
	Principal         amount.Amount  `json:"principal"` // after the operation
}

// UserDetails is a staker's record, with the reward accrued up to the time of the query.
type UserDetails struct {
	Principal       amount.Amount `json:"principal"`
	LastAccrualTime uint64        `json:"lastAccrualTime"`
	PendingReward   amount.Amount `json:"pendingReward"`
}

// Solvency compares what the pool owes with what it has taken in and holds.
type Solvency struct {
	Custody   amount.Amount `json:"custody"`
	Staked    amount.Amount `json:"staked"`
	PaidOut   amount.Amount `json:"paidOut"`   // principal returned plus reward paid
	TakenIn   amount.Amount `json:"takenIn"`   // deposits plus funded reserve
	Surplus   amount.Amount `json:"surplus"`   // custody minus staked, zero when short
	Shortfall amount.Amount `json:"shortfall"` // staked minus custody, zero when covered
	Reserve   amount.Amount `json:"reserve"`   // funded reserve not yet paid out as reward
	Healthy   bool          `json:"healthy"`
}
