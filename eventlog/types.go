// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/staking"
)

// Record is a stored pool event with its position in the log.
type Record struct {
	Seq uint64 `json:"seq"`
	staking.Event
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range of unix seconds. A To before From means no upper bound.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Nil or empty fields match everything.
type Filter struct {
	User    *cactus.Address
	Kinds   []staking.EventKind
	Range   *Range
	Order   Order
	Options *Options
}
