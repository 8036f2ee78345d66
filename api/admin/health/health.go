// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cactusfi/cactus/staking"
)

type ClockStatus struct {
	Checked   bool   `json:"checked"`
	Offset    string `json:"offset"`
	Drifted   bool   `json:"drifted"`
	CheckedAt *int64 `json:"checkedAt"`
}

type Status struct {
	Healthy  bool              `json:"healthy"`
	Solvency *staking.Solvency `json:"solvency"`
	Clock    ClockStatus       `json:"clock"`
}

// Health reports whether the pool can pay what it owes and whether the local
// clock, which drives reward accrual, agreed with NTP at the last check.
type Health struct {
	pool *staking.Pool

	lock      sync.RWMutex
	checked   bool
	offset    time.Duration
	drifted   bool
	checkedAt time.Time
}

func New(pool *staking.Pool) *Health {
	return &Health{pool: pool}
}

// ClockChecked records the result of a clock offset check.
func (h *Health) ClockChecked(offset time.Duration, drifted bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.checked = true
	h.offset = offset
	h.drifted = drifted
	h.checkedAt = time.Now()
}

func (h *Health) Status(ctx context.Context) (*Status, error) {
	solvency, err := h.pool.Solvency(ctx)
	if err != nil {
		return nil, err
	}

	h.lock.RLock()
	defer h.lock.RUnlock()

	clock := ClockStatus{
		Checked: h.checked,
		Offset:  common.PrettyDuration(h.offset).String(),
		Drifted: h.drifted,
	}
	if h.checked {
		at := h.checkedAt.Unix()
		clock.CheckedAt = &at
	}
	return &Status{
		Healthy:  solvency.Healthy && !h.drifted,
		Solvency: solvency,
		Clock:    clock,
	}, nil
}
