// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock supplies the unix time used to settle rewards.
package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/cactusfi/cactus/log"
)

var logger = log.WithContext("pkg", "clock")

// Clock returns the current unix time in seconds.
type Clock interface {
	Now() uint64
}

type system struct{}

// System returns the wall clock.
func System() Clock { return system{} }

func (system) Now() uint64 { return uint64(time.Now().Unix()) }

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual creates a manual clock starting at now.
func NewManual(now uint64) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, truncated to whole seconds.
func (m *Manual) Advance(d time.Duration) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now += uint64(d / time.Second)
	}
	return m.now
}

// Set moves the clock to t. Going backwards is allowed so tests can exercise clamping.
func (m *Manual) Set(t uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// MaxOffset is the local clock drift tolerated before a warning is logged.
const MaxOffset = 5 * time.Second

type queryFunc func(host string) (*ntp.Response, error)

// CheckOffset asks an NTP server for the local clock offset and warns when it exceeds MaxOffset.
// Failures to reach the server are logged and reported as no drift.
func CheckOffset(host string) (offset time.Duration, drifted bool) {
	return checkOffset(host, ntp.Query)
}

func checkOffset(host string, query queryFunc) (time.Duration, bool) {
	resp, err := query(host)
	if err != nil {
		logger.Debug("failed to access NTP", "host", host, "err", err)
		return 0, false
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > MaxOffset {
		logger.Warn("clock offset detected, rewards are settled on local time", "offset", common.PrettyDuration(resp.ClockOffset))
		return resp.ClockOffset, true
	}
	return resp.ClockOffset, false
}
