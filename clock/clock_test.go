// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	c := NewManual(1_000)
	assert.Equal(t, uint64(1_000), c.Now())
	assert.Equal(t, uint64(1_000+86400), c.Advance(24*time.Hour))
	c.Advance(-time.Hour)
	c.Advance(500 * time.Millisecond)
	assert.Equal(t, uint64(1_000+86400), c.Now())
	c.Set(10)
	assert.Equal(t, uint64(10), c.Now())
}

func TestSystem(t *testing.T) {
	before := uint64(time.Now().Unix())
	now := System().Now()
	assert.GreaterOrEqual(t, now, before)
	assert.LessOrEqual(t, now, uint64(time.Now().Unix()))
}

func TestCheckOffset(t *testing.T) {
	respond := func(offset time.Duration) queryFunc {
		return func(string) (*ntp.Response, error) {
			return &ntp.Response{ClockOffset: offset}, nil
		}
	}

	_, drifted := checkOffset("x", respond(time.Second))
	assert.False(t, drifted)

	off, drifted := checkOffset("x", respond(-10*time.Second))
	assert.True(t, drifted)
	assert.Equal(t, -10*time.Second, off)

	_, drifted = checkOffset("x", func(string) (*ntp.Response, error) {
		return nil, errors.New("unreachable")
	})
	assert.False(t, drifted)
}
