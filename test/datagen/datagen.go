// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random fixtures for tests.
package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

func RandAddress() (addr cactus.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []cactus.Address {
	out := make([]cactus.Address, n)
	for i := range out {
		out[i] = RandAddress()
	}
	return out
}

// RandTokens returns a whole token amount in [min, max].
func RandTokens(min, max uint64) amount.Amount {
	return amount.Tokens(min + mathrand.Uint64N(max-min+1)) //#nosec G404
}
