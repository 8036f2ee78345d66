// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cactus_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/cactus"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"with prefix", "0xDC20F6830620F00D3d8FF6fC64D8BbfA83F0d652", ""},
		{"upper prefix", "0XDC20F6830620F00D3d8FF6fC64D8BbfA83F0d652", ""},
		{"no prefix", "DC20F6830620F00D3d8FF6fC64D8BbfA83F0d652", ""},
		{"short", "0x1234", "invalid length"},
		{"bad prefix", "1xDC20F6830620F00D3d8FF6fC64D8BbfA83F0d652", "invalid prefix"},
		{"bad hex", "0xZZ20F6830620F00D3d8FF6fC64D8BbfA83F0d652", "invalid byte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := cactus.ParseAddress(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0xdc20f6830620f00d3d8ff6fc64d8bbfa83f0d652", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := cactus.BytesToAddress([]byte("staker1"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(data))

	var decoded cactus.Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
	assert.False(t, decoded.IsZero())
	assert.True(t, cactus.Address{}.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &decoded))
}

func TestSecondsPerYear(t *testing.T) {
	assert.Equal(t, uint64(31_536_000), cactus.SecondsPerYear)
}
