// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package amount

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string // base units
		wantErr error
	}{
		{"0", "0", nil},
		{"200", "200000000000000000000", nil},
		{"0.5", "500000000000000000", nil},
		{".5", "500000000000000000", nil},
		{"1.", "1000000000000000000", nil},
		{" 3000000 ", "3000000000000000000000000", nil},
		{"82.191780821917808219", "82191780821917808219", nil},
		{"0.000000000000000001", "1", nil},
		{"0.0000000000000000001", "", ErrPrecision},
		{"", "", ErrSyntax},
		{".", "", ErrSyntax},
		{"-1", "", ErrSyntax},
		{"1e18", "", ErrSyntax},
		{"1.2.3", "", ErrSyntax},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", "", ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseBaseUnits(t *testing.T) {
	a, err := ParseBaseUnits("0x10")
	require.NoError(t, err)
	assert.Equal(t, FromUint64(16), a)

	a, err = ParseBaseUnits("0x0010")
	require.NoError(t, err)
	assert.Equal(t, FromUint64(16), a)

	a, err = ParseBaseUnits("0x0")
	require.NoError(t, err)
	assert.True(t, a.IsZero())

	a, err = ParseBaseUnits("12345")
	require.NoError(t, err)
	assert.Equal(t, FromUint64(12345), a)

	_, err = ParseBaseUnits("0x")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ParseBaseUnits("12a")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestTokensFormat(t *testing.T) {
	assert.Equal(t, "0", Zero().Tokens())
	assert.Equal(t, "200", Tokens(200).Tokens())
	assert.Equal(t, "0.5", MustParse("0.5").Tokens())
	assert.Equal(t, "0.000000000000000001", FromUint64(1).Tokens())
	assert.Equal(t, "82.191780821917808219", MustParse("82.191780821917808219").Tokens())
	assert.Equal(t, "10000.05", MustParse("10000.050").Tokens())
}

func TestArithmetic(t *testing.T) {
	a := Tokens(10)
	b := Tokens(3)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, Tokens(13), sum)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, Tokens(7), diff)

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrUnderflow)

	max := FromUint256(new(uint256.Int).SetAllOne())
	_, err = max.Add(FromUint64(1))
	assert.ErrorIs(t, err, ErrOverflow)

	assert.True(t, b.Lt(a))
	assert.True(t, a.Gt(b))
	assert.Equal(t, 0, a.Cmp(Tokens(10)))
}

func TestMulDiv(t *testing.T) {
	// 10000 tokens at 300% for one day
	p := Tokens(10000)
	got, err := p.MulDiv(uint256.NewInt(300*86400), uint256.NewInt(100*31_536_000))
	require.NoError(t, err)
	assert.Equal(t, "82191780821917808219", got.String())

	// product wider than 256 bits still divides back down
	max := FromUint256(new(uint256.Int).SetAllOne())
	got, err = max.MulDiv(uint256.NewInt(1000), uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, max, got)

	_, err = max.MulDiv(uint256.NewInt(2), uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = p.MulDiv(uint256.NewInt(1), new(uint256.Int))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestFromBig(t *testing.T) {
	a, err := FromBig(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, FromUint64(42), a)
	assert.Equal(t, big.NewInt(42), a.Big())

	_, err = FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegative)

	_, err = FromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, ErrOverflow)

	a, err = FromBig(nil)
	require.NoError(t, err)
	assert.True(t, a.IsZero())
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Amount Amount `json:"amount"`
	}
	w := wrapper{Amount: Tokens(200)}
	data, err := json.Marshal(&w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"200000000000000000000"}`, string(data))

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, w, decoded)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"0xc8"}`), &decoded))
	assert.Equal(t, FromUint64(200), decoded.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount":200}`), &decoded))
}

func TestWholeTokens(t *testing.T) {
	assert.Equal(t, int64(0), MustParse("0.999").WholeTokens())
	assert.Equal(t, int64(82), MustParse("82.191780821917808219").WholeTokens())
	huge, err := FromBig(new(big.Int).Lsh(big.NewInt(1), 255))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), huge.WholeTokens())
}
