// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package amount implements the fixed-point token amount used across the pool.
//
// An Amount counts base units of a token with 18 decimals, the way wei counts ether.
// Values are unsigned 256-bit integers; every arithmetic operation reports overflow
// or underflow instead of wrapping.
package amount

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional decimal digits of one token.
const Decimals = 18

var (
	ErrOverflow       = errors.New("amount: overflow")
	ErrUnderflow      = errors.New("amount: underflow")
	ErrNegative       = errors.New("amount: negative value")
	ErrDivisionByZero = errors.New("amount: division by zero")
	ErrSyntax         = errors.New("amount: invalid syntax")
	ErrPrecision      = errors.New("amount: too many decimal places")
)

// one token in base units
var unit = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Amount is a non-negative token amount in base units. The zero value is zero.
// Amount is a value type; it is safe to copy and compare with ==.
type Amount struct {
	v uint256.Int
}

var (
	_ json.Marshaler   = (*Amount)(nil)
	_ json.Unmarshaler = (*Amount)(nil)
)

// Zero returns the zero amount.
func Zero() Amount { return Amount{} }

// FromUint64 returns x base units.
func FromUint64(x uint64) Amount {
	var a Amount
	a.v.SetUint64(x)
	return a
}

// Tokens returns n whole tokens. It never overflows.
func Tokens(n uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(n), unit)
	return a
}

// FromBig converts a big integer of base units.
func FromBig(b *big.Int) (Amount, error) {
	if b == nil {
		return Amount{}, nil
	}
	if b.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *v}, nil
}

// FromUint256 copies a uint256 value.
func FromUint256(x *uint256.Int) Amount {
	if x == nil {
		return Amount{}
	}
	return Amount{v: *x}
}

// Parse parses a decimal token string such as "200", "0.5" or "82.191780821917808219".
// At most Decimals fractional digits are accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && (!hasDot || fracPart == "") {
		return Amount{}, ErrSyntax
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return Amount{}, ErrSyntax
	}
	if len(fracPart) > Decimals {
		return Amount{}, ErrPrecision
	}

	var whole uint256.Int
	if intPart != "" {
		v, err := uint256.FromDecimal(intPart)
		if err != nil {
			return Amount{}, ErrOverflow
		}
		whole = *v
	}
	var a Amount
	if _, overflow := a.v.MulOverflow(&whole, unit); overflow {
		return Amount{}, ErrOverflow
	}
	if fracPart != "" {
		frac, err := uint256.FromDecimal(fracPart + strings.Repeat("0", Decimals-len(fracPart)))
		if err != nil {
			return Amount{}, ErrSyntax
		}
		if _, overflow := a.v.AddOverflow(&a.v, frac); overflow {
			return Amount{}, ErrOverflow
		}
	}
	return a, nil
}

// ParseBaseUnits parses an integer count of base units, in decimal or 0x-prefixed hex.
func ParseBaseUnits(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			if len(s) == 2 {
				return Amount{}, ErrSyntax
			}
			return Amount{}, nil
		}
		v, err := uint256.FromHex("0x" + digits)
		if err != nil {
			return Amount{}, ErrSyntax
		}
		return Amount{v: *v}, nil
	}
	if s == "" || !isDigits(s) {
		return Amount{}, ErrSyntax
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *v}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Add returns a+b.
func (a Amount) Add(b Amount) (Amount, error) {
	var z Amount
	if _, overflow := z.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return z, nil
}

// Sub returns a-b.
func (a Amount) Sub(b Amount) (Amount, error) {
	var z Amount
	if _, underflow := z.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrUnderflow
	}
	return z, nil
}

// MulDiv returns a*num/den truncated toward zero. The product is held in 512 bits,
// so only a quotient wider than 256 bits overflows.
func (a Amount) MulDiv(num, den *uint256.Int) (Amount, error) {
	if den.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var z Amount
	if _, overflow := z.v.MulDivOverflow(&a.v, num, den); overflow {
		return Amount{}, ErrOverflow
	}
	return z, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Lt reports whether a < b.
func (a Amount) Lt(b Amount) bool { return a.v.Lt(&b.v) }

// Gt reports whether a > b.
func (a Amount) Gt(b Amount) bool { return a.v.Gt(&b.v) }

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Big returns a new big integer holding a.
func (a Amount) Big() *big.Int { return a.v.ToBig() }

// Uint256 returns a copy of the underlying value.
func (a Amount) Uint256() *uint256.Int { return new(uint256.Int).Set(&a.v) }

// String returns base units in decimal.
func (a Amount) String() string { return a.v.Dec() }

// Tokens formats a as a decimal token string without trailing fractional zeros.
func (a Amount) Tokens() string {
	var q, r uint256.Int
	q.DivMod(&a.v, unit, &r)
	if r.IsZero() {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", Decimals-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

// WholeTokens returns the integer part of a in tokens, saturating at math.MaxInt64.
// Meant for metrics and logs.
func (a Amount) WholeTokens() int64 {
	var q uint256.Int
	q.Div(&a.v, unit)
	if !q.IsUint64() || q.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q.Uint64())
}

// MarshalJSON encodes base units as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

// UnmarshalJSON accepts base units as a decimal or 0x-prefixed hex string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBaseUnits(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
