// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memtoken is an in-memory token ledger for solo mode and tests.
package memtoken

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/token"
)

// Hook observes a completed transfer. It runs after balances moved and
// outside the token's lock, so it may call back into the token or the pool.
type Hook func(ctx context.Context, from, to cactus.Address, value amount.Amount)

type allowanceKey struct {
	owner, spender cactus.Address
}

// Token implements token.Ledger.
type Token struct {
	mu         sync.Mutex
	symbol     string
	supply     amount.Amount
	balances   map[cactus.Address]amount.Amount
	allowances map[allowanceKey]amount.Amount
	hook       Hook
}

var _ token.Issuer = (*Token)(nil)

func New(symbol string) *Token {
	return &Token{
		symbol:     symbol,
		balances:   make(map[cactus.Address]amount.Amount),
		allowances: make(map[allowanceKey]amount.Amount),
	}
}

func (t *Token) Symbol() string { return t.symbol }

// SetHook installs h, replacing any previous hook. Nil removes it.
func (t *Token) SetHook(h Hook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = h
}

// Mint creates value new tokens owned by to.
func (t *Token) Mint(to cactus.Address, value amount.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, err := t.supply.Add(value)
	if err != nil {
		return errors.Wrap(err, "mint")
	}
	bal, err := t.balances[to].Add(value)
	if err != nil {
		return errors.Wrap(err, "mint")
	}
	t.supply = supply
	t.balances[to] = bal
	return nil
}

// Approve sets the amount spender may move out of owner's account.
func (t *Token) Approve(owner, spender cactus.Address, value amount.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[allowanceKey{owner, spender}] = value
	return nil
}

func (t *Token) TotalSupply() amount.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply
}

func (t *Token) BalanceOf(_ context.Context, owner cactus.Address) (amount.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[owner], nil
}

func (t *Token) Allowance(_ context.Context, owner, spender cactus.Address) (amount.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowances[allowanceKey{owner, spender}], nil
}

func (t *Token) Transfer(ctx context.Context, from, to cactus.Address, value amount.Amount) error {
	hook, err := t.move(nil, from, to, value)
	if err != nil {
		return err
	}
	if hook != nil {
		hook(ctx, from, to, value)
	}
	return nil
}

func (t *Token) TransferFrom(ctx context.Context, spender, from, to cactus.Address, value amount.Amount) error {
	hook, err := t.move(&spender, from, to, value)
	if err != nil {
		return err
	}
	if hook != nil {
		hook(ctx, from, to, value)
	}
	return nil
}

func (t *Token) move(spender *cactus.Address, from, to cactus.Address, value amount.Amount) (Hook, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		key          allowanceKey
		newAllowance amount.Amount
	)
	if spender != nil {
		key = allowanceKey{from, *spender}
		left, err := t.allowances[key].Sub(value)
		if err != nil {
			return nil, errors.Wrapf(token.ErrInsufficientAllowance, "%v approved %v for %v, want %v",
				from, t.allowances[key].Tokens(), *spender, value.Tokens())
		}
		newAllowance = left
	}
	fromBal, err := t.balances[from].Sub(value)
	if err != nil {
		return nil, errors.Wrapf(token.ErrInsufficientBalance, "%v holds %v, want %v",
			from, t.balances[from].Tokens(), value.Tokens())
	}

	if spender != nil {
		t.allowances[key] = newAllowance
	}
	t.balances[from] = fromBal
	// supply bounds every balance, so this cannot overflow
	toBal, _ := t.balances[to].Add(value)
	t.balances[to] = toBal
	return t.hook, nil
}
