// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kvtoken is a token ledger persisted in a kv store, so balances survive
// restarts alongside the pool ledger.
package kvtoken

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/token"
)

const (
	balanceBucket   = kv.Bucket("tb")
	allowanceBucket = kv.Bucket("ta")
	metaBucket      = kv.Bucket("tm")
)

var (
	symbolKey = []byte("symbol")
	supplyKey = []byte("supply")
)

var _ token.Issuer = (*Token)(nil)

// Token implements token.Issuer. Every mutation is one atomic bulk write.
type Token struct {
	mu         sync.Mutex
	store      kv.Store
	balances   kv.Store
	allowances kv.Store
	symbol     string
	supply     amount.Amount
}

// New opens the token kept in store. A fresh store is initialized with symbol,
// an existing one must carry the same symbol.
func New(store kv.Store, symbol string) (*Token, error) {
	meta := metaBucket.NewStore(store)
	t := &Token{
		store:      store,
		balances:   balanceBucket.NewStore(store),
		allowances: allowanceBucket.NewStore(store),
		symbol:     symbol,
	}

	stored, err := meta.Get(symbolKey)
	switch {
	case err == nil:
		if string(stored) != symbol {
			return nil, errors.Errorf("store holds token %q, not %q", stored, symbol)
		}
		if t.supply, err = readAmount(meta, supplyKey); err != nil {
			return nil, err
		}
	case meta.IsNotFound(err):
		if err := meta.Put(symbolKey, []byte(symbol)); err != nil {
			return nil, errors.Wrap(err, "init token")
		}
	default:
		return nil, errors.Wrap(err, "read token symbol")
	}
	return t, nil
}

func readAmount(g kv.Getter, key []byte) (amount.Amount, error) {
	data, err := g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return amount.Zero(), nil
		}
		return amount.Zero(), errors.Wrap(err, "read token state")
	}
	if len(data) > 32 {
		return amount.Zero(), errors.Errorf("corrupt token amount of %d bytes", len(data))
	}
	return amount.FromUint256(new(uint256.Int).SetBytes(data)), nil
}

// putAmount stores value as minimal big-endian bytes. Zero deletes the key.
func putAmount(p kv.Putter, key []byte, value amount.Amount) error {
	if value.IsZero() {
		return p.Delete(key)
	}
	return p.Put(key, value.Uint256().Bytes())
}

func allowanceKey(owner, spender cactus.Address) []byte {
	return append(owner.Bytes()[:cactus.AddressLength:cactus.AddressLength], spender.Bytes()...)
}

func (t *Token) Symbol() string { return t.symbol }

func (t *Token) TotalSupply() amount.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply
}

func (t *Token) BalanceOf(_ context.Context, owner cactus.Address) (amount.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return readAmount(t.balances, owner.Bytes())
}

func (t *Token) Allowance(_ context.Context, owner, spender cactus.Address) (amount.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return readAmount(t.allowances, allowanceKey(owner, spender))
}

func (t *Token) Mint(to cactus.Address, value amount.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, err := t.supply.Add(value)
	if err != nil {
		return errors.Wrap(err, "mint")
	}
	bal, err := readAmount(t.balances, to.Bytes())
	if err != nil {
		return err
	}
	// supply bounds every balance
	bal, _ = bal.Add(value)

	bulk := t.store.Bulk()
	if err := putAmount(metaBucket.NewBulk(bulk), supplyKey, supply); err != nil {
		return err
	}
	if err := putAmount(balanceBucket.NewBulk(bulk), to.Bytes(), bal); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "mint")
	}
	t.supply = supply
	return nil
}

func (t *Token) Approve(owner, spender cactus.Address, value amount.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return errors.Wrap(putAmount(t.allowances, allowanceKey(owner, spender), value), "approve")
}

func (t *Token) Transfer(_ context.Context, from, to cactus.Address, value amount.Amount) error {
	return t.move(nil, from, to, value)
}

func (t *Token) TransferFrom(_ context.Context, spender, from, to cactus.Address, value amount.Amount) error {
	return t.move(&spender, from, to, value)
}

func (t *Token) move(spender *cactus.Address, from, to cactus.Address, value amount.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bulk := t.store.Bulk()
	if spender != nil {
		key := allowanceKey(from, *spender)
		allowed, err := readAmount(t.allowances, key)
		if err != nil {
			return err
		}
		left, err := allowed.Sub(value)
		if err != nil {
			return errors.Wrapf(token.ErrInsufficientAllowance, "%v approved %v for %v, want %v",
				from, allowed.Tokens(), *spender, value.Tokens())
		}
		if err := putAmount(allowanceBucket.NewBulk(bulk), key, left); err != nil {
			return err
		}
	}

	fromBal, err := readAmount(t.balances, from.Bytes())
	if err != nil {
		return err
	}
	fromLeft, err := fromBal.Sub(value)
	if err != nil {
		return errors.Wrapf(token.ErrInsufficientBalance, "%v holds %v, want %v",
			from, fromBal.Tokens(), value.Tokens())
	}
	if from == to {
		return nil
	}
	toBal, err := readAmount(t.balances, to.Bytes())
	if err != nil {
		return err
	}
	toBal, _ = toBal.Add(value)

	balances := balanceBucket.NewBulk(bulk)
	if err := putAmount(balances, from.Bytes(), fromLeft); err != nil {
		return err
	}
	if err := putAmount(balances, to.Bytes(), toBal); err != nil {
		return err
	}
	return errors.Wrap(bulk.Write(), "transfer")
}
