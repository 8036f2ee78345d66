// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvtoken

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/boltdb"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/lvldb"
	"github.com/cactusfi/cactus/test/datagen"
	"github.com/cactusfi/cactus/token"
)

func newMemStore(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	tok, err := New(newMemStore(t), "CCT")
	require.NoError(t, err)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tok.Mint(alice, amount.Tokens(100)))
	assert.Equal(t, amount.Tokens(100), tok.TotalSupply())

	require.NoError(t, tok.Transfer(ctx, alice, bob, amount.Tokens(40)))
	bal, err := tok.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(60), bal)
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(40), bal)

	err = tok.Transfer(ctx, bob, alice, amount.Tokens(41))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(40), bal)

	// self transfer only checks the balance
	require.NoError(t, tok.Transfer(ctx, bob, bob, amount.Tokens(40)))
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(40), bal)
	assert.ErrorIs(t, tok.Transfer(ctx, bob, bob, amount.Tokens(41)), token.ErrInsufficientBalance)
}

func TestTransferFrom(t *testing.T) {
	ctx := context.Background()
	tok, err := New(newMemStore(t), "CCT")
	require.NoError(t, err)
	owner, spender, dest := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tok.Mint(owner, amount.Tokens(10)))

	err = tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(1))
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)

	require.NoError(t, tok.Approve(owner, spender, amount.Tokens(20)))
	err = tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(15))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	left, _ := tok.Allowance(ctx, owner, spender)
	assert.Equal(t, amount.Tokens(20), left, "failed transfer must not spend allowance")

	require.NoError(t, tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(4)))
	left, _ = tok.Allowance(ctx, owner, spender)
	assert.Equal(t, amount.Tokens(16), left)
	bal, _ := tok.BalanceOf(ctx, dest)
	assert.Equal(t, amount.Tokens(4), bal)

	// allowances are per spender
	other := datagen.RandAddress()
	left, _ = tok.Allowance(ctx, owner, other)
	assert.True(t, left.IsZero())
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.db")
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	db, err := boltdb.New(path)
	require.NoError(t, err)
	tok, err := New(db, "CCT")
	require.NoError(t, err)
	require.NoError(t, tok.Mint(alice, amount.Tokens(7)))
	require.NoError(t, tok.Approve(alice, bob, amount.Tokens(3)))
	require.NoError(t, tok.TransferFrom(ctx, bob, alice, bob, amount.Tokens(2)))
	require.NoError(t, db.Close())

	db, err = boltdb.New(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, "XYZ")
	assert.ErrorContains(t, err, "not \"XYZ\"")

	tok, err = New(db, "CCT")
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(7), tok.TotalSupply())
	bal, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, amount.Tokens(5), bal)
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(2), bal)
	left, _ := tok.Allowance(ctx, alice, bob)
	assert.Equal(t, amount.Tokens(1), left)
}
