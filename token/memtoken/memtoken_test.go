// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memtoken

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/test/datagen"
	"github.com/cactusfi/cactus/token"
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	tok := New("CCT")
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tok.Mint(alice, amount.Tokens(100)))
	assert.Equal(t, amount.Tokens(100), tok.TotalSupply())

	require.NoError(t, tok.Transfer(ctx, alice, bob, amount.Tokens(40)))
	bal, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, amount.Tokens(60), bal)
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(40), bal)

	err := tok.Transfer(ctx, bob, alice, amount.Tokens(41))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	bal, _ = tok.BalanceOf(ctx, bob)
	assert.Equal(t, amount.Tokens(40), bal)
}

func TestTransferFrom(t *testing.T) {
	ctx := context.Background()
	tok := New("CCT")
	owner, spender, dest := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tok.Mint(owner, amount.Tokens(10)))

	err := tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(1))
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)

	tok.Approve(owner, spender, amount.Tokens(20))
	err = tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(15))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	left, _ := tok.Allowance(ctx, owner, spender)
	assert.Equal(t, amount.Tokens(20), left, "failed transfer must not spend allowance")

	require.NoError(t, tok.TransferFrom(ctx, spender, owner, dest, amount.Tokens(4)))
	left, _ = tok.Allowance(ctx, owner, spender)
	assert.Equal(t, amount.Tokens(16), left)
	bal, _ := tok.BalanceOf(ctx, dest)
	assert.Equal(t, amount.Tokens(4), bal)
}

func TestHookRunsAfterMove(t *testing.T) {
	ctx := context.Background()
	tok := New("CCT")
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tok.Mint(alice, amount.Tokens(5)))

	var seen []amount.Amount
	tok.SetHook(func(ctx context.Context, from, to cactus.Address, value amount.Amount) {
		// reentering the token must not deadlock
		bal, err := tok.BalanceOf(ctx, to)
		require.NoError(t, err)
		seen = append(seen, bal)
	})
	require.NoError(t, tok.Transfer(ctx, alice, bob, amount.Tokens(2)))
	require.Len(t, seen, 1)
	assert.Equal(t, amount.Tokens(2), seen[0])

	tok.SetHook(nil)
	require.NoError(t, tok.Transfer(ctx, alice, bob, amount.Tokens(1)))
	assert.Len(t, seen, 1)
}
