// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token connects the pool to the external fungible token it stakes.
package token

import (
	"context"
	"errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
)

// Errors a Ledger reports for rejected transfers.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Ledger is an ERC-20 style token seen from a single caller.
type Ledger interface {
	BalanceOf(ctx context.Context, owner cactus.Address) (amount.Amount, error)
	Allowance(ctx context.Context, owner, spender cactus.Address) (amount.Amount, error)
	// Transfer moves value from the caller's account to to.
	Transfer(ctx context.Context, from, to cactus.Address, value amount.Amount) error
	// TransferFrom moves value from from to to, spending spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to cactus.Address, value amount.Amount) error
}

// Issuer is a token ledger owned by this process, so it can create tokens and
// set allowances on behalf of owners.
type Issuer interface {
	Ledger
	Symbol() string
	TotalSupply() amount.Amount
	// Mint creates value new tokens owned by to.
	Mint(to cactus.Address, value amount.Amount) error
	// Approve sets the amount spender may move out of owner's account.
	Approve(owner, spender cactus.Address, value amount.Amount) error
}
