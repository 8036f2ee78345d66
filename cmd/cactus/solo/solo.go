// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solo seeds a development pool: well-known accounts holding tokens
// and a funded reward reserve.
package solo

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/token"
)

var logger = log.WithContext("pkg", "solo")

// DevAccount is a key pair known to every solo instance.
type DevAccount struct {
	Address    cactus.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts = func() []DevAccount {
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
		"fbb9e7ba5fe9969a71c6599052237b91adeb1e5fc0c96727b66e56ff5d02f9d0",
		"547fb081e73dc2e22b4aae5c60e2970b008ac4fc3073aebc27d41ace9c4f53e9",
		"c8c53657e41a8d669349fc287f57457bd746cb1fcfc38cf94d235deb2cfca81b",
		"87e0eba9c86c494d98353800571089f316740b0cb84c9a7cdf2fe5c9997c7966",
	}
	accs := make([]DevAccount, 0, len(privKeys))
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{
			Address:    cactus.Address(crypto.PubkeyToAddress(pk.PublicKey)),
			PrivateKey: pk,
		})
	}
	return accs
}()

// DevAccounts returns the solo accounts. The first one is the pool custodian,
// the second funds the reward reserve.
func DevAccounts() []DevAccount {
	return devAccounts
}

// Custodian is the account holding the solo pool's custody.
func Custodian() cactus.Address {
	return devAccounts[0].Address
}

// Options controls how a fresh solo ledger is seeded.
type Options struct {
	Balance amount.Amount // minted to every dev account but the custodian
	Reserve amount.Amount // funded into the pool from the second dev account
}

// DefaultBalance is what every dev staker starts with.
var DefaultBalance = amount.Tokens(10_000_000)

// Seed mints opts.Balance to the dev accounts, approves the custodian to pull
// all of it and funds opts.Reserve into the pool. A token with supply was seeded
// before and is left untouched; the returned bool reports whether seeding ran.
func Seed(ctx context.Context, tok token.Issuer, pool *staking.Pool, opts Options) (bool, error) {
	if !tok.TotalSupply().IsZero() {
		return false, nil
	}
	custodian := pool.Config().Custodian

	for i, acc := range devAccounts[1:] {
		value := opts.Balance
		if i == 0 {
			var err error
			if value, err = value.Add(opts.Reserve); err != nil {
				return false, err
			}
		}
		if err := tok.Mint(acc.Address, value); err != nil {
			return false, errors.WithMessagef(err, "mint %v", acc.Address)
		}
		if err := tok.Approve(acc.Address, custodian, value); err != nil {
			return false, errors.WithMessagef(err, "approve %v", acc.Address)
		}
	}

	if !opts.Reserve.IsZero() {
		if err := pool.Fund(ctx, devAccounts[1].Address, opts.Reserve); err != nil {
			return false, errors.WithMessage(err, "fund reward reserve")
		}
	}
	logger.Info("seeded dev accounts", "count", len(devAccounts)-1, "balance", opts.Balance.Tokens(), "reserve", opts.Reserve.Tokens())
	return true, nil
}
