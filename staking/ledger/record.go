// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
)

// Record is a user's position in the pool.
type Record struct {
	Principal           amount.Amount
	LastAccrualTime     uint64 // unix seconds of the last settlement
	AccruedUnpaidReward amount.Amount
}

// IsEmpty returns whether the record carries nothing. Empty records are stored as empty values.
func (r *Record) IsEmpty() bool {
	return r.Principal.IsZero() && r.LastAccrualTime == 0 && r.AccruedUnpaidReward.IsZero()
}

type storedRecord struct {
	Principal *big.Int
	LastTime  uint64
	Unpaid    *big.Int
}

func encodeRecord(r *Record) ([]byte, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(&storedRecord{
		Principal: r.Principal.Big(),
		LastTime:  r.LastAccrualTime,
		Unpaid:    r.AccruedUnpaidReward.Big(),
	})
}

func decodeRecord(data []byte) (Record, error) {
	if len(data) == 0 {
		return Record{}, nil
	}
	var s storedRecord
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return Record{}, errors.Wrap(err, "decode record")
	}
	principal, err := amount.FromBig(s.Principal)
	if err != nil {
		return Record{}, errors.Wrap(err, "decode record principal")
	}
	unpaid, err := amount.FromBig(s.Unpaid)
	if err != nil {
		return Record{}, errors.Wrap(err, "decode record reward")
	}
	return Record{
		Principal:           principal,
		LastAccrualTime:     s.LastTime,
		AccruedUnpaidReward: unpaid,
	}, nil
}

// Totals are pool wide sums, updated together with the records.
type Totals struct {
	Staked            amount.Amount // sum of principals
	Deposited         amount.Amount // principal ever pulled in
	Funded            amount.Amount // reward reserve ever pulled in
	RewardPaid        amount.Amount
	PrincipalReturned amount.Amount
}

type storedTotals struct {
	Staked, Deposited, Funded, RewardPaid, PrincipalReturned *big.Int
}

func encodeTotals(t *Totals) ([]byte, error) {
	return rlp.EncodeToBytes(&storedTotals{
		Staked:            t.Staked.Big(),
		Deposited:         t.Deposited.Big(),
		Funded:            t.Funded.Big(),
		RewardPaid:        t.RewardPaid.Big(),
		PrincipalReturned: t.PrincipalReturned.Big(),
	})
}

func decodeTotals(data []byte) (Totals, error) {
	if len(data) == 0 {
		return Totals{}, nil
	}
	var s storedTotals
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return Totals{}, errors.Wrap(err, "decode totals")
	}
	var (
		t   Totals
		err error
	)
	for _, f := range []struct {
		dst *amount.Amount
		src *big.Int
	}{
		{&t.Staked, s.Staked},
		{&t.Deposited, s.Deposited},
		{&t.Funded, s.Funded},
		{&t.RewardPaid, s.RewardPaid},
		{&t.PrincipalReturned, s.PrincipalReturned},
	} {
		if *f.dst, err = amount.FromBig(f.src); err != nil {
			return Totals{}, errors.Wrap(err, "decode totals")
		}
	}
	return t, nil
}
