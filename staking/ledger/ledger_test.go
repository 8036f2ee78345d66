// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/lvldb"
	"github.com/cactusfi/cactus/staking/accrual"
	"github.com/cactusfi/cactus/test/datagen"
)

const t0 = uint64(1_700_000_000)

func newLedger(t *testing.T) (*Ledger, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, accrual.NewRate(cactus.DefaultAnnualRatePercent)), db
}

func TestZeroRecord(t *testing.T) {
	l, _ := newLedger(t)
	r, err := l.Get(datagen.RandAddress())
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	out, err := l.Outstanding(datagen.RandAddress(), t0)
	require.NoError(t, err)
	assert.True(t, out.IsZero())
}

func TestSettleAndOutstanding(t *testing.T) {
	l, _ := newLedger(t)
	user := datagen.RandAddress()

	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(10000), t0))
	r, _ := l.Get(user)
	assert.Equal(t, amount.Tokens(10000), r.Principal)
	assert.Equal(t, t0, r.LastAccrualTime)
	assert.True(t, r.AccruedUnpaidReward.IsZero())

	want := amount.MustParse("82.191780821917808219")
	out, err := l.Outstanding(user, t0+86400)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	// outstanding does not mutate
	r, _ = l.Get(user)
	assert.Equal(t, t0, r.LastAccrualTime)

	settled, err := l.Settle(user, t0+86400)
	require.NoError(t, err)
	assert.Equal(t, want, settled)
	r, _ = l.Get(user)
	assert.Equal(t, want, r.AccruedUnpaidReward)
	assert.Equal(t, t0+86400, r.LastAccrualTime)

	// earlier settlement times are clamped
	settled, err = l.Settle(user, t0)
	require.NoError(t, err)
	assert.True(t, settled.IsZero())
	r, _ = l.Get(user)
	assert.Equal(t, t0+86400, r.LastAccrualTime)
}

func TestAdditiveStakeSettlesFirst(t *testing.T) {
	l, _ := newLedger(t)
	user := datagen.RandAddress()

	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(10000), t0))
	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(10000), t0+86400))

	r, _ := l.Get(user)
	assert.Equal(t, amount.Tokens(20000), r.Principal)
	assert.Equal(t, amount.MustParse("82.191780821917808219"), r.AccruedUnpaidReward)

	out, _ := l.Outstanding(user, t0+2*86400)
	assert.Equal(t, amount.MustParse("246.575342465753424657"), out)

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(20000), totals.Staked)
	assert.Equal(t, amount.Tokens(20000), totals.Deposited)
}

func TestClearAndZeroOut(t *testing.T) {
	l, _ := newLedger(t)
	user := datagen.RandAddress()
	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(200), t0))
	_, err := l.Settle(user, t0+100)
	require.NoError(t, err)

	reward, err := l.ClearUnpaidReward(user)
	require.NoError(t, err)
	assert.False(t, reward.IsZero())
	again, err := l.ClearUnpaidReward(user)
	require.NoError(t, err)
	assert.True(t, again.IsZero())

	principal, err := l.ZeroOut(user)
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(200), principal)

	r, _ := l.Get(user)
	assert.True(t, r.Principal.IsZero())
	assert.True(t, r.AccruedUnpaidReward.IsZero())

	totals, _ := l.Totals()
	assert.True(t, totals.Staked.IsZero())
	assert.Equal(t, amount.Tokens(200), totals.PrincipalReturned)
	assert.Equal(t, reward, totals.RewardPaid)
}

func TestClearUpToReserve(t *testing.T) {
	l, _ := newLedger(t)
	user := datagen.RandAddress()
	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(10000), t0))
	_, err := l.Settle(user, t0+86400)
	require.NoError(t, err)

	reserve, err := l.RewardReserve()
	require.NoError(t, err)
	assert.True(t, reserve.IsZero())

	require.NoError(t, l.AddFunded(amount.Tokens(50)))
	reserve, err = l.RewardReserve()
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(50), reserve)

	paid, err := l.ClearUnpaidRewardUpTo(user, reserve)
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(50), paid)
	r, _ := l.Get(user)
	assert.Equal(t, amount.MustParse("32.191780821917808219"), r.AccruedUnpaidReward, "the rest stays owed")

	reserve, err = l.RewardReserve()
	require.NoError(t, err)
	assert.True(t, reserve.IsZero())
	paid, err = l.ClearUnpaidRewardUpTo(user, reserve)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())

	// a limit above what is owed pays what is owed
	paid, err = l.ClearUnpaidRewardUpTo(user, amount.Tokens(1000))
	require.NoError(t, err)
	assert.Equal(t, amount.MustParse("32.191780821917808219"), paid)
	totals, _ := l.Totals()
	assert.Equal(t, amount.MustParse("82.191780821917808219"), totals.RewardPaid)
}

func TestCheckpointRevert(t *testing.T) {
	l, _ := newLedger(t)
	user := datagen.RandAddress()
	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(200), t0))

	cp := l.Checkpoint()
	require.NoError(t, l.IncreasePrincipal(user, amount.Tokens(300), t0+10))
	inner := l.Checkpoint()
	_, err := l.ZeroOut(user)
	require.NoError(t, err)

	l.RevertTo(inner)
	r, _ := l.Get(user)
	assert.Equal(t, amount.Tokens(500), r.Principal)

	l.RevertTo(cp)
	r, _ = l.Get(user)
	assert.Equal(t, amount.Tokens(200), r.Principal)
	assert.Equal(t, t0, r.LastAccrualTime)
	totals, _ := l.Totals()
	assert.Equal(t, amount.Tokens(200), totals.Staked)
}

func TestCommitPersists(t *testing.T) {
	l, db := newLedger(t)
	users := datagen.RandAddresses(3)
	for i, u := range users {
		require.NoError(t, l.IncreasePrincipal(u, amount.Tokens(uint64(200*(i+1))), t0))
	}
	require.NoError(t, l.AddFunded(amount.Tokens(3_000_000)))

	// nothing reaches the store before commit
	fresh := New(db, l.Rate())
	r, _ := fresh.Get(users[0])
	assert.True(t, r.IsEmpty())

	require.NoError(t, l.Commit())
	require.NoError(t, l.Commit())

	fresh = New(db, l.Rate())
	for i, u := range users {
		r, err := fresh.Get(u)
		require.NoError(t, err)
		assert.Equal(t, amount.Tokens(uint64(200*(i+1))), r.Principal)
		assert.Equal(t, t0, r.LastAccrualTime)
	}
	totals, err := fresh.Totals()
	require.NoError(t, err)
	assert.Equal(t, amount.Tokens(1200), totals.Staked)
	assert.Equal(t, amount.Tokens(3_000_000), totals.Funded)

	seen := map[cactus.Address]bool{}
	require.NoError(t, fresh.Stakers(func(u cactus.Address, r Record) bool {
		seen[u] = true
		return true
	}))
	assert.Len(t, seen, 3)

	n := 0
	require.NoError(t, fresh.Stakers(func(cactus.Address, Record) bool {
		n++
		return false
	}))
	assert.Equal(t, 1, n)
}

func TestRecordEncoding(t *testing.T) {
	data, err := encodeRecord(&Record{})
	require.NoError(t, err)
	assert.Empty(t, data)

	f := fuzz.New().NilChance(0)
	for range 50 {
		var p, u uint64
		var ts uint64
		f.Fuzz(&p)
		f.Fuzz(&u)
		f.Fuzz(&ts)
		in := Record{
			Principal:           amount.FromUint64(p),
			LastAccrualTime:     ts,
			AccruedUnpaidReward: amount.FromUint64(u),
		}
		data, err := encodeRecord(&in)
		require.NoError(t, err)
		out, err := decodeRecord(data)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err = decodeRecord([]byte{0xff, 0x01})
	assert.Error(t, err)
}
