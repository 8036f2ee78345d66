// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps every user's stake record and the pool totals.
//
// Writes are staged in a journal that supports nested checkpoints and reach the
// underlying kv store only on Commit. The ledger is not safe for concurrent use;
// the pool serializes access to it.
package ledger

import (
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cache"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/kv"
	"github.com/cactusfi/cactus/log"
	"github.com/cactusfi/cactus/stackedmap"
	"github.com/cactusfi/cactus/staking/accrual"
)

var logger = log.WithContext("pkg", "ledger")

const (
	recordBucket = kv.Bucket("r")
	metaBucket   = kv.Bucket("m")

	totalsKey = "totals"

	defaultCacheSize = 4096
)

// entry keys the journal: kind 'r' with a user, or kind 'm' for totals.
type entry struct {
	kind byte
	user cactus.Address
}

var totalsEntry = entry{kind: 'm'}

func recordEntry(user cactus.Address) entry { return entry{kind: 'r', user: user} }

type Ledger struct {
	store   kv.Store
	records kv.Store
	meta    kv.Store
	rate    accrual.Rate
	cache   *cache.LRU[cactus.Address, Record]
	journal *stackedmap.StackedMap[entry, any]
}

// New creates a ledger over store, accruing reward at rate.
func New(store kv.Store, rate accrual.Rate) *Ledger {
	c, err := cache.NewLRU[cactus.Address, Record](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	l := &Ledger{
		store:   store,
		records: recordBucket.NewStore(store),
		meta:    metaBucket.NewStore(store),
		rate:    rate,
		cache:   c,
	}
	l.resetJournal()
	return l
}

func (l *Ledger) resetJournal() {
	l.journal = stackedmap.New(l.load)
	l.journal.Push()
}

// Rate returns the accrual rate.
func (l *Ledger) Rate() accrual.Rate {
	return l.rate
}

func (l *Ledger) load(e entry) (any, bool, error) {
	if e.kind == 'm' {
		data, err := l.meta.Get([]byte(totalsKey))
		if err != nil {
			if l.meta.IsNotFound(err) {
				return Totals{}, true, nil
			}
			return nil, false, errors.Wrap(err, "load totals")
		}
		t, err := decodeTotals(data)
		if err != nil {
			return nil, false, err
		}
		return t, true, nil
	}

	r, err := l.cache.GetOrLoad(e.user, l.loadRecord)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (l *Ledger) loadRecord(user cactus.Address) (Record, error) {
	data, err := l.records.Get(user.Bytes())
	if err != nil {
		if l.records.IsNotFound(err) {
			return Record{}, nil
		}
		return Record{}, errors.Wrap(err, "load record")
	}
	return decodeRecord(data)
}

// Get returns a copy of user's record. A user who never staked has the zero record.
func (l *Ledger) Get(user cactus.Address) (*Record, error) {
	r, err := l.get(user)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (l *Ledger) get(user cactus.Address) (Record, error) {
	v, _, err := l.journal.Get(recordEntry(user))
	if err != nil {
		return Record{}, err
	}
	return v.(Record), nil
}

func (l *Ledger) put(user cactus.Address, r Record) {
	l.journal.Put(recordEntry(user), r)
}

// Totals returns the pool wide sums including staged changes.
func (l *Ledger) Totals() (Totals, error) {
	v, _, err := l.journal.Get(totalsEntry)
	if err != nil {
		return Totals{}, err
	}
	return v.(Totals), nil
}

func (l *Ledger) updateTotals(f func(t *Totals) error) error {
	t, err := l.Totals()
	if err != nil {
		return err
	}
	if err := f(&t); err != nil {
		return err
	}
	l.journal.Put(totalsEntry, t)
	return nil
}

// settle folds the reward earned since the last settlement into r.
// A settlement time before the stored one is clamped, so LastAccrualTime never moves back.
func (l *Ledger) settle(r *Record, now uint64) (amount.Amount, error) {
	if now < r.LastAccrualTime {
		now = r.LastAccrualTime
	}
	reward, err := l.rate.Reward(r.Principal, accrual.Elapsed(r.LastAccrualTime, now))
	if err != nil {
		return amount.Zero(), err
	}
	unpaid, err := r.AccruedUnpaidReward.Add(reward)
	if err != nil {
		return amount.Zero(), err
	}
	r.AccruedUnpaidReward = unpaid
	r.LastAccrualTime = now
	return reward, nil
}

// Settle locks in the reward user earned up to now and returns it.
// It must run before any change to the principal.
func (l *Ledger) Settle(user cactus.Address, now uint64) (amount.Amount, error) {
	r, err := l.get(user)
	if err != nil {
		return amount.Zero(), err
	}
	settled, err := l.settle(&r, now)
	if err != nil {
		return amount.Zero(), err
	}
	l.put(user, r)
	return settled, nil
}

// IncreasePrincipal settles user then adds value to the principal.
func (l *Ledger) IncreasePrincipal(user cactus.Address, value amount.Amount, now uint64) error {
	r, err := l.get(user)
	if err != nil {
		return err
	}
	if _, err := l.settle(&r, now); err != nil {
		return err
	}
	if r.Principal, err = r.Principal.Add(value); err != nil {
		return err
	}
	if err := l.updateTotals(func(t *Totals) (err error) {
		if t.Staked, err = t.Staked.Add(value); err != nil {
			return err
		}
		t.Deposited, err = t.Deposited.Add(value)
		return err
	}); err != nil {
		return err
	}
	l.put(user, r)
	return nil
}

// ClearUnpaidReward zeroes user's unpaid reward and returns it, counted as paid.
func (l *Ledger) ClearUnpaidReward(user cactus.Address) (amount.Amount, error) {
	r, err := l.get(user)
	if err != nil {
		return amount.Zero(), err
	}
	reward := r.AccruedUnpaidReward
	if reward.IsZero() {
		return reward, nil
	}
	if err := l.updateTotals(func(t *Totals) (err error) {
		t.RewardPaid, err = t.RewardPaid.Add(reward)
		return err
	}); err != nil {
		return amount.Zero(), err
	}
	r.AccruedUnpaidReward = amount.Zero()
	l.put(user, r)
	return reward, nil
}

// ClearUnpaidRewardUpTo moves at most limit of user's unpaid reward to paid and returns
// the amount moved. Whatever exceeds limit stays owed.
func (l *Ledger) ClearUnpaidRewardUpTo(user cactus.Address, limit amount.Amount) (amount.Amount, error) {
	r, err := l.get(user)
	if err != nil {
		return amount.Zero(), err
	}
	reward := r.AccruedUnpaidReward
	if limit.Lt(reward) {
		reward = limit
	}
	if reward.IsZero() {
		return reward, nil
	}
	if err := l.updateTotals(func(t *Totals) (err error) {
		t.RewardPaid, err = t.RewardPaid.Add(reward)
		return err
	}); err != nil {
		return amount.Zero(), err
	}
	if r.AccruedUnpaidReward, err = r.AccruedUnpaidReward.Sub(reward); err != nil {
		return amount.Zero(), err
	}
	l.put(user, r)
	return reward, nil
}

// RewardReserve returns the funded reserve not yet paid out as reward.
func (l *Ledger) RewardReserve() (amount.Amount, error) {
	t, err := l.Totals()
	if err != nil {
		return amount.Zero(), err
	}
	if !t.Funded.Gt(t.RewardPaid) {
		return amount.Zero(), nil
	}
	return t.Funded.Sub(t.RewardPaid)
}

// ZeroOut sets user's principal to zero and returns what it was, counted as returned.
func (l *Ledger) ZeroOut(user cactus.Address) (amount.Amount, error) {
	r, err := l.get(user)
	if err != nil {
		return amount.Zero(), err
	}
	principal := r.Principal
	if principal.IsZero() {
		return principal, nil
	}
	if err := l.updateTotals(func(t *Totals) (err error) {
		if t.Staked, err = t.Staked.Sub(principal); err != nil {
			return errors.Wrap(err, "staked total")
		}
		t.PrincipalReturned, err = t.PrincipalReturned.Add(principal)
		return err
	}); err != nil {
		return amount.Zero(), err
	}
	r.Principal = amount.Zero()
	l.put(user, r)
	return principal, nil
}

// AddFunded records value pulled in as reward reserve.
func (l *Ledger) AddFunded(value amount.Amount) error {
	return l.updateTotals(func(t *Totals) (err error) {
		t.Funded, err = t.Funded.Add(value)
		return err
	})
}

// Outstanding returns the reward user could harvest at now, without changing anything.
func (l *Ledger) Outstanding(user cactus.Address, now uint64) (amount.Amount, error) {
	r, err := l.get(user)
	if err != nil {
		return amount.Zero(), err
	}
	if _, err := l.settle(&r, now); err != nil {
		return amount.Zero(), err
	}
	return r.AccruedUnpaidReward, nil
}

// Checkpoint marks the journal; RevertTo with the returned id drops every change after it.
func (l *Ledger) Checkpoint() int {
	return l.journal.Push()
}

func (l *Ledger) RevertTo(checkpoint int) {
	l.journal.PopTo(checkpoint)
	if l.journal.Depth() == 0 {
		l.journal.Push()
	}
}

// Commit writes the staged changes to the store in one batch and clears the journal.
// On failure the journal is dropped and the store keeps its previous state.
func (l *Ledger) Commit() error {
	defer l.resetJournal()

	latest := make(map[entry]any)
	var order []entry
	l.journal.Journal(func(e entry, v any) bool {
		if _, ok := latest[e]; !ok {
			order = append(order, e)
		}
		latest[e] = v
		return true
	})
	if len(order) == 0 {
		return nil
	}

	bulk := l.store.Bulk()
	recBulk := recordBucket.NewBulk(bulk)
	metaBulk := metaBucket.NewBulk(bulk)
	for _, e := range order {
		switch v := latest[e].(type) {
		case Record:
			data, err := encodeRecord(&v)
			if err != nil {
				return err
			}
			if err := recBulk.Put(e.user.Bytes(), data); err != nil {
				return err
			}
		case Totals:
			data, err := encodeTotals(&v)
			if err != nil {
				return err
			}
			if err := metaBulk.Put([]byte(totalsKey), data); err != nil {
				return err
			}
		}
	}
	if err := bulk.Write(); err != nil {
		l.cache.Purge()
		return errors.Wrap(err, "commit ledger")
	}
	for _, e := range order {
		if r, ok := latest[e].(Record); ok {
			l.cache.Add(e.user, r)
		}
	}
	if changed, hit, miss := l.cache.Stats(); changed {
		logger.Debug("record cache stats", "hit", hit, "miss", miss)
	}
	logger.Trace("ledger committed", "entries", len(order))
	return nil
}

// Stakers calls fn for every committed record in address order until fn returns false.
func (l *Ledger) Stakers(fn func(user cactus.Address, r Record) bool) error {
	it := l.records.Iterate(kv.Range{})
	defer it.Release()
	for it.Next() {
		r, err := decodeRecord(it.Value())
		if err != nil {
			return err
		}
		if !fn(cactus.BytesToAddress(it.Key()), r) {
			break
		}
	}
	return errors.Wrap(it.Error(), "iterate records")
}
