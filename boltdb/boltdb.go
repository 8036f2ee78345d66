// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package boltdb is a kv store engine on a single bbolt bucket.
package boltdb

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/cactusfi/cactus/kv"
)

const engineName = "bolt"

var _ kv.StoreCloser = (*BoltDB)(nil)

var (
	rootBucket  = []byte("cactus")
	errNotFound = errors.New("boltdb: not found")
)

// BoltDB wraps a bbolt database.
type BoltDB struct {
	db *bbolt.DB
}

// New opens or creates the database file at path.
func New(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bolt bucket")
	}
	return &BoltDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (bd *BoltDB) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

// Get retrieve value for given key.
func (bd *BoltDB) Get(key []byte) (value []byte, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v == nil {
			return errNotFound
		}
		// bolt values are only valid inside the transaction
		value = bytes.Clone(v)
		return nil
	})
	return
}

// Has returns whether a key exists.
func (bd *BoltDB) Has(key []byte) (has bool, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		has = tx.Bucket(rootBucket).Get(key) != nil
		return nil
	})
	return
}

// Put save value for given key.
func (bd *BoltDB) Put(key, value []byte) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, value)
	})
}

// Delete deletes the given key.
func (bd *BoltDB) Delete(key []byte) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
}

// Close closes the database file.
func (bd *BoltDB) Close() error {
	return bd.db.Close()
}

// Bulk collects ops and applies them in one read-write transaction.
func (bd *BoltDB) Bulk() kv.Bulk {
	return &boltBulk{db: bd.db}
}

// Iterate reads the range from a consistent read-only view.
func (bd *BoltDB) Iterate(r kv.Range) kv.Iterator {
	it := &sliceIter{i: -1}
	it.err = bd.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(rootBucket).Cursor()
		for k, v := c.Seek(r.Start); k != nil; k, v = c.Next() {
			if len(r.Limit) > 0 && bytes.Compare(k, r.Limit) >= 0 {
				break
			}
			it.keys = append(it.keys, bytes.Clone(k))
			it.vals = append(it.vals, bytes.Clone(v))
		}
		return nil
	})
	return it
}

type op struct {
	key, val []byte
	del      bool
}

type boltBulk struct {
	db  *bbolt.DB
	ops []op
}

func (b *boltBulk) Put(key, val []byte) error {
	b.ops = append(b.ops, op{key: bytes.Clone(key), val: bytes.Clone(val)})
	return nil
}

func (b *boltBulk) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: bytes.Clone(key), del: true})
	return nil
}

func (b *boltBulk) Len() int {
	return len(b.ops)
}

func (b *boltBulk) Write() error {
	n := len(b.ops)
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(rootBucket)
		for _, o := range b.ops {
			var err error
			if o.del {
				err = bkt.Delete(o.key)
			} else {
				err = bkt.Put(o.key, o.val)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	kv.ObserveBulkWrite(engineName, n, err)
	if err != nil {
		return errors.Wrap(err, "bolt bulk write")
	}
	b.ops = b.ops[:0]
	return nil
}

type sliceIter struct {
	keys, vals [][]byte
	i          int
	err        error
}

func (it *sliceIter) Next() bool {
	if it.err != nil {
		return false
	}
	it.i++
	return it.i < len(it.keys)
}

func (it *sliceIter) Key() []byte   { return it.keys[it.i] }
func (it *sliceIter) Value() []byte { return it.vals[it.i] }
func (it *sliceIter) Error() error  { return it.err }

func (it *sliceIter) Release() {
	it.keys, it.vals = nil, nil
}
