// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

// NewBulk wraps src so keys put through it land in the bucket.
// Several buckets may share one src to write atomically across them.
func (b Bucket) NewBulk(src Bulk) Bulk {
	return &bucketBulk{b, src}
}

func (b Bucket) key(key []byte) *buf {
	kb := bufPool.Get().(*buf)
	kb.k = append(append(kb.k[:0], b...), key...)
	return kb
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	kb := s.b.key(key)
	defer bufPool.Put(kb)
	return s.src.Get(kb.k)
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	kb := s.b.key(key)
	defer bufPool.Put(kb)
	return s.src.Has(kb.k)
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, val []byte) error {
	kb := s.b.key(key)
	defer bufPool.Put(kb)
	return s.src.Put(kb.k, val)
}

func (s *bucketStore) Delete(key []byte) error {
	kb := s.b.key(key)
	defer bufPool.Put(kb)
	return s.src.Delete(kb.k)
}

func (s *bucketStore) Bulk() Bulk {
	return &bucketBulk{s.b, s.src.Bulk()}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	// engines may keep the range slices, so no pooled buffers here
	start := append([]byte(s.b), r.Start...)
	var limit []byte
	if len(r.Limit) == 0 {
		limit = PrefixRange([]byte(s.b)).Limit
	} else {
		limit = append([]byte(s.b), r.Limit...)
	}
	return &bucketIter{
		Iterator: s.src.Iterate(Range{Start: start, Limit: limit}),
		n:        len(s.b),
	}
}

type bucketBulk struct {
	b   Bucket
	src Bulk
}

func (bb *bucketBulk) Put(key, val []byte) error {
	// bulk implementations may retain the key until Write
	return bb.src.Put(append([]byte(bb.b), key...), val)
}

func (bb *bucketBulk) Delete(key []byte) error {
	return bb.src.Delete(append([]byte(bb.b), key...))
}

func (bb *bucketBulk) Len() int     { return bb.src.Len() }
func (bb *bucketBulk) Write() error { return bb.src.Write() }

type bucketIter struct {
	Iterator
	n int
}

// Key strips the bucket.
func (i *bucketIter) Key() []byte {
	return i.Iterator.Key()[i.n:]
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
