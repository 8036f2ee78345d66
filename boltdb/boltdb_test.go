// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/kv"
)

func newTestDB(t *testing.T) *BoltDB {
	db, err := New(filepath.Join(t.TempDir(), "cactus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltDB(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete([]byte("k")))
	has, err = db.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBoltDBBulkIterate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Put([]byte("b2"), []byte("old")))

	bulk := db.Bulk()
	require.NoError(t, bulk.Put([]byte("a1"), []byte("x")))
	require.NoError(t, bulk.Put([]byte("a2"), []byte("y")))
	require.NoError(t, bulk.Delete([]byte("b2")))
	assert.Equal(t, 3, bulk.Len())

	has, err := db.Has([]byte("a1"))
	require.NoError(t, err)
	assert.False(t, has, "bulk applied before Write")

	require.NoError(t, bulk.Write())
	assert.Equal(t, 0, bulk.Len())

	it := db.Iterate(kv.PrefixRange([]byte("a")))
	defer it.Release()
	var got []string
	for it.Next() {
		got = append(got, string(it.Key())+"="+string(it.Value()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a1=x", "a2=y"}, got)

	has, err = db.Has([]byte("b2"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBoltDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cactus.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
