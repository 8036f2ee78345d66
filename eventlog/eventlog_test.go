// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/staking"
	"github.com/cactusfi/cactus/test/datagen"
)

func newMem(t *testing.T) *EventLog {
	l, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestWriteAndFilter(t *testing.T) {
	ctx := context.Background()
	l := newMem(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, l.Write(ctx, []*staking.Event{
		{Kind: staking.EventStaked, User: alice, Amount: amount.Tokens(200), Time: 100},
		{Kind: staking.EventStaked, User: bob, Amount: amount.Tokens(300), Time: 110},
	}))
	require.NoError(t, l.Write(ctx, []*staking.Event{
		{Kind: staking.EventHarvested, User: alice, Amount: amount.MustParse("0.5"), Reward: amount.MustParse("0.5"), Time: 200},
	}))
	require.NoError(t, l.Write(ctx, []*staking.Event{
		{Kind: staking.EventUnstaked, User: alice, Amount: amount.MustParse("200.1"), Principal: amount.Tokens(200), Reward: amount.MustParse("0.1"), Time: 300},
	}))

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	all, err := l.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, uint64(1), all[0].Seq)
	assert.Equal(t, alice, all[0].User)
	assert.Equal(t, amount.Tokens(200), all[0].Amount)
	assert.Equal(t, amount.MustParse("0.1"), all[3].Reward)
	assert.Equal(t, amount.Tokens(200), all[3].Principal)

	tests := []struct {
		name   string
		filter *Filter
		want   []uint64
	}{
		{"by user", &Filter{User: &alice}, []uint64{1, 3, 4}},
		{"by kind", &Filter{Kinds: []staking.EventKind{staking.EventStaked}}, []uint64{1, 2}},
		{"two kinds", &Filter{Kinds: []staking.EventKind{staking.EventHarvested, staking.EventUnstaked}}, []uint64{3, 4}},
		{"user and kind", &Filter{User: &bob, Kinds: []staking.EventKind{staking.EventHarvested}}, nil},
		{"range", &Filter{Range: &Range{From: 105, To: 250}}, []uint64{2, 3}},
		{"open range", &Filter{Range: &Range{From: 200}}, []uint64{3, 4}},
		{"desc paged", &Filter{Order: DESC, Options: &Options{Offset: 1, Limit: 2}}, []uint64{3, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Filter(ctx, tt.filter)
			require.NoError(t, err)
			var seqs []uint64
			for _, r := range got {
				seqs = append(seqs, r.Seq)
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	l, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path())
	assert.NotEmpty(t, l.DriverVersion())
	require.NoError(t, l.Write(ctx, []*staking.Event{
		{Kind: staking.EventFunded, User: datagen.RandAddress(), Amount: amount.Tokens(3_000_000), Time: 1},
	}))
	require.NoError(t, l.Close())

	l, err = New(path)
	require.NoError(t, err)
	defer l.Close()
	got, err := l.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, staking.EventFunded, got[0].Kind)
	assert.Equal(t, amount.Tokens(3_000_000), got[0].Amount)
}
