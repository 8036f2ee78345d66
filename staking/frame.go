// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"

	"github.com/cactusfi/cactus/staking/reverts"
)

type frameKey struct{}

// frame is the execution context of a pool operation. Calls that carry it in their
// context run inside that operation: reads share its timestamp and lock, and see
// its staged ledger effects.
//
// A frame belongs to the goroutine running the operation and must not be handed to another.
type frame struct {
	pool         *Pool
	now          uint64
	events       []*Event
	stakersDelta int64
}

func (p *Pool) frameOf(ctx context.Context) *frame {
	if f, ok := ctx.Value(frameKey{}).(*frame); ok && f.pool == p {
		return f
	}
	return nil
}

func (f *frame) emit(ev *Event) {
	ev.Time = f.now
	f.events = append(f.events, ev)
}

// run executes fn as one atomic unit. Ledger effects are journaled and committed
// when fn succeeds, reverted when it fails.
//
// A frame is only reachable from a token hook, that is while the operation's own
// transfer is in flight. Tokens moved by a nested operation could not be taken back
// if the outer one then failed, so nested operations that change state are refused.
func (p *Pool) run(ctx context.Context, op string, fn func(ctx context.Context, f *frame) error) error {
	if f := p.frameOf(ctx); f != nil {
		metricReentrant().AddWithLabel(1, map[string]string{"op": op})
		return reverts.ErrReentrant
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.runLocked(ctx, op, fn)
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": opResult(err)})
	return err
}

func (p *Pool) runLocked(ctx context.Context, op string, fn func(ctx context.Context, f *frame) error) error {
	f := &frame{pool: p, now: p.clock.Now()}
	cp := p.ledger.Checkpoint()
	if err := fn(context.WithValue(ctx, frameKey{}, f), f); err != nil {
		p.ledger.RevertTo(cp)
		return err
	}
	if err := p.ledger.Commit(); err != nil {
		// tokens already moved; the ledger on disk is behind custody until an operator steps in
		logger.Error("ledger commit failed after transfer", "op", op, "err", err)
		return err
	}
	p.afterCommit(ctx, f)
	// still under mu, so the feed sees batches in commit order
	p.pub.enqueue(f.events)
	return nil
}

// view runs a read-only fn under the lock, or inside the current frame.
func (p *Pool) view(ctx context.Context, fn func(now uint64) error) error {
	if f := p.frameOf(ctx); f != nil {
		return fn(f.now)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.clock.Now())
}
