// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/cactusfi/cactus/co"
)

// publisher hands committed events to the feed from a single goroutine.
// Committers only append to the queue, so no pool lock is held while a subscriber is being served.
type publisher struct {
	feed  *event.Feed
	mu    sync.Mutex
	queue []*Event
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
	goes  co.Goes
}

func newPublisher(feed *event.Feed) *publisher {
	pb := &publisher{
		feed: feed,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	pb.goes.Go(pb.loop)
	return pb
}

// enqueue appends a committed batch. Batches are sent in the order they were enqueued.
func (pb *publisher) enqueue(events []*Event) {
	if len(events) == 0 {
		return
	}
	pb.mu.Lock()
	pb.queue = append(pb.queue, events...)
	pb.mu.Unlock()

	select {
	case pb.wake <- struct{}{}:
	default:
	}
}

func (pb *publisher) take() []*Event {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	batch := pb.queue
	pb.queue = nil
	return batch
}

func (pb *publisher) loop() {
	for {
		select {
		case <-pb.done:
			return
		case <-pb.wake:
		}
		for batch := pb.take(); len(batch) > 0; batch = pb.take() {
			for _, ev := range batch {
				select {
				case <-pb.done:
					return
				default:
				}
				pb.feed.Send(ev)
			}
		}
	}
}

// close stops the goroutine once the event being sent, if any, is accepted.
// Undelivered events are dropped.
func (pb *publisher) close() {
	pb.once.Do(func() { close(pb.done) })
	pb.goes.Wait()
}
