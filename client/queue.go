// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import "sync"

// queue is an unbounded multi-producer single-consumer FIFO. Producers
// never block; the consumer parks on a 1-slot wakeup channel, which acts as
// a channel-based condition signal.
type queue struct {
	mu     sync.Mutex
	items  []any
	wakeup chan struct{}
	closed bool
}

func newQueue() *queue {
	return &queue{wakeup: make(chan struct{}, 1)}
}

// push appends item, reporting whether the queue still accepts work.
func (q *queue) push(item any) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wakeup <- struct{}{}:
	default:
	}
	return true
}

// pop blocks until an item is available. It returns false once the queue is
// closed and fully drained.
func (q *queue) pop() (any, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, false
		}
		<-q.wakeup
	}
}

// close stops accepting new items; queued ones can still be popped.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
