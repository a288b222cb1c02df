// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := newQueue()

	for i := range 10 {
		assert.True(t, q.push(i))
	}
	assert.Equal(t, 10, q.len())

	for i := range 10 {
		item, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}
}

func TestQueueCloseDrains(t *testing.T) {
	q := newQueue()
	q.push("a")
	q.push("b")
	q.close()

	assert.False(t, q.push("c"), "push after close must be refused")

	item, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "a", item)

	item, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "b", item)

	_, ok = q.pop()
	assert.False(t, ok)
}

func TestQueueBlockingPop(t *testing.T) {
	q := newQueue()

	got := make(chan any, 1)
	go func() {
		item, _ := q.pop()
		got <- item
	}()

	q.push("wake")
	assert.Equal(t, "wake", <-got)
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := newQueue()

	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.push(i)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
		q.close()
	}()

	var count int
	for {
		if _, ok := q.pop(); !ok {
			break
		}
		count++
	}
	<-done
	assert.Equal(t, producers*perProducer, count)
}
