// Package gasprice produces EIP-1559 fee suggestions per chain, applies
// chain-specific bumping rules and floors, and maintains a rolling minimum
// window used to validate client-submitted prices.
package gasprice

import (
	"math/big"
	"sync"
)

// observation is one (price, timestampMs) sample.
type observation struct {
	price *big.Int
	tsMs  int64
}

// rollingQueue is a bounded deque with per-second coalescing: at most one
// entry per second, holding that second's minimum. A plain slice suffices
// given the capacity is always tiny.
type rollingQueue struct {
	mu       sync.Mutex
	capacity int
	entries  []observation
}

func newRollingQueue(capacity int) *rollingQueue {
	if capacity <= 0 {
		capacity = 10
	}
	return &rollingQueue{capacity: capacity}
}

// Insert pushes a new per-second bucket, or overwrites the current tail in
// place if a lower price arrives within the same second, or no-ops if the
// incoming price isn't lower.
func (q *rollingQueue) Insert(price *big.Int, tsMs int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		q.entries = append(q.entries, observation{price: price, tsMs: tsMs})
		return
	}

	tail := &q.entries[len(q.entries)-1]
	if tsMs-tail.tsMs >= 1000 {
		q.entries = append(q.entries, observation{price: price, tsMs: tsMs})
		if len(q.entries) > q.capacity {
			q.entries = q.entries[len(q.entries)-q.capacity:]
		}
		return
	}

	if price.Cmp(tail.price) < 0 {
		tail.price = price
		tail.tsMs = tsMs
	}
}

// Min returns the minimum price currently tracked, and whether the queue
// holds any entries at all.
func (q *rollingQueue) Min() (*big.Int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, false
	}

	min := q.entries[0].price
	for _, e := range q.entries[1:] {
		if e.price.Cmp(min) < 0 {
			min = e.price
		}
	}
	return min, true
}

// Depth reports the current entry count, for the queue-depth telemetry
// gauge exported to operators as a leading indicator of a stalled fetch.
func (q *rollingQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
