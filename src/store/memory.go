package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryQueue is an in-memory implementation of RunQueue.
// Useful for testing and for the agent, which is fed from the broker.
type MemoryQueue struct {
	mu        sync.Mutex
	order     []int64
	processed map[int64]bool
}

// NewMemoryQueue creates a queue holding ids in order.
func NewMemoryQueue(ids ...int64) *MemoryQueue {
	q := &MemoryQueue{processed: make(map[int64]bool)}
	q.Enqueue(ids...)
	return q
}

// Enqueue appends ids that are not already queued.
func (q *MemoryQueue) Enqueue(ids ...int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range ids {
		if !slices.Contains(q.order, id) {
			q.order = append(q.order, id)
		}
	}
}

func (q *MemoryQueue) Pending(ctx context.Context, limit int) ([]int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pending []int64
	for _, id := range q.order {
		if !q.processed[id] {
			pending = append(pending, id)
		}
	}
	return capLimit(pending, limit), nil
}

func (q *MemoryQueue) MarkProcessed(ctx context.Context, runID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.processed[runID] = true
	return nil
}

func (q *MemoryQueue) Close() error {
	return nil
}
