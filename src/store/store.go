// Package store defines the queue of workflow runs awaiting forwarding.
package store

import (
	"context"
	"errors"
)

// ErrInvalidRunID reports a queue entry that is not a positive integer.
var ErrInvalidRunID = errors.New("invalid workflow run ID")

// RunQueue holds run IDs that still need to be forwarded. MarkProcessed is
// idempotent so an interrupted batch can be resumed safely.
type RunQueue interface {
	// Pending returns up to limit unprocessed run IDs in queue order.
	// A limit of zero or less returns all of them.
	Pending(ctx context.Context, limit int) ([]int64, error)

	// MarkProcessed removes a run from the pending set
	MarkProcessed(ctx context.Context, runID int64) error

	// Close releases the underlying resources
	Close() error
}

func capLimit(ids []int64, limit int) []int64 {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
