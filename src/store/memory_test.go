package store

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryQueue_PendingAndMarkProcessed(t *testing.T) {
	q := NewMemoryQueue(3, 1, 2, 1)
	defer q.Close()

	ctx := context.Background()

	pending, err := q.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if !reflect.DeepEqual(pending, []int64{3, 1, 2}) {
		t.Errorf("Expected [3 1 2], got %v", pending)
	}

	if err := q.MarkProcessed(ctx, 1); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	if err := q.MarkProcessed(ctx, 1); err != nil {
		t.Fatalf("second MarkProcessed failed: %v", err)
	}

	pending, _ = q.Pending(ctx, 0)
	if !reflect.DeepEqual(pending, []int64{3, 2}) {
		t.Errorf("Expected [3 2], got %v", pending)
	}
}

func TestMemoryQueue_Limit(t *testing.T) {
	q := NewMemoryQueue(1, 2, 3)

	pending, err := q.Pending(context.Background(), 2)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if !reflect.DeepEqual(pending, []int64{1, 2}) {
		t.Errorf("Expected [1 2], got %v", pending)
	}
}

func TestMemoryQueue_ImplementsRunQueue(t *testing.T) {
	var _ RunQueue = NewMemoryQueue()
	var _ RunQueue = &FileQueue{}
	var _ RunQueue = &PostgresQueue{}
}
