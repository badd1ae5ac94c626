package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/courtside/internal/domain/model"
)

func job(id string, version uint64) Job {
	return Job{Snapshot: model.Snapshot{ID: id, Version: version}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("m1", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue(ctx)
	if j.MatchID() != "m1" {
		t.Errorf("expected m1, got %v", j.MatchID())
	}
	if j.Enqueued.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithBufferSize(1))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, job(fmt.Sprintf("m%d", i), 1)) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}
	if q.Enqueue(ctx, job("overflow", 1)) {
		t.Error("expected enqueue to fail when queue is full")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const producers, perProducer = 10, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(ctx, job(fmt.Sprintf("m%d", p), uint64(i)))
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	received := 0
	for range q.Dequeue(ctx) {
		received++
	}
	if received != producers*perProducer {
		t.Errorf("expected %d jobs, got %d", producers*perProducer, received)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	q.Enqueue(ctx, job("m1", 1))
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("closing twice should not fail: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, job("m2", 1)) {
		t.Error("expected enqueue to fail after close")
	}

	var drained []string
	for j := range q.Dequeue(ctx) {
		drained = append(drained, j.MatchID())
	}
	if len(drained) != 1 || drained[0] != "m1" {
		t.Errorf("expected queued job to drain after close, got %v", drained)
	}
}
