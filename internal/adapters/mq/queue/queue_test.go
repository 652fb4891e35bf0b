package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, Job{RunID: "r1", EntryDay: 3, FDVs: []float64{1e8}}); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue(ctx)
	if job.EntryDay != 3 || job.RunID != "r1" {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for day := 0; day < 2; day++ {
		if err := q.Enqueue(ctx, Job{EntryDay: day}); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if err := q.Enqueue(ctx, Job{EntryDay: 2}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, Job{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	const days = 200
	q := NewInMemoryQueue(WithCapacity(days))
	ctx := context.Background()

	for day := 0; day < days; day++ {
		if err := q.Enqueue(ctx, Job{EntryDay: day}); err != nil {
			t.Fatalf("enqueue day %d: %v", day, err)
		}
	}
	_ = q.Close()

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range q.Dequeue(ctx) {
				mu.Lock()
				seen[job.EntryDay]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != days {
		t.Fatalf("expected %d distinct days, got %d", days, len(seen))
	}
	for day, n := range seen {
		if n != 1 {
			t.Errorf("day %d delivered %d times", day, n)
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, Job{EntryDay: 1})
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, Job{EntryDay: 2}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// The queued job is still delivered, then the channel closes.
	jobs := q.Dequeue(ctx)
	timeout := time.After(time.Second)
	delivered := 0
	for {
		select {
		case _, ok := <-jobs:
			if !ok {
				if delivered != 1 {
					t.Errorf("expected 1 delivered job, got %d", delivered)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			delivered++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestInMemoryQueue_ConsumerGone(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	if err := q.Enqueue(context.Background(), Job{RunID: "r1", EntryDay: 7}); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	gone, cancel := context.WithCancel(context.Background())
	stale := q.Dequeue(gone)
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case _, ok := <-stale:
		if ok {
			t.Fatal("expected no job on a cancelled consumer")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue channel not closed after its context ended")
	}

	ctx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	select {
	case job := <-q.Dequeue(ctx):
		if job.EntryDay != 7 || job.RunID != "r1" {
			t.Errorf("unexpected job %+v", job)
		}
	case <-ctx.Done():
		t.Fatal("job held for the cancelled consumer was not handed back")
	}
}
