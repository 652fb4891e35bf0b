// Package queue is the bounded in-memory hand-off between a sweep producer
// and its worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Job is the payload flowing through the queue.
type Job = model.EntryJob

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns ErrFull or ErrClosed when the job was
	// not accepted, or the context error.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that receives jobs as they become available.
	// The channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs       chan Job
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.bufferSize = max(q.bufferSize, q.capacity)
	q.jobs = make(chan Job, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe(0)
	return q
}

func (q *InMemoryQueue) observe(size int) {
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) reject(kind string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", kind)
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		q.reject("context_cancelled")
		return err
	}
	if len(q.jobs) >= q.capacity {
		q.reject("capacity_exceeded")
		return ErrFull
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe(len(q.jobs))
		return nil
	default:
		q.reject("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
// The channel is closed once the queue is drained or ctx is done; a job taken
// for a consumer whose ctx ended is put back while the queue is open.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for ctx.Err() == nil {
			var (
				j  Job
				ok bool
			)
			select {
			case j, ok = <-q.jobs:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				q.observe(len(q.jobs))
			case <-ctx.Done():
				q.requeue(j)
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) requeue(j Job) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.closed {
		select {
		case q.jobs <- j:
			return
		default:
		}
	}
	metrics.RecordErrorByComponent("queue", "dropped")
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	q.observe(size)
	return size
}

// Close stops accepting jobs. Queued jobs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
