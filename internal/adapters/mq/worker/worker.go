// Package worker evaluates queued entry-day jobs against a shared, read-only
// sweep engine and records the resulting rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/pkg/logger"
	"github.com/okian/ytairdrop/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = model.EntryJob

// Evaluator produces the rows of one entry day. It must be safe for
// concurrent use.
type Evaluator interface {
	EvaluateDay(day int, fdvs []float64) ([]model.SweepRow, error)
}

// Recorder stores evaluated rows.
type Recorder interface {
	Upsert(ctx context.Context, row model.SweepRow) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its queue drains or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	recorder  Recorder
	name      string

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	// onResult is called after every job; the pool uses it for accounting.
	onResult func(rows int, err error)

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		evaluator: evaluator,
		recorder:  recorder,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		onResult:  func(int, error) {},
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// The dequeue goroutine lives as long as this loop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			rows, err := w.process(ctx, job)
			if err != nil {
				w.logger.Error(ctx, "error processing entry day",
					logger.String("run_id", job.RunID),
					logger.Int("entry_day", job.EntryDay),
					logger.Error(err),
				)
			}
			w.onResult(rows, err)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rows, err := w.evaluator.EvaluateDay(job.EntryDay, job.FDVs)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluate_error")
		return 0, fmt.Errorf("evaluate entry day %d: %w", job.EntryDay, err)
	}
	for _, row := range rows {
		if err := w.recorder.Upsert(ctx, row); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "record_error")
			return 0, fmt.Errorf("record entry day %d: %w", job.EntryDay, err)
		}
	}
	w.logger.Debug(ctx, "entry day evaluated",
		logger.Int("entry_day", job.EntryDay),
		logger.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      sync.WaitGroup

	active    atomic.Int64
	processed atomic.Int64
	rows      atomic.Int64

	mu   sync.Mutex
	errs []error

	logger logger.Logger
}

// NewPool creates a pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, recorder Recorder, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.workers {
		w := NewInMemoryWorker(queue, evaluator, recorder,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
		w.onResult = p.record
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

func (p *Pool) record(rows int, err error) {
	p.processed.Add(1)
	if err != nil {
		p.mu.Lock()
		p.errs = append(p.errs, err)
		p.mu.Unlock()
		return
	}
	p.rows.Add(int64(rows))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			metrics.UpdateWorkerActiveCount(int(p.active.Add(1)))
			defer func() { metrics.UpdateWorkerActiveCount(int(p.active.Add(-1))) }()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has exited, which happens once the queue is
// closed and drained or the context is done. It returns the joined job errors.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

// Processed returns the number of jobs handled, successful or not.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Rows returns the number of rows recorded.
func (p *Pool) Rows() int64 { return p.rows.Load() }

// Shutdown closes the queue when it can be closed and stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
