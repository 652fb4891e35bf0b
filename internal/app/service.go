// Package service runs calculator scenarios: single simulations and
// concurrent entry-timing sweeps.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ytairdrop/internal/adapters/mq/queue"
	"github.com/okian/ytairdrop/internal/adapters/mq/worker"
	"github.com/okian/ytairdrop/internal/adapters/repository"
	"github.com/okian/ytairdrop/internal/domain/dedupe"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/simulation"
	"github.com/okian/ytairdrop/internal/domain/sweep"
	"github.com/okian/ytairdrop/pkg/logger"
	"github.com/okian/ytairdrop/pkg/metrics"
)

// ErrCancelled wraps the context error of an interrupted sweep.
var ErrCancelled = errors.New("sweep cancelled")

// Service evaluates one scenario. It holds no mutable state between calls
// and is safe for concurrent use.
type Service struct {
	scenario simulation.Scenario

	workerCount int
	queueSize   int

	logger logger.Logger
	newID  func() string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of sweep workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the job queue capacity. A sweep never uses less than
// one slot per candidate day.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the run ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a Service for scenario.
func New(scenario simulation.Scenario, opts ...Option) *Service {
	s := &Service{
		scenario:    scenario,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		logger:      logger.Nop(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scenario returns the scenario the service evaluates.
func (s *Service) Scenario() simulation.Scenario { return s.scenario }

// Simulate runs the scenario once at its configured entry days.
func (s *Service) Simulate(ctx context.Context) (model.SimulationResult, error) {
	runID := s.newID()
	log := s.logger.With(
		logger.String("run_id", runID),
		logger.String("mode", "simulate"),
		logger.Int("duration_days", s.scenario.Duration),
	)
	log.Info(ctx, "simulation started", logger.Int("positions", len(s.scenario.Positions)))

	start := time.Now()
	res, err := simulation.Run(s.scenario)
	if err != nil {
		metrics.RecordErrorByComponent("simulation", "invalid_config")
		log.Error(ctx, "simulation failed", logger.Error(err))
		return model.SimulationResult{}, err
	}
	res.RunID = runID

	elapsed := time.Since(start)
	metrics.RecordSimulation("simulate", float64(elapsed.Microseconds())/1000, res.NetworkPoints, res.UserShare)
	log.Info(ctx, "simulation finished",
		logger.Float64("network_points", res.NetworkPoints),
		logger.Float64("user_points", res.UserPoints),
		logger.Float64("user_share", res.UserShare),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

// SweepResult is the outcome of one sweep.
type SweepResult struct {
	RunID         string
	NetworkPoints float64

	// Days are the candidate entry days that were evaluated, in input order.
	Days []int
	FDVs []float64

	// Rows holds every evaluated row sorted by FDV then rank.
	Rows sweep.Rows

	// Top holds the best rows per FDV when a limit was requested.
	Top map[float64][]model.SweepRow

	Elapsed time.Duration
}

// Sweep evaluates every candidate entry day against every FDV. A nil days
// slice means every day of the program. top limits the per-FDV ranking in
// the result; zero or less skips it.
func (s *Service) Sweep(ctx context.Context, days []int, top int) (SweepResult, error) {
	runID := s.newID()
	log := s.logger.With(
		logger.String("run_id", runID),
		logger.String("mode", "sweep"),
		logger.Int("duration_days", s.scenario.Duration),
	)
	start := time.Now()

	engine, err := sweep.NewEngine(s.scenario)
	if err != nil {
		metrics.RecordErrorByComponent("sweep", "invalid_config")
		log.Error(ctx, "sweep setup failed", logger.Error(err))
		return SweepResult{}, err
	}

	candidates := dedupe.EntryDays(days, engine.Days())
	fdvs := dedupe.FDVs(s.scenario.FDVs)
	log.Info(ctx, "sweep started",
		logger.Int("entry_days", len(candidates)),
		logger.Int("fdvs", len(fdvs)),
		logger.Int("workers", s.workerCount),
	)

	q := queue.NewInMemoryQueue(
		queue.WithCapacity(max(s.queueSize, len(candidates), 1)),
	)
	store := repository.NewTreapStore(
		repository.WithCapacityHint(len(candidates) * len(fdvs)),
	)
	pool := worker.NewPool(s.workerCount, q, engine, store,
		worker.WithPoolLogger(log.Named("worker")),
	)
	pool.Start(ctx)

	for _, day := range candidates {
		job := model.EntryJob{RunID: runID, EntryDay: day, FDVs: fdvs}
		if err := q.Enqueue(ctx, job); err != nil {
			_ = pool.Shutdown(context.WithoutCancel(ctx))
			_ = pool.Wait()
			return SweepResult{}, s.abort(ctx, log, fmt.Errorf("enqueue entry day %d: %w", day, err))
		}
	}
	_ = q.Close()

	if err := pool.Wait(); err != nil {
		metrics.RecordErrorByComponent("sweep", "evaluate_error")
		log.Error(ctx, "sweep failed", logger.Error(err))
		return SweepResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SweepResult{}, s.abort(ctx, log, err)
	}

	res := SweepResult{
		RunID:         runID,
		NetworkPoints: engine.NetworkPoints(),
		Days:          candidates,
		FDVs:          fdvs,
		Rows:          sweep.Rows(store.Rows(ctx)),
		Elapsed:       time.Since(start),
	}
	if top > 0 {
		res.Top = make(map[float64][]model.SweepRow, len(fdvs))
		for _, fdv := range store.FDVs(ctx) {
			entries, err := store.TopN(ctx, fdv, top)
			if err != nil {
				return SweepResult{}, err
			}
			rows := make([]model.SweepRow, len(entries))
			for i, e := range entries {
				rows[i] = e.Row
			}
			res.Top[fdv] = rows
		}
	}

	for _, fdv := range res.Rows.FDVs() {
		best, _ := res.Rows.Best(fdv)
		metrics.UpdateSweepSummary(fdv, res.Rows.ProfitableCount(fdv), best.ROIOr(0))
	}
	metrics.RecordSweepRows(len(res.Rows))
	metrics.RecordSweepDuration(float64(res.Elapsed.Microseconds())/1000, res.NetworkPoints)

	log.Info(ctx, "sweep finished",
		logger.Int("rows", len(res.Rows)),
		logger.Int("jobs", int(pool.Processed())),
		logger.Float64("network_points", res.NetworkPoints),
		logger.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (s *Service) abort(ctx context.Context, log logger.Logger, err error) error {
	if cause := ctx.Err(); cause != nil {
		metrics.RecordErrorByComponent("sweep", "cancelled")
		log.Warn(ctx, "sweep cancelled", logger.Error(cause))
		return fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	metrics.RecordErrorByComponent("sweep", "enqueue_error")
	log.Error(ctx, "sweep aborted", logger.Error(err))
	return err
}
