// Package scheduler implements the module scheduler from spec §4.2: a
// bounded worker pool that fires registered jobs on their own interval,
// bounds per-job overlap, and recovers panics without disturbing other
// jobs' schedules.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"

	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/telemetry"
)

// DefaultWorkers is the bounded worker pool size, spec §4.2.
const DefaultWorkers = 30

// DefaultMaxInstances bounds overlapping executions of a single job.
const DefaultMaxInstances = 5

// Job describes one registered periodic task.
type Job struct {
	ID           string
	Interval     time.Duration
	Coalesce     bool
	MaxInstances int64
	// RunImmediately fires the job once at registration time in addition
	// to its normal interval, matching the DMData keep-alive probe's
	// "runs immediately once" requirement.
	RunImmediately bool
	Fn             func(ctx context.Context)
}

// Scheduler runs registered Jobs on a bounded worker pool.
type Scheduler struct {
	clock   clockwork.Clock
	logger  *telemetry.EventLogger
	metrics *metrics.Registry
	workers *semaphore.Weighted

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	ctx     context.Context
	wg      sync.WaitGroup
}

// New returns a Scheduler with the given worker pool size (0 uses
// DefaultWorkers).
func New(clock clockwork.Clock, logger *telemetry.EventLogger, reg *metrics.Registry, workers int) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:   clock,
		logger:  logger,
		metrics: reg,
		workers: semaphore.NewWeighted(int64(workers)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register starts a goroutine driving job on its configured interval.
// Registration must happen before Stop is called; jobs registered after
// a Stop are silently ignored.
func (s *Scheduler) Register(job Job) {
	if job.MaxInstances <= 0 {
		job.MaxInstances = DefaultMaxInstances
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	jobSem := semaphore.NewWeighted(job.MaxInstances)

	go func() {
		defer s.wg.Done()
		ticker := s.clock.NewTicker(job.Interval)
		defer ticker.Stop()

		if job.RunImmediately {
			s.fire(job, jobSem)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.Chan():
				s.fire(job, jobSem)
			}
		}
	}()
}

// fire attempts one execution of job, bounded by both the shared worker
// pool and the job's own max-instances semaphore. A job that cannot
// acquire its instance slot is skipped — spec §4.2's "missed firings
// are not merged" applies regardless, since each tick is independent.
func (s *Scheduler) fire(job Job, jobSem *semaphore.Weighted) {
	if !jobSem.TryAcquire(1) {
		if s.logger != nil {
			s.logger.LogSchedulerSkip(job.ID)
		}
		if s.metrics != nil {
			s.metrics.SchedulerJobSkipped.WithLabelValues(job.ID).Inc()
		}
		return
	}

	if err := s.workers.Acquire(s.ctx, 1); err != nil {
		jobSem.Release(1)
		return
	}

	go func() {
		defer jobSem.Release(1)
		defer s.workers.Release(1)
		s.runWithRecovery(job)
	}()
}

func (s *Scheduler) runWithRecovery(job Job) {
	start := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.LogSchedulerPanic(job.ID, r)
			}
			if s.metrics != nil {
				s.metrics.SchedulerJobPanics.WithLabelValues(job.ID).Inc()
			}
		}
		if s.metrics != nil {
			s.metrics.SchedulerJobDuration.WithLabelValues(job.ID).Observe(s.clock.Since(start).Seconds())
		}
	}()
	job.Fn(s.ctx)
}

// Stop removes all jobs and stops accepting new executions without
// waiting for in-flight runs to finish, matching spec §4.2's "wait-false
// then tear down" graceful shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
}
