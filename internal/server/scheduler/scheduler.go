package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
)

// JobFunc is one schedulable unit of work. Errors are logged by the
// scheduler; retry happens on the next firing, never in-line.
type JobFunc func(ctx context.Context) error

type job struct {
	name       string
	fn         JobFunc
	interval   time.Duration
	daily      bool
	dailyHour  int
	dailyMin   int
	loc        *time.Location
	runAtStart bool
	running    atomic.Bool
}

// Scheduler drives interval and fixed-daily-time jobs, one goroutine
// each. A job that is still running when its next firing arrives has
// that firing skipped; there is no queueing and no intra-job locking.
type Scheduler struct {
	jobs []*job
	log  logging.Logger
	wg   sync.WaitGroup
}

func New(log logging.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// AddInterval registers a job fired every interval. With runAtStart the
// first firing happens immediately when Start is called.
func (s *Scheduler) AddInterval(name string, interval time.Duration, runAtStart bool, fn JobFunc) {
	s.jobs = append(s.jobs, &job{
		name:       name,
		fn:         fn,
		interval:   interval,
		runAtStart: runAtStart,
	})
}

// AddDaily registers a job fired once a day at the given wall-clock
// time in loc.
func (s *Scheduler) AddDaily(name string, hour, minute int, loc *time.Location, runAtStart bool, fn JobFunc) {
	s.jobs = append(s.jobs, &job{
		name:       name,
		fn:         fn,
		daily:      true,
		dailyHour:  hour,
		dailyMin:   minute,
		loc:        loc,
		runAtStart: runAtStart,
	})
}

// Start launches every registered job. Cancelling ctx stops further
// firings; a tick already in flight always finishes. Wait blocks until
// every loop (and its current tick) has returned.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		j := j
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx, j)
		}()
	}
	s.log.Info(ctx, "scheduler started", "jobs", len(s.jobs))
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	if j.runAtStart {
		s.fire(ctx, j)
	}

	for {
		var fireAt <-chan time.Time
		var timer *time.Timer
		if j.daily {
			timer = time.NewTimer(untilNextDaily(time.Now().In(j.loc), j.dailyHour, j.dailyMin))
		} else {
			timer = time.NewTimer(j.interval)
		}
		fireAt = timer.C

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info(context.WithoutCancel(ctx), "job loop stopping", "job", j.name)
			return
		case <-fireAt:
			s.fire(ctx, j)
		}
	}
}

// fire runs one tick. The job gets a context detached from the
// scheduler's so shutdown never cancels it mid-run.
func (s *Scheduler) fire(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		s.log.Warn(ctx, "previous run still in progress, skipping tick", "job", j.name)
		return
	}
	defer j.running.Store(false)

	runCtx := context.WithoutCancel(ctx)
	log := s.log.With("job", j.name, "run_id", uuid.NewString())

	start := time.Now()
	log.Debug(runCtx, "job run starting")
	if err := j.fn(runCtx); err != nil {
		log.Error(runCtx, "job run failed", "elapsed", time.Since(start), "error", err)
		return
	}
	log.Info(runCtx, "job run finished", "elapsed", time.Since(start))
}

// untilNextDaily returns the wait until the next hh:mm after now.
func untilNextDaily(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
