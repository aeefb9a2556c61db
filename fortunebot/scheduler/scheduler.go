// Package scheduler runs the bot's housekeeping jobs on gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redlantern/fortunebot/fortunebot/logger"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

const (
	JobDrawCooldownSweep = "draw-cooldown-sweep"
	JobAPILimiterSweep   = "api-limiter-sweep"
	JobReviewRehydrate   = "review-rehydrate"

	jobTimeout = 30 * time.Second
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// Rehydrator re-posts review messages that never made it to the channel.
type Rehydrator interface {
	Rehydrate(ctx context.Context) ([]*submissions.Submission, error)
}

type Scheduler struct {
	cron    gocron.Scheduler
	mu      sync.Mutex
	started map[uuid.UUID]time.Time
}

func New(clock clockwork.Clock) (*Scheduler, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Scheduler{started: make(map[uuid.UUID]time.Time)}

	cron, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(slog.Default().With(slog.String("type", "job"))),
		gocron.WithStopTimeout(jobTimeout),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.BeforeJobRuns(s.beforeRun),
				gocron.AfterJobRuns(func(id uuid.UUID, name string) { s.afterRun(id, name, nil) }),
				gocron.AfterJobRunsWithError(s.afterRun),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.cron = cron
	return s, nil
}

// AddSweep runs sw.Sweep every interval.
func (s *Scheduler) AddSweep(name string, every time.Duration, sw Sweeper) (gocron.Job, error) {
	return s.cron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := sw.Sweep(); n > 0 {
				slog.Debug("Swept expired entries",
					slog.String("type", "job"),
					slog.String("name", name),
					slog.Int("removed", n),
				)
			}
		}),
		gocron.WithName(name),
	)
}

// AddRehydrate re-posts orphaned review messages every interval.
func (s *Scheduler) AddRehydrate(every time.Duration, r Rehydrator) (gocron.Job, error) {
	return s.cron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			reposted, err := r.Rehydrate(ctx)
			if err != nil {
				return err
			}
			if len(reposted) > 0 {
				logger.LogSystem("Re-posted review messages", slog.Int("count", len(reposted)))
			}
			return nil
		}),
		gocron.WithName(JobReviewRehydrate),
	)
}

func (s *Scheduler) Jobs() []gocron.Job {
	return s.cron.Jobs()
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.LogSystem("Scheduler started", slog.Int("jobs", len(s.cron.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

// Run starts the jobs and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	return s.Shutdown()
}

func (s *Scheduler) beforeRun(id uuid.UUID, _ string) {
	s.mu.Lock()
	s.started[id] = time.Now()
	s.mu.Unlock()
}

func (s *Scheduler) afterRun(id uuid.UUID, name string, err error) {
	s.mu.Lock()
	start, ok := s.started[id]
	delete(s.started, id)
	s.mu.Unlock()

	var took time.Duration
	if ok {
		took = time.Since(start)
	}
	logger.LogJob(name, took, err)
}
