package report

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on standard five-field cron specs.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *logger.Logger
}

// NewScheduler creates a Scheduler whose jobs receive ctx.
func NewScheduler(ctx context.Context, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		logger: log.Component("scheduler"),
	}
}

// Register adds job under spec. Overlapping runs of the same job are skipped.
func (s *Scheduler) Register(name, spec string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(name, job)
	}))

	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "register %s job", name)
	}

	s.logger.Info("job registered", zap.String("job", name), zap.String("schedule", spec))

	return nil
}

// RegisterReports schedules g.RunAll.
func (s *Scheduler) RegisterReports(spec string, g *Generator) error {
	return s.Register("reports", spec, g.RunAll)
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next returns the next activation time of the earliest job.
func (s *Scheduler) Next() (time.Time, bool) {
	var next time.Time

	for _, entry := range s.cron.Entries() {
		if next.IsZero() || (!entry.Next.IsZero() && entry.Next.Before(next)) {
			next = entry.Next
		}
	}

	return next, !next.IsZero()
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
	}

	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()

	if err := job(s.ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))

		return
	}

	s.logger.Info("job finished", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
}
