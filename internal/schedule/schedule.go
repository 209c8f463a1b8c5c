package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 10 * time.Minute

// Job is the work run on every tick.
type Job func(ctx context.Context) error

// Scheduler runs one job on a standard five-field cron expression.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	entryID cron.EntryID
	job     Job
	logger  *slog.Logger
}

// New parses spec and registers job. An empty spec yields a disabled
// scheduler whose Start and Stop are no-ops.
func New(spec string, loc *time.Location, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{spec: spec, job: job, logger: logger}
	if spec == "" {
		return s, nil
	}
	if loc == nil {
		loc = time.Local
	}

	s.cron = cron.New(cron.WithLocation(loc))
	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) Enabled() bool { return s.cron != nil }

// Next reports the next activation time, or the zero time when disabled or
// not yet started.
func (s *Scheduler) Next() time.Time {
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) Start() {
	if s.cron == nil {
		s.logger.Info("scheduled refresh disabled")
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.spec, "next", s.Next())
}

// Stop halts the scheduler and waits for a running job to finish or for ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduled job still running at shutdown")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.logger.Info("scheduled job finished", "duration_ms", time.Since(start).Milliseconds())
}
