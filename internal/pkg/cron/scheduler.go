package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled job. Fn receives the tick time in UTC.
type Job struct {
	Name string
	Spec string
	Fn   func(ctx context.Context, now time.Time) error
}

// DefaultStopTimeout bounds how long Stop waits for running jobs before cancelling them.
const DefaultStopTimeout = 30 * time.Second

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs        []Job
	cron        *robfig.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	now         func() time.Time
	stopTimeout time.Duration
}

// NewScheduler creates a new cron scheduler running on the UTC calendar
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slogLogger{}
	return &Scheduler{
		jobs: make([]Job, 0),
		cron: robfig.New(
			robfig.WithLocation(time.UTC),
			robfig.WithLogger(logger),
			robfig.WithChain(robfig.Recover(logger), robfig.SkipIfStillRunning(logger)),
		),
		ctx:         ctx,
		cancel:      cancel,
		now:         func() time.Time { return time.Now().UTC() },
		stopTimeout: DefaultStopTimeout,
	}
}

// AddJob adds a job to the scheduler. spec is a standard five field cron expression.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := robfig.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q for job %s: %w", spec, name, err)
	}
	for _, j := range s.jobs {
		if j.Name == name {
			return fmt.Errorf("cron job %s already registered", name)
		}
	}

	job := Job{Name: name, Spec: spec, Fn: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.executeJob(s.ctx, job, s.now()) }); err != nil {
		return fmt.Errorf("register cron job %s: %w", name, err)
	}

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", name, "spec", spec)
	return nil
}

// Jobs returns a copy of the registry
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.Jobs()))
}

// Stop prevents new runs and lets running jobs finish. Jobs still running after
// the stop timeout see their context cancelled.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-time.After(s.stopTimeout):
		slog.Warn("Cron jobs still running, cancelling", "timeout", s.stopTimeout)
		s.cancel()
		<-done.Done()
	}

	s.cancel()
	slog.Info("Cron scheduler stopped")
}

// Fire runs the named job immediately as if it ticked at now
func (s *Scheduler) Fire(ctx context.Context, name string, now time.Time) error {
	for _, job := range s.Jobs() {
		if job.Name == name {
			return s.executeJob(ctx, job, now.UTC())
		}
	}
	return fmt.Errorf("cron job %s not registered", name)
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	for _, job := range s.Jobs() {
		_ = s.executeJob(ctx, job, now.UTC())
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job Job, now time.Time) error {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name, "tick", now)

	err := job.Fn(ctx, now)
	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
	return err
}

// slogLogger routes the cron library's own messages to slog
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
