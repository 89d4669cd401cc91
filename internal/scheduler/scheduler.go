package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-notify/internal/weather"
)

// Runner is the part of weather.Service the scheduler drives.
type Runner interface {
	Execute(ctx context.Context, f weather.Flags) error
}

// Job is one recurring invocation: either a fixed interval or a cron spec.
type Job struct {
	Flags   weather.Flags
	Every   time.Duration
	Cron    string
	Timeout time.Duration
}

// Scheduler periodically runs the weather notification in a long-lived
// process, which is where the result cache pays off.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	job       Job
}

// New creates a new Scheduler.
func New(runner Runner, job Job) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	// Runs never overlap; the cache and retry state assume one run at a time.
	s.SingletonModeAll()

	if job.Timeout <= 0 {
		job.Timeout = 2 * time.Minute
	}
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		job:       job,
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	var sched *gocron.Scheduler
	switch {
	case s.job.Cron != "":
		sched = s.scheduler.Cron(s.job.Cron)
	case s.job.Every > 0:
		sched = s.scheduler.Every(s.job.Every)
	default:
		return fmt.Errorf("scheduler: either an interval or a cron expression is required")
	}

	_, err := sched.Do(s.runOnce)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler started (every=%s cron=%q)", s.job.Every, s.job.Cron)
	return nil
}

func (s *Scheduler) runOnce() {
	log.Println("INFO: scheduler: running weather notification job")

	ctx, cancel := context.WithTimeout(context.Background(), s.job.Timeout)
	defer cancel()

	ctx = weather.WithRunID(ctx)
	if err := s.runner.Execute(ctx, s.job.Flags); err != nil {
		log.Printf("WARN: scheduler: run %s handled failure: %v", weather.RunID(ctx), err)
	}
	log.Println("INFO: scheduler: completed weather notification job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
