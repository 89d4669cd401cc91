package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-notify/internal/weather"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type countingRunner struct {
	runs     atomic.Int32
	checkRun atomic.Bool
	runIDs   chan string
}

func (r *countingRunner) Execute(ctx context.Context, f weather.Flags) error {
	r.runs.Add(1)
	r.checkRun.Store(f.CheckRain)
	select {
	case r.runIDs <- weather.RunID(ctx):
	default:
	}
	return errors.New("handled")
}

func TestSchedulerRunsEveryInterval(t *testing.T) {
	runner := &countingRunner{runIDs: make(chan string, 8)}
	s := New(runner, Job{Flags: weather.Flags{CheckRain: true}, Every: 20 * time.Millisecond})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs, got %d", runner.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if !runner.checkRun.Load() {
		t.Fatalf("job flags were not passed to the runner")
	}
	first, second := <-runner.runIDs, <-runner.runIDs
	if first == "" || first == second {
		t.Fatalf("each run needs its own id, got %q and %q", first, second)
	}
}

func TestSchedulerRequiresSchedule(t *testing.T) {
	s := New(&countingRunner{}, Job{})
	if err := s.Start(); err == nil {
		t.Fatalf("expected error without interval or cron")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := New(&countingRunner{}, Job{Cron: "every morning"})
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected error for an invalid cron expression")
	}
}
