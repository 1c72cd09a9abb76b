package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/robfig/cron/v3"

	"github.com/claimsat/internal/service"
)

// DefaultSchedule runs batch matching every fifteen minutes
const DefaultSchedule = "*/15 * * * *"

// BatchRunner is the part of the reunification service the scheduler drives
type BatchRunner interface {
	RunBatch(ctx context.Context, localDebug bool) (service.BatchResult, error)
}

// Scheduler runs reunification batch matching on a cron schedule. Overlapping runs
// are skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	timeout time.Duration

	mu      sync.Mutex
	runs    int
	last    service.BatchResult
	lastErr error
}

// cronLogger routes cron's own logging through apex/log
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func pairs(keysAndValues []interface{}) log.Fields {
	fields := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// NewScheduler registers the batch job. timeout bounds each run; zero means no limit.
func NewScheduler(runner BatchRunner, schedule string, timeout time.Duration) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		runner:  runner,
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid batch schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.RunNow(ctx)
	if err != nil {
		log.WithError(err).Error("Scheduled batch matching failed")
		return
	}
	log.WithFields(log.Fields{
		"missing":   result.MissingProcessed,
		"survivors": result.SurvivorsScanned,
		"matches":   result.MatchesFound,
		"new":       result.NewMatches,
		"duration":  result.Duration,
	}).Info("Scheduled batch matching finished")
}

// RunNow runs one batch immediately and records its outcome
func (s *Scheduler) RunNow(ctx context.Context) (service.BatchResult, error) {
	result, err := s.runner.RunBatch(ctx, false)

	s.mu.Lock()
	s.runs++
	s.last, s.lastErr = result, err
	s.mu.Unlock()

	return result, err
}

// Status is the outcome of the most recent run
type Status struct {
	Runs    int
	Last    service.BatchResult
	LastErr error
}

// Status reports how many runs have completed and how the last one went
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Runs: s.runs, Last: s.last, LastErr: s.lastErr}
}

// Next returns when the batch job fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Start begins running the schedule in its own goroutine
func (s *Scheduler) Start() {
	log.Info("Starting batch matching scheduler")
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any running
// batch has finished
func (s *Scheduler) Stop() context.Context {
	log.Info("Stopping batch matching scheduler")
	return s.cron.Stop()
}
