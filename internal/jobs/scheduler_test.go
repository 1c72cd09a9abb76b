package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claimsat/internal/service"
)

type fakeRunner struct {
	calls  int32
	result service.BatchResult
	err    error
	done   chan struct{}
}

func (f *fakeRunner) RunBatch(ctx context.Context, localDebug bool) (service.BatchResult, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.done != nil {
		close(f.done)
	}
	return f.result, f.err
}

func TestNewSchedulerInvalidSchedule(t *testing.T) {
	if _, err := NewScheduler(&fakeRunner{}, "every tuesday", 0); err == nil {
		t.Error("NewScheduler() error = nil, want parse failure")
	}
}

func TestRunNow(t *testing.T) {
	runner := &fakeRunner{result: service.BatchResult{MissingProcessed: 3, MatchesFound: 2, NewMatches: 1}}
	s, err := NewScheduler(runner, "", 0)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	got, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if got != runner.result {
		t.Errorf("RunNow() = %+v, want %+v", got, runner.result)
	}

	runner.err = errors.New("store unavailable")
	if _, err := s.RunNow(context.Background()); err == nil {
		t.Error("RunNow() error = nil, want failure")
	}

	if status := s.Status(); status.Runs != 2 || status.LastErr == nil {
		t.Errorf("Status() = %+v, want 2 runs with an error", status)
	}
}

func TestSchedulerFires(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	s, err := NewScheduler(runner, "@every 1s", time.Second)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.Start()
	if s.Next().IsZero() {
		t.Error("Next() is zero after Start")
	}

	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled batch did not run")
	}

	<-s.Stop().Done()
	if status := s.Status(); status.Runs < 1 {
		t.Errorf("Status() runs = %d, want at least 1", status.Runs)
	}
}
