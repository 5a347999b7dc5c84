package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCompleter struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakeCompleter) CompleteElapsedSchedules(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakeCleaner struct {
	calls atomic.Int32
}

func (f *fakeCleaner) CleanupExpiredTokens(context.Context) (int64, error) {
	f.calls.Add(1)
	return 0, nil
}

func TestScheduleCompletionRunOnce(t *testing.T) {
	job := NewScheduleCompletionJob(&fakeCompleter{n: 4}, time.Hour)
	if got := job.RunOnce(); got != 4 {
		t.Fatalf("expected 4 got %d", got)
	}

	failing := NewScheduleCompletionJob(&fakeCompleter{n: 4, err: errors.New("db down")}, time.Hour)
	if got := failing.RunOnce(); got != 0 {
		t.Fatalf("expected 0 on error got %d", got)
	}
}

func TestScheduleCompletionJobTicks(t *testing.T) {
	completer := &fakeCompleter{}
	job := NewScheduleCompletionJob(completer, 10*time.Millisecond)
	job.Start()

	deadline := time.Now().Add(2 * time.Second)
	for completer.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("job did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}
	job.Stop()

	after := completer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if completer.calls.Load() != after {
		t.Fatalf("job kept running after Stop")
	}
}

func TestTokenCleanupRunsOnStart(t *testing.T) {
	cleaner := &fakeCleaner{}
	job := NewTokenCleanupJob(cleaner, time.Hour)
	job.Start()

	deadline := time.Now().Add(2 * time.Second)
	for cleaner.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("cleanup did not run on start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	job.Stop()
}

func TestJobsWithoutIntervalAreDisabled(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute} {
		cleaner := &fakeCleaner{}
		cleanup := NewTokenCleanupJob(cleaner, interval)
		cleanup.Start()
		cleanup.Stop()
		if cleaner.calls.Load() != 0 {
			t.Fatalf("interval %s: cleanup ran while disabled", interval)
		}

		completer := &fakeCompleter{}
		completion := NewScheduleCompletionJob(completer, interval)
		completion.Start()
		completion.Stop()
		if completer.calls.Load() != 0 {
			t.Fatalf("interval %s: completion ran while disabled", interval)
		}
	}
}
