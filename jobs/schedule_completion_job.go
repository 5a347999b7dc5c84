package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type scheduleCompleter interface {
	CompleteElapsedSchedules(ctx context.Context) (int64, error)
}

// ScheduleCompletionJob marks active schedules whose end date has passed as
// completed.
type ScheduleCompletionJob struct {
	completer scheduleCompleter
	interval  time.Duration
	stopChan  chan struct{}
	done      chan struct{}
}

func NewScheduleCompletionJob(completer scheduleCompleter, interval time.Duration) *ScheduleCompletionJob {
	return &ScheduleCompletionJob{
		completer: completer,
		interval:  interval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (j *ScheduleCompletionJob) Start() {
	if j.interval <= 0 {
		close(j.done)
		zap.L().Info("schedule completion job disabled", zap.Duration("interval", j.interval))
		return
	}
	go j.run()
	zap.L().Info("schedule completion job started", zap.Duration("interval", j.interval))
}

// Stop waits for an in-flight run to finish.
func (j *ScheduleCompletionJob) Stop() {
	close(j.stopChan)
	<-j.done
	zap.L().Info("schedule completion job stopped")
}

func (j *ScheduleCompletionJob) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single pass and returns how many schedules it completed.
func (j *ScheduleCompletionJob) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.completer.CompleteElapsedSchedules(ctx)
	if err != nil {
		zap.L().Error("failed to complete elapsed schedules", zap.Error(err))
		return 0
	}
	if n > 0 {
		zap.L().Info("completed elapsed schedules", zap.Int64("count", n))
	}
	return n
}
