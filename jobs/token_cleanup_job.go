package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type tokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// TokenCleanupJob deletes expired refresh tokens.
type TokenCleanupJob struct {
	cleaner  tokenCleaner
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

func NewTokenCleanupJob(cleaner tokenCleaner, interval time.Duration) *TokenCleanupJob {
	return &TokenCleanupJob{
		cleaner:  cleaner,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *TokenCleanupJob) Start() {
	if j.interval <= 0 {
		close(j.done)
		zap.L().Info("token cleanup job disabled", zap.Duration("interval", j.interval))
		return
	}
	go j.run()
	zap.L().Info("token cleanup job started", zap.Duration("interval", j.interval))
}

func (j *TokenCleanupJob) Stop() {
	close(j.stopChan)
	<-j.done
	zap.L().Info("token cleanup job stopped")
}

func (j *TokenCleanupJob) run() {
	defer close(j.done)

	// clear what piled up while the server was down
	j.cleanup()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopChan:
			return
		}
	}
}

func (j *TokenCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.cleaner.CleanupExpiredTokens(ctx)
	if err != nil {
		zap.L().Error("failed to clean up refresh tokens", zap.Error(err))
		return
	}
	zap.L().Info("expired refresh tokens removed", zap.Int64("count", n))
}
