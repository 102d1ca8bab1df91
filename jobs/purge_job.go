package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/devcamper/devcamper-api/internal/jobs"
)

// ResetTokenPurger removes reset tokens that expired before now.
type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// PurgeResetTokensJob clears stale password reset tokens.
type PurgeResetTokensJob struct {
	Store   ResetTokenPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPurgeResetTokensJob wires dependencies for the purge handler.
func NewPurgeResetTokensJob(store ResetTokenPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeResetTokensJob {
	return &PurgeResetTokensJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskTypePurgeResetTokens tasks.
func (j *PurgeResetTokensJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("purge reset tokens: store not configured")
	}
	tracker := j.metrics().Track(TaskTypePurgeResetTokens)
	defer func() { err = tracker.End(err) }()

	n, err := j.Store.PurgeExpiredResetTokens(ctx, j.now())
	if err != nil {
		j.logger().Error("purge reset tokens", slog.Any("error", err))
		return err
	}
	j.logger().Info("purged reset tokens", slog.Int64("count", n))
	return nil
}

func (j *PurgeResetTokensJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypePurgeResetTokens))
	}
	return slog.Default().With(slog.String("job", TaskTypePurgeResetTokens))
}

func (j *PurgeResetTokensJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *PurgeResetTokensJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
