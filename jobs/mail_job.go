package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/devcamper/devcamper-api/internal/jobs"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
)

// MailJob delivers queued emails.
type MailJob struct {
	Sender  mail.Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMailJob wires dependencies for the mail handler.
func NewMailJob(sender mail.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	return &MailJob{Sender: sender, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeSendEmail tasks. Malformed payloads are not retried.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sender == nil {
		return errors.New("mail job: sender not configured")
	}
	var msg mail.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil || msg.To == "" {
		j.logger().Warn("discard malformed mail task", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeSendEmail)
	defer func() { err = tracker.End(err) }()

	if err = j.Sender.Send(ctx, msg); err != nil {
		j.logger().Error("send queued mail", slog.String("subject", msg.Subject), slog.Any("error", err))
		return err
	}
	j.logger().Info("sent queued mail", slog.String("subject", msg.Subject))
	return nil
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSendEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeSendEmail))
}

func (j *MailJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
