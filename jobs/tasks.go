package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/devcamper/devcamper-api/internal/jobs"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePurgeResetTokens clears password reset tokens past their expiry.
	TaskTypePurgeResetTokens = "users:purge-reset-tokens"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// NewSendEmailTask constructs an Asynq task carrying msg.
func NewSendEmailTask(msg mail.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// NewPurgeResetTokensTask constructs the periodic reset-token cleanup task.
func NewPurgeResetTokensTask() *asynq.Task {
	return asynq.NewTask(TaskTypePurgeResetTokens, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}
