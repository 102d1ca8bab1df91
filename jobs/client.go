package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/devcamper/devcamper-api/internal/jobs"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
)

// Client queues mail for the worker.
type Client struct {
	client  *asynq.Client
	metrics *jobmetrics.Metrics
}

// NewClient constructs an Asynq client. A nil metrics uses the process default.
func NewClient(redisOpts asynq.RedisConnOpt, metrics *jobmetrics.Metrics) *Client {
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	return &Client{client: asynq.NewClient(redisOpts), metrics: metrics}
}

// Enqueue queues msg for delivery by the worker.
func (c *Client) Enqueue(ctx context.Context, msg mail.Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return err
	}
	c.metrics.Enqueued(TaskTypeSendEmail)
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
