package scheduler

import (
	"context"
	"errors"
	"time"

	"business_services_hub/platform/apperr"
	"business_services_hub/platform/config"
	"business_services_hub/platform/redisconn"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	msgInvoiceDraftQueued = "invoice draft already queued for this booking"

	invoiceDraftMaxRetry  = 5
	invoiceDraftRetention = 24 * time.Hour
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueInvoiceDraft queues the draft job for a booking. The task ID is
// derived from the booking, so a second request while the first job is
// pending or retained is reported as a conflict.
func (c *Client) EnqueueInvoiceDraft(ctx context.Context, bookingID, requestedBy uuid.UUID) error {
	if c == nil || c.client == nil {
		return apperr.Unavailable("job queue not configured", nil)
	}

	task, err := NewInvoiceDraftTask(InvoiceDraftPayload{
		BookingID:   bookingID.String(),
		RequestedBy: requestedBy.String(),
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(invoiceDraftTaskID(bookingID.String())),
		asynq.MaxRetry(invoiceDraftMaxRetry),
		asynq.Retention(invoiceDraftRetention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return apperr.Conflict(msgInvoiceDraftQueued)
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redisconn.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
