package scheduler

import (
	"context"
	"fmt"

	invoicerepo "business_services_hub/internal/invoices/repository"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/config"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// InvoiceDrafter creates the invoice draft of a booking.
type InvoiceDrafter interface {
	Draft(ctx context.Context, bookingID uuid.UUID, requestedBy *uuid.UUID) (invoicerepo.Invoice, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	invoices InvoiceDrafter
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, invoices InvoiceDrafter, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(invoices, log)
	w.server = server
	return w, nil
}

func newWorker(invoices InvoiceDrafter, log *logger.Logger) *Worker {
	w := &Worker{
		mux:      asynq.NewServeMux(),
		invoices: invoices,
		log:      log,
	}
	w.mux.HandleFunc(TaskInvoiceDraft, w.handleInvoiceDraft)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleInvoiceDraft(ctx context.Context, task *asynq.Task) error {
	err := w.draftInvoice(ctx, task)
	switch {
	case err == nil:
		metrics.IncrementJobProcessed(TaskInvoiceDraft, "success")
	case apperr.Is(err, apperr.KindNotFound):
		// The booking is gone; retrying cannot help.
		metrics.IncrementJobProcessed(TaskInvoiceDraft, "skipped")
		w.log.Warn("invoice draft skipped", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		metrics.IncrementJobProcessed(TaskInvoiceDraft, "error")
	}
	return err
}

func (w *Worker) draftInvoice(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInvoiceDraftPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		return fmt.Errorf("%w: invalid booking id: %v", asynq.SkipRetry, err)
	}

	var requestedBy *uuid.UUID
	if id, err := uuid.Parse(payload.RequestedBy); err == nil {
		requestedBy = &id
	}

	_, err = w.invoices.Draft(ctx, bookingID, requestedBy)
	return err
}
