package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskInvoiceDraft = "invoices.draft"

type InvoiceDraftPayload struct {
	BookingID   string `json:"bookingId"`
	RequestedBy string `json:"requestedBy"`
}

func NewInvoiceDraftTask(payload InvoiceDraftPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceDraft, data), nil
}

func ParseInvoiceDraftPayload(task *asynq.Task) (InvoiceDraftPayload, error) {
	var payload InvoiceDraftPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return InvoiceDraftPayload{}, err
	}
	return payload, nil
}

// invoiceDraftTaskID makes the queue reject a second draft job for a booking.
func invoiceDraftTaskID(bookingID string) string {
	return "invoice-draft:" + bookingID
}
