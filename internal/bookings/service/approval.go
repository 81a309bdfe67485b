package service

import (
	"context"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/events"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
)

// ApprovalService backs the booking approval endpoint. The status change and
// the follow-up work it triggers happen in one place.
type ApprovalService struct {
	writer   ApprovalWriter
	invoices InvoiceScheduler
	bus      events.Bus
	log      *logger.Logger
}

// NewApprovalService creates a new approval service.
func NewApprovalService(writer ApprovalWriter, invoices InvoiceScheduler, bus events.Bus, log *logger.Logger) *ApprovalService {
	return &ApprovalService{writer: writer, invoices: invoices, bus: bus, log: log}
}

// Approve moves a pending booking to approved, notifies the participants and
// queues the invoice draft. Approving an already approved booking is a conflict.
func (s *ApprovalService) Approve(ctx context.Context, bookingID, actorID uuid.UUID) error {
	if err := s.writer.ApproveBooking(ctx, bookingID); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.BookingStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		BookingID: bookingID,
		ActorID:   actorID,
		Status:    domain.BookingApproved,
	})

	if err := s.invoices.EnqueueInvoiceDraft(ctx, bookingID, actorID); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil
		}
		// The approval stands; the draft can still be requested by hand.
		s.log.Error("failed to queue invoice draft after approval", "bookingId", bookingID, "error", err)
		return nil
	}

	s.bus.Publish(ctx, events.InvoiceDraftRequested{
		BaseEvent:   events.NewBaseEvent(),
		BookingID:   bookingID,
		RequestedBy: actorID,
	})
	return nil
}
