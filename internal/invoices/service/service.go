package service

import (
	"context"

	"business_services_hub/internal/events"
	"business_services_hub/internal/invoices/repository"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
)

const msgNotParticipant = "you are not a participant of this booking"

type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Draft creates the booking's invoice draft once. Repeated calls return the
// existing draft and publish nothing.
func (s *Service) Draft(ctx context.Context, bookingID uuid.UUID, requestedBy *uuid.UUID) (repository.Invoice, error) {
	inv, created, err := s.repo.CreateDraft(ctx, bookingID, requestedBy)
	if err != nil {
		return repository.Invoice{}, err
	}
	if !created {
		s.log.Info("invoice draft already exists", "bookingId", bookingID, "invoiceId", inv.ID)
		return inv, nil
	}

	s.log.Info("invoice draft created", "bookingId", bookingID, "invoiceId", inv.ID)
	s.bus.Publish(ctx, events.InvoiceDrafted{
		BaseEvent:   events.NewBaseEvent(),
		InvoiceID:   inv.ID,
		BookingID:   inv.BookingID,
		ClientID:    inv.ClientID,
		ProviderID:  inv.ProviderID,
		AmountCents: inv.AmountCents,
		Currency:    inv.Currency,
	})
	return inv, nil
}

// GetForBooking returns the invoice when userID is one of its parties.
func (s *Service) GetForBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (repository.Invoice, error) {
	inv, err := s.repo.GetByBooking(ctx, bookingID)
	if err != nil {
		return repository.Invoice{}, err
	}
	if !isAdmin && userID != inv.ClientID && userID != inv.ProviderID {
		return repository.Invoice{}, apperr.Forbidden(msgNotParticipant)
	}
	return inv, nil
}
