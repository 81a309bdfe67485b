package service

import (
	"context"
	"sync"
	"testing"

	"business_services_hub/internal/events"
	"business_services_hub/internal/invoices/repository"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byBooking map[uuid.UUID]repository.Invoice
	bookings  map[uuid.UUID]repository.Invoice
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byBooking: map[uuid.UUID]repository.Invoice{},
		bookings:  map[uuid.UUID]repository.Invoice{},
	}
}

func (r *memoryRepo) CreateDraft(_ context.Context, bookingID uuid.UUID, requestedBy *uuid.UUID) (repository.Invoice, bool, error) {
	if inv, ok := r.byBooking[bookingID]; ok {
		return inv, false, nil
	}
	template, ok := r.bookings[bookingID]
	if !ok {
		return repository.Invoice{}, false, apperr.NotFound("booking not found")
	}
	template.ID = uuid.New()
	template.BookingID = bookingID
	template.Status = repository.StatusDraft
	template.RequestedBy = requestedBy
	r.byBooking[bookingID] = template
	return template, true, nil
}

func (r *memoryRepo) GetByBooking(_ context.Context, bookingID uuid.UUID) (repository.Invoice, error) {
	inv, ok := r.byBooking[bookingID]
	if !ok {
		return repository.Invoice{}, apperr.NotFound("invoice not found")
	}
	return inv, nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func seededRepo(bookingID, clientID, providerID uuid.UUID) *memoryRepo {
	repo := newMemoryRepo()
	repo.bookings[bookingID] = repository.Invoice{
		ClientID:    clientID,
		ProviderID:  providerID,
		AmountCents: 125000,
		Currency:    "USD",
	}
	return repo
}

func TestDraftIsCreatedOnce(t *testing.T) {
	bookingID, clientID, providerID := uuid.New(), uuid.New(), uuid.New()
	bus := &captureBus{}
	svc := New(seededRepo(bookingID, clientID, providerID), bus, logger.Discard())

	first, err := svc.Draft(context.Background(), bookingID, &providerID)
	require.NoError(t, err)
	second, err := svc.Draft(context.Background(), bookingID, &providerID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.Len(t, bus.events, 1)
	drafted, ok := bus.events[0].(events.InvoiceDrafted)
	require.True(t, ok)
	assert.Equal(t, int64(125000), drafted.AmountCents)
	assert.Equal(t, clientID, drafted.ClientID)
}

func TestDraftUnknownBooking(t *testing.T) {
	bus := &captureBus{}
	_, err := New(newMemoryRepo(), bus, logger.Discard()).Draft(context.Background(), uuid.New(), nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, bus.events)
}

func TestGetForBookingChecksParties(t *testing.T) {
	bookingID, clientID, providerID := uuid.New(), uuid.New(), uuid.New()
	svc := New(seededRepo(bookingID, clientID, providerID), &captureBus{}, logger.Discard())
	_, err := svc.Draft(context.Background(), bookingID, nil)
	require.NoError(t, err)

	_, err = svc.GetForBooking(context.Background(), bookingID, clientID, false)
	assert.NoError(t, err)
	_, err = svc.GetForBooking(context.Background(), bookingID, providerID, false)
	assert.NoError(t, err)
	_, err = svc.GetForBooking(context.Background(), bookingID, uuid.New(), true)
	assert.NoError(t, err)

	_, err = svc.GetForBooking(context.Background(), bookingID, uuid.New(), false)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
