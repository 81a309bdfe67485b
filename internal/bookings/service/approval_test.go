package service

import (
	"context"
	"testing"

	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprovalWriter struct {
	err      error
	approved []uuid.UUID
}

func (f *fakeApprovalWriter) ApproveBooking(_ context.Context, bookingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.approved = append(f.approved, bookingID)
	return nil
}

func TestApprovalServicePublishesAndQueuesInvoice(t *testing.T) {
	writer := &fakeApprovalWriter{}
	invoices := &fakeInvoices{}
	bus := &recordingBus{}
	svc := NewApprovalService(writer, invoices, bus, logger.Discard())
	bookingID := uuid.New()

	require.NoError(t, svc.Approve(context.Background(), bookingID, uuid.New()))

	assert.Equal(t, []uuid.UUID{bookingID}, writer.approved)
	assert.Equal(t, []uuid.UUID{bookingID}, invoices.queued)
	assert.Equal(t, []string{"bookings.status.changed", "invoices.draft.requested"}, bus.names())
}

func TestApprovalServiceConflict(t *testing.T) {
	writer := &fakeApprovalWriter{err: apperr.Conflict("booking is not pending approval")}
	invoices := &fakeInvoices{}
	bus := &recordingBus{}
	svc := NewApprovalService(writer, invoices, bus, logger.Discard())

	err := svc.Approve(context.Background(), uuid.New(), uuid.New())

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Empty(t, invoices.queued)
	assert.Empty(t, bus.names())
}

func TestApprovalServiceKeepsApprovalWhenQueueFails(t *testing.T) {
	invoices := &fakeInvoices{err: errStoreDown}
	bus := &recordingBus{}
	svc := NewApprovalService(&fakeApprovalWriter{}, invoices, bus, logger.Discard())

	require.NoError(t, svc.Approve(context.Background(), uuid.New(), uuid.New()))
	assert.Equal(t, []string{"bookings.status.changed"}, bus.names())
}
