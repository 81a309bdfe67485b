package service

import (
	"context"
	"testing"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func pendingSnapshot() domain.Snapshot {
	return domain.Snapshot{Booking: domain.Booking{
		ID:         uuid.New(),
		Status:     domain.BookingPending,
		ClientID:   uuid.New(),
		ProviderID: uuid.New(),
	}}
}

func newStatusService(fetcher SnapshotFetcher) *StatusService {
	svc := NewStatusService(fetcher, logger.Discard())
	svc.now = func() time.Time { return statusNow }
	return svc
}

func TestGetSmartStatusPendingForProvider(t *testing.T) {
	snapshot := pendingSnapshot()
	svc := newStatusService(&fakeFetcher{snapshot: snapshot})

	got, err := svc.GetSmartStatus(context.Background(), snapshot.Booking.ID, domain.RoleProvider)
	require.NoError(t, err)

	assert.Equal(t, snapshot.Booking.ID, got.BookingID)
	assert.Equal(t, domain.StatusPendingReview, got.OverallStatus)
	require.NotNil(t, got.NextActionBy)
	assert.Equal(t, domain.RoleProvider, *got.NextActionBy)
	require.NotEmpty(t, got.ContextualActions)
	assert.Equal(t, "approve_booking", got.ContextualActions[0].ID)
	assert.True(t, got.ContextualActions[0].Urgent)
}

func TestGetSmartStatusFetchErrorIsReturned(t *testing.T) {
	fetcher := &fakeFetcher{err: errStoreDown}
	svc := newStatusService(fetcher)

	_, err := svc.GetSmartStatus(context.Background(), uuid.New(), domain.RoleClient)
	assert.ErrorIs(t, err, errStoreDown)

	fetcher.err = nil
	fetcher.snapshot = pendingSnapshot()
	_, err = svc.GetSmartStatus(context.Background(), uuid.New(), domain.RoleClient)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetSmartStatusRejectsUnknownRole(t *testing.T) {
	fetcher := &fakeFetcher{snapshot: pendingSnapshot()}
	svc := newStatusService(fetcher)

	_, err := svc.GetSmartStatus(context.Background(), fetcher.snapshot.Booking.ID, domain.Role("owner"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, fetcher.calls)
}

func TestGetSmartStatusFetchesEveryCall(t *testing.T) {
	fetcher := &fakeFetcher{snapshot: pendingSnapshot()}
	svc := newStatusService(fetcher)
	id := fetcher.snapshot.Booking.ID

	first, err := svc.GetSmartStatus(context.Background(), id, domain.RoleClient)
	require.NoError(t, err)
	fetcher.snapshot.Booking.Status = domain.BookingApproved
	second, err := svc.GetSmartStatus(context.Background(), id, domain.RoleClient)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, domain.StatusPendingReview, first.OverallStatus)
	assert.Equal(t, domain.StatusReadyToLaunch, second.OverallStatus)
}

func TestGetSmartStatusForCaller(t *testing.T) {
	snapshot := pendingSnapshot()
	svc := newStatusService(&fakeFetcher{snapshot: snapshot})
	ctx := context.Background()

	_, role, err := svc.GetSmartStatusForCaller(ctx, snapshot.Booking.ID, Caller{UserID: snapshot.Booking.ClientID})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, role)

	_, role, err = svc.GetSmartStatusForCaller(ctx, snapshot.Booking.ID, Caller{UserID: snapshot.Booking.ProviderID})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, role)

	_, role, err = svc.GetSmartStatusForCaller(ctx, snapshot.Booking.ID, Caller{UserID: uuid.New(), IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, _, err = svc.GetSmartStatusForCaller(ctx, snapshot.Booking.ID, Caller{UserID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestResolveRole(t *testing.T) {
	snapshot := pendingSnapshot()
	svc := newStatusService(&fakeFetcher{snapshot: snapshot})

	role, err := svc.ResolveRole(context.Background(), snapshot.Booking.ID, Caller{UserID: snapshot.Booking.ProviderID})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, role)

	_, err = svc.ResolveRole(context.Background(), snapshot.Booking.ID, Caller{UserID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
