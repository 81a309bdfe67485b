// Package service provides business logic for booking status and actions.
package service

import (
	"context"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"

	"github.com/google/uuid"
)

const (
	msgInvalidRole    = "invalid role"
	msgNotParticipant = "you are not a participant of this booking"
)

// Caller identifies who is asking about a booking.
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// StatusService derives the smart status of a booking from a fresh snapshot
// on every call.
type StatusService struct {
	fetcher SnapshotFetcher
	log     *logger.Logger
	now     func() time.Time
}

// NewStatusService creates a new status service.
func NewStatusService(fetcher SnapshotFetcher, log *logger.Logger) *StatusService {
	return &StatusService{fetcher: fetcher, log: log, now: time.Now}
}

// GetSmartStatus returns the status of a booking as seen by role.
// Fetch errors are returned unchanged.
func (s *StatusService) GetSmartStatus(ctx context.Context, bookingID uuid.UUID, role domain.Role) (domain.SmartBookingStatus, error) {
	if _, ok := domain.ParseRole(string(role)); !ok {
		return domain.SmartBookingStatus{}, apperr.Validation(msgInvalidRole)
	}

	snapshot, err := s.fetcher.FetchBookingSnapshot(ctx, bookingID)
	if err != nil {
		return domain.SmartBookingStatus{}, err
	}
	return s.derive(snapshot, role), nil
}

// GetSmartStatusForCaller resolves the caller's role on the booking and
// derives the status for it in one fetch.
func (s *StatusService) GetSmartStatusForCaller(ctx context.Context, bookingID uuid.UUID, caller Caller) (domain.SmartBookingStatus, domain.Role, error) {
	snapshot, err := s.fetcher.FetchBookingSnapshot(ctx, bookingID)
	if err != nil {
		return domain.SmartBookingStatus{}, "", err
	}

	role, ok := domain.ResolveRole(snapshot.Booking, caller.UserID, caller.IsAdmin)
	if !ok {
		return domain.SmartBookingStatus{}, "", apperr.Forbidden(msgNotParticipant)
	}
	return s.derive(snapshot, role), role, nil
}

// ResolveRole returns how caller relates to the booking.
func (s *StatusService) ResolveRole(ctx context.Context, bookingID uuid.UUID, caller Caller) (domain.Role, error) {
	snapshot, err := s.fetcher.FetchBookingSnapshot(ctx, bookingID)
	if err != nil {
		return "", err
	}

	role, ok := domain.ResolveRole(snapshot.Booking, caller.UserID, caller.IsAdmin)
	if !ok {
		return "", apperr.Forbidden(msgNotParticipant)
	}
	return role, nil
}

func (s *StatusService) derive(snapshot domain.Snapshot, role domain.Role) domain.SmartBookingStatus {
	status := domain.DeriveStatus(snapshot, role, s.now())
	metrics.IncrementSmartStatus(string(status.OverallStatus), string(role))
	s.log.Debug("smart status derived",
		"bookingId", status.BookingID,
		"role", role,
		"overallStatus", status.OverallStatus,
		"progress", status.ProgressPercentage,
		"actions", len(status.ContextualActions),
	)
	return status
}
