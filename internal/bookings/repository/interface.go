package repository

import (
	"context"
	"time"

	"business_services_hub/internal/bookings/domain"

	"github.com/google/uuid"
)

// Participants describes the two parties of a booking and how to reach them.
type Participants struct {
	BookingID       uuid.UUID
	ServiceTitle    string
	ServiceCategory string
	ClientID        uuid.UUID
	ClientName      string
	ClientEmail     string
	ProviderID      uuid.UUID
	ProviderName    string
	ProviderEmail   string
}

// MilestoneUpdate changes a milestone's status within one booking.
// A nil ProgressPercentage leaves the stored value as is.
type MilestoneUpdate struct {
	BookingID          uuid.UUID
	MilestoneID        uuid.UUID
	Status             string
	ProgressPercentage *int
}

// NewMilestone is one entry of a milestone plan.
type NewMilestone struct {
	Title      string
	OrderIndex int
	DueDate    *time.Time
	RiskLevel  string
}

// OverdueMilestone is a milestone past its due date that nobody was told about yet.
type OverdueMilestone struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Title     string
	DueDate   time.Time
}

// SnapshotReader loads the aggregate the status engine reads.
type SnapshotReader interface {
	FetchBookingSnapshot(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error)
}

// BookingWriter mutates booking rows.
type BookingWriter interface {
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error
	ApproveBooking(ctx context.Context, bookingID uuid.UUID) error
}

// MilestoneWriter mutates milestone rows.
type MilestoneWriter interface {
	UpdateMilestone(ctx context.Context, update MilestoneUpdate) error
	ApproveMilestone(ctx context.Context, bookingID, milestoneID uuid.UUID) error
	CreateMilestones(ctx context.Context, bookingID uuid.UUID, plan []NewMilestone) (int, error)
}

// ParticipantReader resolves who is involved in a booking.
type ParticipantReader interface {
	GetParticipants(ctx context.Context, bookingID uuid.UUID) (Participants, error)
}

// OverdueTracker backs the overdue milestone sweep.
type OverdueTracker interface {
	ListOverdueMilestones(ctx context.Context, now time.Time, limit int) ([]OverdueMilestone, error)
	MarkOverdueNotified(ctx context.Context, milestoneID uuid.UUID) error
}

// Repository combines all bookings repository operations.
type Repository interface {
	SnapshotReader
	BookingWriter
	MilestoneWriter
	ParticipantReader
	OverdueTracker
}
