package service

import (
	"context"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/bookings/templates"

	"github.com/google/uuid"
)

// SnapshotFetcher loads the aggregate the status engine derives from.
type SnapshotFetcher interface {
	FetchBookingSnapshot(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error)
}

// BookingStore performs the direct mutations of the action executor.
type BookingStore interface {
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error
	UpdateMilestone(ctx context.Context, update repository.MilestoneUpdate) error
	ApproveMilestone(ctx context.Context, bookingID, milestoneID uuid.UUID) error
	CreateMilestones(ctx context.Context, bookingID uuid.UUID, plan []repository.NewMilestone) (int, error)
	GetParticipants(ctx context.Context, bookingID uuid.UUID) (repository.Participants, error)
}

// BookingApprover approves a booking through the approval endpoint, which
// owns the side effects of an approval.
type BookingApprover interface {
	Approve(ctx context.Context, bookingID, actorID uuid.UUID) error
}

// ApprovalGuard serializes approvals of one booking across processes.
// Acquire reports false when another approval holds the booking.
type ApprovalGuard interface {
	Acquire(ctx context.Context, bookingID uuid.UUID) (token string, ok bool, err error)
	Release(ctx context.Context, bookingID uuid.UUID, token string) error
}

// Message is a note from one booking participant to the other.
type Message struct {
	BookingID  uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Subject    string
	Content    string
}

// Messenger delivers booking messages.
type Messenger interface {
	SendMessage(ctx context.Context, msg Message) error
}

// InvoiceScheduler queues invoice drafts. Queuing twice for one booking
// returns an apperr conflict.
type InvoiceScheduler interface {
	EnqueueInvoiceDraft(ctx context.Context, bookingID, requestedBy uuid.UUID) error
}

// MilestonePlanner proposes a milestone plan for a service category.
type MilestonePlanner interface {
	Plan(category string, start time.Time) []templates.PlannedMilestone
}

// ApprovalWriter is the store side of the approval endpoint.
type ApprovalWriter interface {
	ApproveBooking(ctx context.Context, bookingID uuid.UUID) error
}

// Compile-time checks against the concrete collaborators.
var (
	_ SnapshotFetcher  = (*repository.Repo)(nil)
	_ BookingStore     = (*repository.Repo)(nil)
	_ ApprovalWriter   = (*repository.Repo)(nil)
	_ MilestonePlanner = (*templates.Catalog)(nil)
)
