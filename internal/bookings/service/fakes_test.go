package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/bookings/templates"
	"business_services_hub/internal/events"
	"business_services_hub/platform/apperr"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

type fakeFetcher struct {
	snapshot domain.Snapshot
	err      error
	calls    int
}

func (f *fakeFetcher) FetchBookingSnapshot(_ context.Context, id uuid.UUID) (domain.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}
	if id != f.snapshot.Booking.ID {
		return domain.Snapshot{}, apperr.NotFound("booking not found")
	}
	return f.snapshot, nil
}

type fakeStore struct {
	err             error
	bookingStatus   string
	milestoneUpdate *repository.MilestoneUpdate
	approvedID      uuid.UUID
	created         []repository.NewMilestone
	participants    repository.Participants
	participantsErr error
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, _ uuid.UUID, status string) error {
	if f.err != nil {
		return f.err
	}
	f.bookingStatus = status
	return nil
}

func (f *fakeStore) UpdateMilestone(_ context.Context, update repository.MilestoneUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.milestoneUpdate = &update
	return nil
}

func (f *fakeStore) ApproveMilestone(_ context.Context, _, milestoneID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.approvedID = milestoneID
	return nil
}

func (f *fakeStore) CreateMilestones(_ context.Context, _ uuid.UUID, plan []repository.NewMilestone) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.created = plan
	return len(plan), nil
}

func (f *fakeStore) GetParticipants(context.Context, uuid.UUID) (repository.Participants, error) {
	if f.participantsErr != nil {
		return repository.Participants{}, f.participantsErr
	}
	return f.participants, nil
}

type fakeApprover struct {
	err   error
	calls int
}

func (f *fakeApprover) Approve(context.Context, uuid.UUID, uuid.UUID) error {
	f.calls++
	return f.err
}

type fakeGuard struct {
	held     bool
	err      error
	released int
}

func (f *fakeGuard) Acquire(context.Context, uuid.UUID) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	if f.held {
		return "", false, nil
	}
	f.held = true
	return "token", true, nil
}

func (f *fakeGuard) Release(_ context.Context, _ uuid.UUID, token string) error {
	if token == "token" {
		f.held = false
		f.released++
	}
	return nil
}

type fakeMessenger struct {
	err  error
	sent []Message
}

func (f *fakeMessenger) SendMessage(_ context.Context, msg Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeInvoices struct {
	err    error
	queued []uuid.UUID
}

func (f *fakeInvoices) EnqueueInvoiceDraft(_ context.Context, bookingID, _ uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, bookingID)
	return nil
}

type fakePlanner struct {
	category string
}

func (f *fakePlanner) Plan(category string, start time.Time) []templates.PlannedMilestone {
	f.category = category
	return []templates.PlannedMilestone{
		{Title: "Kickoff", OrderIndex: 0, DueDate: start.AddDate(0, 0, 2)},
		{Title: "Delivery", OrderIndex: 1, DueDate: start.AddDate(0, 0, 9), RiskLevel: "medium"},
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventName()
	}
	return out
}
