// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"business_services_hub/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Booking Domain Events
// =============================================================================

// BookingStatusChanged is published after a booking's lifecycle status changes.
type BookingStatusChanged struct {
	BaseEvent
	BookingID uuid.UUID `json:"bookingId"`
	ActorID   uuid.UUID `json:"actorId"`
	Status    string    `json:"status"`
}

func (e BookingStatusChanged) EventName() string { return "bookings.status.changed" }

// MilestoneStatusChanged is published after a milestone is started, completed or approved.
type MilestoneStatusChanged struct {
	BaseEvent
	BookingID   uuid.UUID `json:"bookingId"`
	MilestoneID uuid.UUID `json:"milestoneId"`
	ActorID     uuid.UUID `json:"actorId"`
	Status      string    `json:"status"`
}

func (e MilestoneStatusChanged) EventName() string { return "bookings.milestone.changed" }

// MilestonesCreated is published when a provider sets up the milestone plan.
type MilestonesCreated struct {
	BaseEvent
	BookingID uuid.UUID `json:"bookingId"`
	ActorID   uuid.UUID `json:"actorId"`
	Count     int       `json:"count"`
}

func (e MilestonesCreated) EventName() string { return "bookings.milestones.created" }

// MilestoneOverdue is published by the overdue sweep, once per milestone.
type MilestoneOverdue struct {
	BaseEvent
	BookingID   uuid.UUID `json:"bookingId"`
	MilestoneID uuid.UUID `json:"milestoneId"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"dueDate"`
}

func (e MilestoneOverdue) EventName() string { return "bookings.milestone.overdue" }

// =============================================================================
// Messaging Domain Events
// =============================================================================

// BookingMessageSent is published after a message is stored for its receiver.
type BookingMessageSent struct {
	BaseEvent
	MessageID  uuid.UUID `json:"messageId"`
	BookingID  uuid.UUID `json:"bookingId"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
}

func (e BookingMessageSent) EventName() string { return "messaging.message.sent" }

// =============================================================================
// Invoice Domain Events
// =============================================================================

// InvoiceDraftRequested is published when an invoice draft job is queued.
type InvoiceDraftRequested struct {
	BaseEvent
	BookingID   uuid.UUID `json:"bookingId"`
	RequestedBy uuid.UUID `json:"requestedBy"`
}

func (e InvoiceDraftRequested) EventName() string { return "invoices.draft.requested" }

// InvoiceDrafted is published after the worker created the draft invoice.
type InvoiceDrafted struct {
	BaseEvent
	InvoiceID   uuid.UUID `json:"invoiceId"`
	BookingID   uuid.UUID `json:"bookingId"`
	ClientID    uuid.UUID `json:"clientId"`
	ProviderID  uuid.UUID `json:"providerId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
}

func (e InvoiceDrafted) EventName() string { return "invoices.draft.created" }
