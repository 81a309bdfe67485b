// Package notification provides event handlers that tell booking participants
// about changes: a realtime SSE push to every connected participant and email
// for the events that need attention.
// Domain modules only publish events and never know about SSE or SMTP.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingrepo "business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/email"
	"business_services_hub/internal/events"
	apphttp "business_services_hub/internal/http"
	"business_services_hub/internal/notification/sse"
	"business_services_hub/platform/config"
	"business_services_hub/platform/httpkit"
	"business_services_hub/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParticipantReader resolves who takes part in a booking.
type ParticipantReader interface {
	GetParticipants(ctx context.Context, bookingID uuid.UUID) (bookingrepo.Participants, error)
}

// Module is the notification module implementing http.Module.
type Module struct {
	participants ParticipantReader
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	sse          *sse.Service
}

// New creates a new notification module.
func New(participants ParticipantReader, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		participants: participants,
		sender:       sender,
		cfg:          cfg,
		log:          log,
		sse:          sse.New(log),
	}
}

func (m *Module) Name() string { return "notification" }

// SSE exposes the realtime service, mainly for shutdown.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the event stream.
// GET /api/v1/events
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		identity := httpkit.GetIdentity(c)
		if identity == nil || !identity.IsAuthenticated() {
			return uuid.Nil, false
		}
		return identity.UserID(), true
	}))
}

// RegisterHandlers subscribes to the booking events on the bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	// Booking lifecycle
	bus.Subscribe(events.BookingStatusChanged{}.EventName(), m)
	bus.Subscribe(events.MilestoneStatusChanged{}.EventName(), m)
	bus.Subscribe(events.MilestonesCreated{}.EventName(), m)
	bus.Subscribe(events.MilestoneOverdue{}.EventName(), m)

	// Messages and invoices
	bus.Subscribe(events.BookingMessageSent{}.EventName(), m)
	bus.Subscribe(events.InvoiceDraftRequested{}.EventName(), m)
	bus.Subscribe(events.InvoiceDrafted{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BookingStatusChanged:
		return m.handleBookingStatusChanged(ctx, e)
	case events.MilestoneStatusChanged:
		return m.handleMilestoneStatusChanged(ctx, e)
	case events.MilestonesCreated:
		return m.handleMilestonesCreated(ctx, e)
	case events.MilestoneOverdue:
		return m.handleMilestoneOverdue(ctx, e)
	case events.BookingMessageSent:
		return m.handleBookingMessageSent(ctx, e)
	case events.InvoiceDraftRequested:
		return m.handleInvoiceDraftRequested(ctx, e)
	case events.InvoiceDrafted:
		return m.handleInvoiceDrafted(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleBookingStatusChanged(ctx context.Context, e events.BookingStatusChanged) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventBookingUpdated,
		BookingID: e.BookingID,
		Message:   fmt.Sprintf("Booking is now %s", e.Status),
		Data:      map[string]any{"status": e.Status, "actorId": e.ActorID},
	})

	var errs []error
	for _, r := range recipientsExcept(p, e.ActorID) {
		errs = append(errs, m.sender.SendBookingStatusEmail(ctx, email.BookingStatus{
			ToEmail:       r.email,
			RecipientName: r.name,
			ServiceTitle:  p.ServiceTitle,
			Status:        e.Status,
			BookingURL:    m.bookingURL(e.BookingID),
		}))
	}
	return m.emailErrors(e.BookingID, errs)
}

func (m *Module) handleMilestoneStatusChanged(ctx context.Context, e events.MilestoneStatusChanged) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventMilestoneUpdated,
		BookingID: e.BookingID,
		Data:      map[string]any{"milestoneId": e.MilestoneID, "status": e.Status, "actorId": e.ActorID},
	})
	return nil
}

func (m *Module) handleMilestonesCreated(ctx context.Context, e events.MilestonesCreated) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventMilestonesCreated,
		BookingID: e.BookingID,
		Message:   fmt.Sprintf("%d milestone(s) planned", e.Count),
		Data:      map[string]any{"count": e.Count},
	})
	return nil
}

func (m *Module) handleMilestoneOverdue(ctx context.Context, e events.MilestoneOverdue) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventMilestoneOverdue,
		BookingID: e.BookingID,
		Message:   fmt.Sprintf("%s is overdue", e.Title),
		Data:      map[string]any{"milestoneId": e.MilestoneID, "dueDate": e.DueDate},
	})

	var errs []error
	for _, r := range recipientsExcept(p, uuid.Nil) {
		errs = append(errs, m.sender.SendMilestoneOverdueEmail(ctx, email.MilestoneOverdue{
			ToEmail:        r.email,
			RecipientName:  r.name,
			ServiceTitle:   p.ServiceTitle,
			MilestoneTitle: e.Title,
			DueDate:        e.DueDate,
			BookingURL:     m.bookingURL(e.BookingID),
		}))
	}
	return m.emailErrors(e.BookingID, errs)
}

func (m *Module) handleBookingMessageSent(ctx context.Context, e events.BookingMessageSent) error {
	m.sse.Publish(e.ReceiverID, sse.Event{
		Type:      sse.EventMessageReceived,
		BookingID: e.BookingID,
		Message:   e.Subject,
		Data:      map[string]any{"messageId": e.MessageID, "senderId": e.SenderID},
	})

	if e.BookingID == uuid.Nil {
		return nil
	}
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	receiver, ok := participantByID(p, e.ReceiverID)
	if !ok {
		m.log.Warn("message receiver is not a booking participant", "bookingId", e.BookingID, "receiverId", e.ReceiverID)
		return nil
	}
	sender, _ := participantByID(p, e.SenderID)

	err = m.sender.SendBookingMessageEmail(ctx, email.BookingMessage{
		ToEmail:       receiver.email,
		RecipientName: receiver.name,
		SenderName:    sender.nameOr("Your project partner"),
		ServiceTitle:  p.ServiceTitle,
		Subject:       e.Subject,
		Content:       e.Content,
		BookingURL:    m.bookingURL(e.BookingID),
	})
	return m.emailErrors(e.BookingID, []error{err})
}

func (m *Module) handleInvoiceDraftRequested(ctx context.Context, e events.InvoiceDraftRequested) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventInvoiceRequested,
		BookingID: e.BookingID,
		Message:   "Invoice draft requested",
	})
	return nil
}

func (m *Module) handleInvoiceDrafted(ctx context.Context, e events.InvoiceDrafted) error {
	p, err := m.lookup(ctx, e.BookingID)
	if err != nil {
		return err
	}

	m.pushToParticipants(p, sse.Event{
		Type:      sse.EventInvoiceDrafted,
		BookingID: e.BookingID,
		Message:   "Invoice draft ready",
		Data:      map[string]any{"invoiceId": e.InvoiceID, "amountCents": e.AmountCents, "currency": e.Currency},
	})

	if strings.TrimSpace(p.ClientEmail) == "" {
		return nil
	}
	err = m.sender.SendInvoiceDraftEmail(ctx, email.InvoiceDraft{
		ToEmail:       p.ClientEmail,
		RecipientName: p.ClientName,
		ServiceTitle:  p.ServiceTitle,
		AmountCents:   e.AmountCents,
		Currency:      e.Currency,
		BookingURL:    m.bookingURL(e.BookingID),
	})
	return m.emailErrors(e.BookingID, []error{err})
}

func (m *Module) lookup(ctx context.Context, bookingID uuid.UUID) (bookingrepo.Participants, error) {
	p, err := m.participants.GetParticipants(ctx, bookingID)
	if err != nil {
		return bookingrepo.Participants{}, fmt.Errorf("resolve participants of booking %s: %w", bookingID, err)
	}
	return p, nil
}

func (m *Module) pushToParticipants(p bookingrepo.Participants, event sse.Event) {
	m.sse.PublishToUsers([]uuid.UUID{p.ClientID, p.ProviderID}, event)
}

func (m *Module) bookingURL(bookingID uuid.UUID) string {
	return strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + "/bookings/" + bookingID.String()
}

func (m *Module) emailErrors(bookingID uuid.UUID, errs []error) error {
	err := errors.Join(errs...)
	if err != nil {
		m.log.Error("booking email failed", "bookingId", bookingID, "error", err)
	}
	return err
}

type recipient struct {
	id    uuid.UUID
	name  string
	email string
}

func (r recipient) nameOr(fallback string) string {
	if strings.TrimSpace(r.name) == "" {
		return fallback
	}
	return r.name
}

func participantByID(p bookingrepo.Participants, id uuid.UUID) (recipient, bool) {
	switch id {
	case p.ClientID:
		return recipient{id: p.ClientID, name: p.ClientName, email: p.ClientEmail}, true
	case p.ProviderID:
		return recipient{id: p.ProviderID, name: p.ProviderName, email: p.ProviderEmail}, true
	}
	return recipient{}, false
}

// recipientsExcept lists participants with an email address, skipping the actor.
func recipientsExcept(p bookingrepo.Participants, actorID uuid.UUID) []recipient {
	all := []recipient{
		{id: p.ClientID, name: p.ClientName, email: p.ClientEmail},
		{id: p.ProviderID, name: p.ProviderName, email: p.ProviderEmail},
	}
	out := make([]recipient, 0, len(all))
	for _, r := range all {
		if r.id == actorID || strings.TrimSpace(r.email) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
