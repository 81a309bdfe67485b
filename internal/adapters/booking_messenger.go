package adapters

import (
	"context"

	bookingsvc "business_services_hub/internal/bookings/service"
	messagingrepo "business_services_hub/internal/messaging/repository"
	messagingsvc "business_services_hub/internal/messaging/service"
)

// MessageSender is the part of the messaging service the bookings domain uses.
type MessageSender interface {
	Send(ctx context.Context, p messagingsvc.SendParams) (messagingrepo.Message, error)
}

// BookingMessenger adapts the messaging service for the bookings domain.
// It implements bookings/service.Messenger using interface-segregation.
type BookingMessenger struct {
	sender MessageSender
}

// NewBookingMessenger creates a new booking messenger adapter.
func NewBookingMessenger(sender MessageSender) *BookingMessenger {
	return &BookingMessenger{sender: sender}
}

// SendMessage stores a booking message for its receiver.
func (a *BookingMessenger) SendMessage(ctx context.Context, msg bookingsvc.Message) error {
	bookingID := msg.BookingID
	_, err := a.sender.Send(ctx, messagingsvc.SendParams{
		BookingID:  &bookingID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Subject:    msg.Subject,
		Content:    msg.Content,
	})
	return err
}

// Compile-time checks.
var (
	_ bookingsvc.Messenger = (*BookingMessenger)(nil)
	_ MessageSender        = (*messagingsvc.Service)(nil)
)
