package adapters

import (
	"context"
	"errors"
	"testing"

	bookingsvc "business_services_hub/internal/bookings/service"
	messagingrepo "business_services_hub/internal/messaging/repository"
	messagingsvc "business_services_hub/internal/messaging/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	got messagingsvc.SendParams
	err error
}

func (s *stubSender) Send(_ context.Context, p messagingsvc.SendParams) (messagingrepo.Message, error) {
	s.got = p
	return messagingrepo.Message{ID: uuid.New()}, s.err
}

func TestBookingMessengerMapsMessage(t *testing.T) {
	sender := &stubSender{}
	msg := bookingsvc.Message{
		BookingID:  uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Subject:    "Feedback",
		Content:    "Looks great",
	}

	require.NoError(t, NewBookingMessenger(sender).SendMessage(context.Background(), msg))

	require.NotNil(t, sender.got.BookingID)
	assert.Equal(t, msg.BookingID, *sender.got.BookingID)
	assert.Equal(t, msg.SenderID, sender.got.SenderID)
	assert.Equal(t, msg.ReceiverID, sender.got.ReceiverID)
	assert.Equal(t, "Feedback", sender.got.Subject)
	assert.Equal(t, "Looks great", sender.got.Content)
}

func TestBookingMessengerReturnsSendError(t *testing.T) {
	sender := &stubSender{err: errors.New("db down")}
	err := NewBookingMessenger(sender).SendMessage(context.Background(), bookingsvc.Message{})
	assert.EqualError(t, err, "db down")
}
