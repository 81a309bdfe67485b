package service

import (
	"context"

	"business_services_hub/internal/events"
	"business_services_hub/internal/messaging/repository"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/sanitize"

	"github.com/google/uuid"
)

const (
	maxSubjectLength = 200
	maxContentLength = 10000
	defaultPageSize  = 20
	maxPageSize      = 50

	msgSelfMessage    = "cannot send a message to yourself"
	msgSubjectMissing = "subject is required"
	msgContentMissing = "content is required"
	msgSubjectTooLong = "subject is too long"
	msgContentTooLong = "content is too long"
)

type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

type SendParams struct {
	BookingID  *uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Subject    string
	Content    string
}

// Send persists the message and announces it so the receiver can be notified.
func (s *Service) Send(ctx context.Context, p SendParams) (repository.Message, error) {
	if p.SenderID == p.ReceiverID {
		return repository.Message{}, apperr.Validation(msgSelfMessage)
	}

	subject := sanitize.Line(p.Subject)
	content := sanitize.Text(p.Content)
	switch {
	case subject == "":
		return repository.Message{}, apperr.Validation(msgSubjectMissing)
	case content == "":
		return repository.Message{}, apperr.Validation(msgContentMissing)
	case len(subject) > maxSubjectLength:
		return repository.Message{}, apperr.Validation(msgSubjectTooLong)
	case len(content) > maxContentLength:
		return repository.Message{}, apperr.Validation(msgContentTooLong)
	}

	msg, err := s.repo.Create(ctx, repository.Message{
		BookingID:  p.BookingID,
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Subject:    subject,
		Content:    content,
	})
	if err != nil {
		s.log.Error("failed to persist message", "error", err, "receiverId", p.ReceiverID)
		return repository.Message{}, err
	}

	var bookingID uuid.UUID
	if msg.BookingID != nil {
		bookingID = *msg.BookingID
	}
	s.bus.Publish(ctx, events.BookingMessageSent{
		BaseEvent:  events.NewBaseEvent(),
		MessageID:  msg.ID,
		BookingID:  bookingID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Subject:    msg.Subject,
		Content:    msg.Content,
	})

	return msg, nil
}

// List returns one page of the user's inbox, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]repository.Message, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ListInbox(ctx, userID, limit, (page-1)*limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}
