package transport

import (
	"time"

	"business_services_hub/internal/messaging/repository"

	"github.com/google/uuid"
)

// MessageResponse is one inbox entry.
type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	BookingID *uuid.UUID `json:"bookingId,omitempty"`
	SenderID  uuid.UUID  `json:"senderId"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// MessageListResponse wraps a page of messages.
type MessageListResponse struct {
	Items []MessageResponse `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
}

// FromMessages maps stored messages to their response form.
func FromMessages(items []repository.Message, total, page int) MessageListResponse {
	out := make([]MessageResponse, len(items))
	for i, m := range items {
		out[i] = MessageResponse{
			ID:        m.ID,
			BookingID: m.BookingID,
			SenderID:  m.SenderID,
			Subject:   m.Subject,
			Content:   m.Content,
			ReadAt:    m.ReadAt,
			CreatedAt: m.CreatedAt,
		}
	}
	return MessageListResponse{Items: out, Total: total, Page: page}
}
