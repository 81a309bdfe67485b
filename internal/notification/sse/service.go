// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"business_services_hub/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventBookingUpdated    EventType = "booking_updated"
	EventMilestoneUpdated  EventType = "milestone_updated"
	EventMilestonesCreated EventType = "milestones_created"
	EventMilestoneOverdue  EventType = "milestone_overdue"
	EventMessageReceived   EventType = "message_received"
	EventInvoiceRequested  EventType = "invoice_requested"
	EventInvoiceDrafted    EventType = "invoice_drafted"
)

const clientBufferSize = 32

// Event represents an SSE event payload
type Event struct {
	Type      EventType   `json:"type"`
	BookingID uuid.UUID   `json:"bookingId,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	userID uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // userID -> clients
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
}

// removeClient unregisters a client connection. It is a no-op after Close.
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			if len(s.clients[c.userID]) == 0 {
				delete(s.clients, c.userID)
			}
			close(c.events)
			return
		}
	}
}

// Publish sends an event to every open connection of a user.
// Slow clients with a full buffer miss the event.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := s.clients[userID]
	for _, c := range clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full", "userId", userID, "event", event.Type)
		}
	}

	s.log.Debug("sse event published", "event", event.Type, "userId", userID, "clients", len(clients))
}

// PublishToUsers sends an event once to each distinct user.
func (s *Service) PublishToUsers(userIDs []uuid.UUID, event Event) {
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == uuid.Nil || seen[userID] {
			continue
		}
		seen[userID] = true
		s.Publish(userID, event)
	}
}

// ConnectedClients returns the number of open connections of a user.
func (s *Service) ConnectedClients(userID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Handler returns a Gin handler for SSE connections
func (s *Service) Handler(getUserID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			userID: userID,
			events: make(chan Event, clientBufferSize),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()

		s.log.Debug("sse client connected", "userId", userID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "userId", userID)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close shuts down the SSE service
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
