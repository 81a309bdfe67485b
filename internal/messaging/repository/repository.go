package repository

import (
	"context"
	"fmt"
	"time"

	"business_services_hub/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageNotFoundMsg = "message not found"

// Message is a stored note between two users, optionally about a booking.
type Message struct {
	ID         uuid.UUID
	BookingID  *uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Subject    string
	Content    string
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// Repository stores and lists messages.
type Repository interface {
	Create(ctx context.Context, msg Message) (Message, error)
	ListInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]Message, int, error)
	MarkRead(ctx context.Context, id, receiverID uuid.UUID) error
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new messages repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a message and returns it with its generated fields.
func (r *Repo) Create(ctx context.Context, msg Message) (Message, error) {
	query := `
		INSERT INTO messages (id, booking_id, sender_id, receiver_id, subject, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	msg.ID = uuid.New()
	if err := r.pool.QueryRow(ctx, query,
		msg.ID, msg.BookingID, msg.SenderID, msg.ReceiverID, msg.Subject, msg.Content,
	).Scan(&msg.CreatedAt); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListInbox returns the newest messages for receiverID and the total count.
func (r *Repo) ListInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1`, receiverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := `
		SELECT id, booking_id, sender_id, receiver_id, subject, content, read_at, created_at
		FROM messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, receiverID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.ReceiverID, &m.Subject, &m.Content, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}
	return items, total, nil
}

// MarkRead stamps read_at on a message addressed to receiverID.
func (r *Repo) MarkRead(ctx context.Context, id, receiverID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, now()) WHERE id = $1 AND receiver_id = $2`,
		id, receiverID,
	)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(messageNotFoundMsg)
	}
	return nil
}
