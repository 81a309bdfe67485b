package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"business_services_hub/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	invoiceNotFoundMsg = "invoice not found"
	bookingNotFoundMsg = "booking not found"

	StatusDraft = "draft"
)

// Invoice is the billing draft created once per booking.
type Invoice struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	ClientID    uuid.UUID
	ProviderID  uuid.UUID
	AmountCents int64
	Currency    string
	Status      string
	RequestedBy *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository persists invoice drafts.
type Repository interface {
	CreateDraft(ctx context.Context, bookingID uuid.UUID, requestedBy *uuid.UUID) (Invoice, bool, error)
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (Invoice, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invoices repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const invoiceColumns = `id, booking_id, client_id, provider_id, amount_cents, currency, status, requested_by, created_at, updated_at`

// CreateDraft copies the booking's parties and amount into a draft invoice.
// The boolean reports whether a new draft was created; an existing draft for
// the booking is returned unchanged.
func (r *Repo) CreateDraft(ctx context.Context, bookingID uuid.UUID, requestedBy *uuid.UUID) (Invoice, bool, error) {
	query := `
		INSERT INTO invoices (id, booking_id, client_id, provider_id, amount_cents, currency, status, requested_by)
		SELECT $1, b.id, b.client_id, b.provider_id, b.amount_cents, b.currency, $3, $4
		FROM bookings b
		WHERE b.id = $2
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, uuid.New(), bookingID, StatusDraft, requestedBy))
	if err == nil {
		return inv, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, false, fmt.Errorf("insert invoice draft: %w", err)
	}

	// Nothing inserted: either a draft exists or the booking does not.
	existing, err := r.GetByBooking(ctx, bookingID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Invoice{}, false, apperr.NotFound(bookingNotFoundMsg)
	}
	if err != nil {
		return Invoice{}, false, err
	}
	return existing, false, nil
}

// GetByBooking returns the invoice of a booking.
func (r *Repo) GetByBooking(ctx context.Context, bookingID uuid.UUID) (Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE booking_id = $1`

	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, apperr.NotFound(invoiceNotFoundMsg)
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.BookingID, &inv.ClientID, &inv.ProviderID, &inv.AmountCents,
		&inv.Currency, &inv.Status, &inv.RequestedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}
