package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	bookingNotFoundMsg     = "booking not found"
	milestoneNotFoundMsg   = "milestone not found"
	bookingNotPendingMsg   = "booking is not pending approval"
	milestoneNotAwaitMsg   = "milestone is not awaiting approval"
	milestonesExistMsg     = "booking already has milestones"
	emptyMilestonePlanMsg  = "milestone plan is empty"
	defaultMilestoneRisk   = "low"
	defaultMilestoneStatus = "pending"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a new bookings repository.
func New(pool *pgxpool.Pool, log *logger.Logger) *Repo {
	return &Repo{pool: pool, log: log}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// UpdateBookingStatus sets the lifecycle status of a booking.
func (r *Repo) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`,
		bookingID, status,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	return nil
}

// ApproveBooking moves a pending booking to approved. Approving a booking that
// is no longer pending is a conflict, which keeps concurrent approvals single.
func (r *Repo) ApproveBooking(ctx context.Context, bookingID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET status = 'approved', approval_status = 'approved', approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, bookingID)
	if err != nil {
		return fmt.Errorf("approve booking: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}
	if err := r.bookingExists(ctx, bookingID); err != nil {
		return err
	}
	return apperr.Conflict(bookingNotPendingMsg)
}

func (r *Repo) bookingExists(ctx context.Context, bookingID uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, bookingID).Scan(&exists); err != nil {
		return fmt.Errorf("check booking exists: %w", err)
	}
	if !exists {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	return nil
}

// UpdateMilestone sets a milestone's status, and its progress when given.
// The milestone must belong to the booking.
func (r *Repo) UpdateMilestone(ctx context.Context, update MilestoneUpdate) error {
	query := `
		UPDATE milestones
		SET status = $3, progress_percentage = COALESCE($4, progress_percentage), updated_at = now()
		WHERE id = $1 AND booking_id = $2`

	result, err := r.pool.Exec(ctx, query, update.MilestoneID, update.BookingID, update.Status, update.ProgressPercentage)
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(milestoneNotFoundMsg)
	}
	return r.touchBooking(ctx, update.BookingID)
}

// ApproveMilestone stamps approved_at on a completed, not yet approved milestone.
func (r *Repo) ApproveMilestone(ctx context.Context, bookingID, milestoneID uuid.UUID) error {
	query := `
		UPDATE milestones
		SET approved_at = now(), updated_at = now()
		WHERE id = $1 AND booking_id = $2 AND status = 'completed' AND approved_at IS NULL`

	result, err := r.pool.Exec(ctx, query, milestoneID, bookingID)
	if err != nil {
		return fmt.Errorf("approve milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM milestones WHERE id = $1 AND booking_id = $2)`,
			milestoneID, bookingID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check milestone exists: %w", err)
		}
		if !exists {
			return apperr.NotFound(milestoneNotFoundMsg)
		}
		return apperr.Conflict(milestoneNotAwaitMsg)
	}
	return r.touchBooking(ctx, bookingID)
}

// CreateMilestones inserts a milestone plan for a booking that has none yet.
func (r *Repo) CreateMilestones(ctx context.Context, bookingID uuid.UUID, plan []NewMilestone) (int, error) {
	if len(plan) == 0 {
		return 0, apperr.Validation(emptyMilestonePlanMsg)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(bookingNotFoundMsg)
		}
		return 0, fmt.Errorf("lock booking: %w", err)
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM milestones WHERE booking_id = $1`, bookingID).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count milestones: %w", err)
	}
	if existing > 0 {
		return 0, apperr.Conflict(milestonesExistMsg)
	}

	insert := `
		INSERT INTO milestones (id, booking_id, title, status, progress_percentage, order_index, due_date, risk_level)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)`

	batch := &pgx.Batch{}
	for _, m := range plan {
		risk := m.RiskLevel
		if risk == "" {
			risk = defaultMilestoneRisk
		}
		batch.Queue(insert, uuid.New(), bookingID, m.Title, defaultMilestoneStatus, m.OrderIndex, m.DueDate, risk)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert milestones: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE bookings SET updated_at = now() WHERE id = $1`, bookingID); err != nil {
		return 0, fmt.Errorf("touch booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit milestones: %w", err)
	}
	return len(plan), nil
}

func (r *Repo) touchBooking(ctx context.Context, bookingID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE bookings SET updated_at = now() WHERE id = $1`, bookingID); err != nil {
		return fmt.Errorf("touch booking: %w", err)
	}
	return nil
}

// GetParticipants resolves the client and provider of a booking.
func (r *Repo) GetParticipants(ctx context.Context, bookingID uuid.UUID) (Participants, error) {
	query := `
		SELECT b.id, COALESCE(s.title, ''), COALESCE(s.category, ''),
			c.id, c.full_name, c.email,
			p.id, p.full_name, p.email
		FROM bookings b
		LEFT JOIN services s ON s.id = b.service_id
		JOIN profiles c ON c.id = b.client_id
		JOIN profiles p ON p.id = b.provider_id
		WHERE b.id = $1`

	var p Participants
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&p.BookingID, &p.ServiceTitle, &p.ServiceCategory,
		&p.ClientID, &p.ClientName, &p.ClientEmail,
		&p.ProviderID, &p.ProviderName, &p.ProviderEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Participants{}, apperr.NotFound(bookingNotFoundMsg)
		}
		return Participants{}, fmt.Errorf("get booking participants: %w", err)
	}
	return p, nil
}

// ListOverdueMilestones returns unfinished milestones past due that were not
// reported yet, oldest due date first.
func (r *Repo) ListOverdueMilestones(ctx context.Context, now time.Time, limit int) ([]OverdueMilestone, error) {
	query := `
		SELECT m.id, m.booking_id, COALESCE(NULLIF(TRIM(m.title), ''), ''), m.due_date
		FROM milestones m
		JOIN bookings b ON b.id = m.booking_id
		WHERE m.due_date < $1
			AND m.status <> 'completed'
			AND m.overdue_notified_at IS NULL
			AND b.status NOT IN ('cancelled', 'completed')
		ORDER BY m.due_date
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue milestones: %w", err)
	}
	defer rows.Close()

	var out []OverdueMilestone
	for rows.Next() {
		var m OverdueMilestone
		if err := rows.Scan(&m.ID, &m.BookingID, &m.Title, &m.DueDate); err != nil {
			return nil, fmt.Errorf("scan overdue milestone: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue milestones: %w", err)
	}
	return out, nil
}

// MarkOverdueNotified records that the overdue notice for a milestone went out.
func (r *Repo) MarkOverdueNotified(ctx context.Context, milestoneID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE milestones SET overdue_notified_at = now() WHERE id = $1 AND overdue_notified_at IS NULL`,
		milestoneID,
	)
	if err != nil {
		return fmt.Errorf("mark milestone overdue notified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(milestoneNotFoundMsg)
	}
	return nil
}
