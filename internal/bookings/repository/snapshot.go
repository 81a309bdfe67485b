package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

const (
	strategyEnriched = "enriched"
	strategyFallback = "fallback"

	fallbackTaskFetchLimit = 4
)

const enrichedSnapshotQuery = `
	SELECT b.id, b.status, COALESCE(b.approval_status, ''), b.approved_at, b.scheduled_date,
		b.amount_cents, b.currency, b.client_id, b.provider_id, b.service_id,
		COALESCE(s.title, ''), COALESCE(s.category, ''), b.created_at, b.updated_at,
		m.id, m.phase_id, m.title, m.status, m.progress_percentage, m.order_index,
		m.due_date, m.risk_level, m.approved_at,
		t.id, t.title, t.status, t.progress_percentage, t.assignee_id, t.priority
	FROM bookings b
	LEFT JOIN services s ON s.id = b.service_id
	LEFT JOIN milestones m ON m.booking_id = b.id
	LEFT JOIN tasks t ON t.milestone_id = m.id
	WHERE b.id = $1
	ORDER BY m.order_index NULLS LAST, t.created_at`

// milestoneColumns are the nullable milestone columns of an outer-joined row.
type milestoneColumns struct {
	ID                 *uuid.UUID
	PhaseID            *uuid.UUID
	Title              *string
	Status             *string
	ProgressPercentage *int
	OrderIndex         *int
	DueDate            *time.Time
	RiskLevel          *string
	ApprovedAt         *time.Time
}

// taskColumns are the nullable task columns of an outer-joined row.
type taskColumns struct {
	ID                 *uuid.UUID
	Title              *string
	Status             *string
	ProgressPercentage *int
	AssigneeID         *uuid.UUID
	Priority           *string
}

type snapshotRow struct {
	Booking   domain.Booking
	Milestone milestoneColumns
	Task      taskColumns
}

// snapshotSource is the pair of strategies a snapshot can be read with.
type snapshotSource interface {
	fetchEnriched(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error)
	fetchFallback(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error)
}

// FetchBookingSnapshot loads a booking with its phases, milestones and tasks.
// The joined query is tried first; on failure the snapshot is rebuilt from
// per-entity lookups.
func (r *Repo) FetchBookingSnapshot(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error) {
	return fetchSnapshot(ctx, r, r.log, bookingID)
}

// fetchSnapshot falls back only when the joined query failed for a reason
// other than a missing booking or a finished context.
func fetchSnapshot(ctx context.Context, src snapshotSource, log *logger.Logger, bookingID uuid.UUID) (domain.Snapshot, error) {
	start := time.Now()
	snapshot, err := src.fetchEnriched(ctx, bookingID)
	if err == nil {
		metrics.RecordSnapshotFetch(strategyEnriched, time.Since(start))
		return snapshot, nil
	}
	if apperr.Is(err, apperr.KindNotFound) || ctx.Err() != nil {
		return domain.Snapshot{}, err
	}

	log.Warn("enriched snapshot query failed, falling back to per-entity lookups",
		"bookingId", bookingID, "error", err)

	start = time.Now()
	snapshot, err = src.fetchFallback(ctx, bookingID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	metrics.RecordSnapshotFetch(strategyFallback, time.Since(start))
	return snapshot, nil
}

func (r *Repo) fetchEnriched(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error) {
	rows, err := r.pool.Query(ctx, enrichedSnapshotQuery, bookingID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query booking snapshot: %w", err)
	}
	defer rows.Close()

	var joined []snapshotRow
	for rows.Next() {
		var row snapshotRow
		b := &row.Booking
		m := &row.Milestone
		t := &row.Task
		if err := rows.Scan(
			&b.ID, &b.Status, &b.ApprovalStatus, &b.ApprovedAt, &b.ScheduledDate,
			&b.AmountCents, &b.Currency, &b.ClientID, &b.ProviderID, &b.ServiceID,
			&b.ServiceTitle, &b.ServiceCategory, &b.CreatedAt, &b.UpdatedAt,
			&m.ID, &m.PhaseID, &m.Title, &m.Status, &m.ProgressPercentage, &m.OrderIndex,
			&m.DueDate, &m.RiskLevel, &m.ApprovedAt,
			&t.ID, &t.Title, &t.Status, &t.ProgressPercentage, &t.AssigneeID, &t.Priority,
		); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan booking snapshot: %w", err)
		}
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate booking snapshot: %w", err)
	}
	if len(joined) == 0 {
		return domain.Snapshot{}, apperr.NotFound(bookingNotFoundMsg)
	}

	snapshot := assembleSnapshot(joined)
	phases, err := r.listPhases(ctx, bookingID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.Phases = phases
	return snapshot, nil
}

// assembleSnapshot folds outer-joined rows into one snapshot. Row order is kept
// for milestones and for the tasks of each milestone.
func assembleSnapshot(rows []snapshotRow) domain.Snapshot {
	if len(rows) == 0 {
		return domain.Snapshot{}
	}

	snapshot := domain.Snapshot{Booking: rows[0].Booking}
	index := make(map[uuid.UUID]int)

	for _, row := range rows {
		if row.Milestone.ID == nil {
			continue
		}
		pos, seen := index[*row.Milestone.ID]
		if !seen {
			pos = len(snapshot.Milestones)
			index[*row.Milestone.ID] = pos
			snapshot.Milestones = append(snapshot.Milestones, row.Milestone.toDomain(snapshot.Booking.ID))
		}
		if row.Task.ID != nil {
			ms := &snapshot.Milestones[pos]
			ms.Tasks = append(ms.Tasks, row.Task.toDomain(ms.ID))
		}
	}
	return snapshot
}

func (m milestoneColumns) toDomain(bookingID uuid.UUID) domain.Milestone {
	ms := domain.Milestone{
		ID:         *m.ID,
		BookingID:  bookingID,
		PhaseID:    m.PhaseID,
		Title:      deref(m.Title),
		Status:     deref(m.Status),
		DueDate:    m.DueDate,
		RiskLevel:  deref(m.RiskLevel),
		ApprovedAt: m.ApprovedAt,
	}
	if m.ProgressPercentage != nil {
		ms.ProgressPercentage = *m.ProgressPercentage
	}
	if m.OrderIndex != nil {
		ms.OrderIndex = *m.OrderIndex
	}
	return ms
}

func (t taskColumns) toDomain(milestoneID uuid.UUID) domain.Task {
	task := domain.Task{
		ID:          *t.ID,
		MilestoneID: milestoneID,
		Title:       deref(t.Title),
		Status:      deref(t.Status),
		AssigneeID:  t.AssigneeID,
		Priority:    deref(t.Priority),
	}
	if t.ProgressPercentage != nil {
		task.ProgressPercentage = *t.ProgressPercentage
	}
	return task
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Repo) fetchFallback(ctx context.Context, bookingID uuid.UUID) (domain.Snapshot, error) {
	booking, err := r.getBooking(ctx, bookingID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot := domain.Snapshot{Booking: booking}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		phases, err := r.listPhases(gctx, bookingID)
		snapshot.Phases = phases
		return err
	})
	g.Go(func() error {
		milestones, err := r.listMilestones(gctx, bookingID)
		if err != nil {
			return err
		}
		if err := attachTasks(gctx, milestones, r.listTasks); err != nil {
			return err
		}
		snapshot.Milestones = milestones
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

// getBooking reads the booking row alone. A missing service row only leaves
// the service fields empty.
func (r *Repo) getBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	query := `
		SELECT id, status, COALESCE(approval_status, ''), approved_at, scheduled_date,
			amount_cents, currency, client_id, provider_id, service_id, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	var b domain.Booking
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.Status, &b.ApprovalStatus, &b.ApprovedAt, &b.ScheduledDate,
		&b.AmountCents, &b.Currency, &b.ClientID, &b.ProviderID, &b.ServiceID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, apperr.NotFound(bookingNotFoundMsg)
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT title, category FROM services WHERE id = $1`, b.ServiceID).
		Scan(&b.ServiceTitle, &b.ServiceCategory)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		r.log.Warn("service lookup failed", "serviceId", b.ServiceID, "error", err)
	}
	return b, nil
}

func (r *Repo) listPhases(ctx context.Context, bookingID uuid.UUID) ([]domain.Phase, error) {
	query := `
		SELECT id, booking_id, name, order_index, status
		FROM booking_phases
		WHERE booking_id = $1
		ORDER BY order_index`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking phases: %w", err)
	}
	defer rows.Close()

	var phases []domain.Phase
	for rows.Next() {
		var p domain.Phase
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.OrderIndex, &p.Status); err != nil {
			return nil, fmt.Errorf("scan booking phase: %w", err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking phases: %w", err)
	}
	return phases, nil
}

func (r *Repo) listMilestones(ctx context.Context, bookingID uuid.UUID) ([]domain.Milestone, error) {
	query := `
		SELECT id, phase_id, title, status, progress_percentage, order_index,
			due_date, risk_level, approved_at
		FROM milestones
		WHERE booking_id = $1
		ORDER BY order_index`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []domain.Milestone
	for rows.Next() {
		var m milestoneColumns
		if err := rows.Scan(
			&m.ID, &m.PhaseID, &m.Title, &m.Status, &m.ProgressPercentage, &m.OrderIndex,
			&m.DueDate, &m.RiskLevel, &m.ApprovedAt,
		); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, m.toDomain(bookingID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return milestones, nil
}

type taskLister func(ctx context.Context, milestoneID uuid.UUID) ([]domain.Task, error)

// attachTasks loads the tasks of every milestone, one lookup per milestone.
func attachTasks(ctx context.Context, milestones []domain.Milestone, listTasks taskLister) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fallbackTaskFetchLimit)

	for i := range milestones {
		milestoneID := milestones[i].ID
		g.Go(func() error {
			tasks, err := listTasks(gctx, milestoneID)
			if err != nil {
				return err
			}
			mu.Lock()
			milestones[i].Tasks = tasks
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (r *Repo) listTasks(ctx context.Context, milestoneID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, title, status, progress_percentage, assignee_id, priority
		FROM tasks
		WHERE milestone_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t := domain.Task{MilestoneID: milestoneID}
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.ProgressPercentage, &t.AssigneeID, &t.Priority); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
