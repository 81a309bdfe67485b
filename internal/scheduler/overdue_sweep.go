package scheduler

import (
	"context"
	"time"

	bookingrepo "business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/events"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"
)

const (
	defaultOverdueSweepInterval = time.Hour
	overdueSweepBatchSize       = 100

	jobOverdueSweep = "bookings.overdue_sweep"
)

// OverdueSweep periodically announces milestones that passed their due date.
// Each milestone is announced at most once.
type OverdueSweep struct {
	repo     bookingrepo.OverdueTracker
	bus      events.Bus
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
}

// NewOverdueSweep creates a sweep that runs every interval, or hourly when
// interval is not positive.
func NewOverdueSweep(repo bookingrepo.OverdueTracker, bus events.Bus, log *logger.Logger, interval time.Duration) *OverdueSweep {
	if interval <= 0 {
		interval = defaultOverdueSweepInterval
	}
	return &OverdueSweep{
		repo:     repo,
		bus:      bus,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *OverdueSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep drains overdue milestones in batches and returns how many were announced.
func (s *OverdueSweep) sweep(ctx context.Context) int {
	announced := 0
	for {
		batch, err := s.repo.ListOverdueMilestones(ctx, s.now(), overdueSweepBatchSize)
		if err != nil {
			s.log.Warn("overdue sweep failed", "error", err)
			metrics.IncrementJobProcessed(jobOverdueSweep, "error")
			return announced
		}

		marked := 0
		for _, m := range batch {
			// Marked before publishing: at most one announcement per milestone.
			if err := s.repo.MarkOverdueNotified(ctx, m.ID); err != nil {
				s.log.Warn("overdue milestone not marked", "milestoneId", m.ID, "error", err)
				continue
			}
			marked++
			s.bus.Publish(ctx, events.MilestoneOverdue{
				BaseEvent:   events.NewBaseEvent(),
				BookingID:   m.BookingID,
				MilestoneID: m.ID,
				Title:       m.Title,
				DueDate:     m.DueDate,
			})
		}
		announced += marked

		if len(batch) < overdueSweepBatchSize || marked == 0 {
			break
		}
	}

	if announced > 0 {
		s.log.Info("overdue milestones announced", "count", announced)
	}
	metrics.IncrementJobProcessed(jobOverdueSweep, "success")
	return announced
}
