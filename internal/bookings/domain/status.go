package domain

import "time"

// DeriveStatus computes the full SmartBookingStatus for role from one
// snapshot. It is deterministic for a fixed snapshot, role and now.
func DeriveStatus(snapshot Snapshot, role Role, now time.Time) SmartBookingStatus {
	s := NormalizeSnapshot(snapshot)
	b := s.Booking

	progress := SummarizeProgress(s.Milestones)
	overall := ClassifyStatus(b, s.Milestones)
	current := CurrentMilestone(s.Milestones)

	result := SmartBookingStatus{
		BookingID:           b.ID,
		OverallStatus:       overall,
		CurrentPhase:        currentPhase(s.Phases),
		CurrentMilestone:    current,
		ProgressPercentage:  progress.Percentage,
		EstimatedCompletion: EstimateCompletion(b, s.Milestones, overall),
		MilestonesCompleted: progress.MilestonesCompleted,
		MilestonesTotal:     progress.MilestonesTotal,
		TasksCompleted:      progress.TasksCompleted,
		TasksTotal:          progress.TasksTotal,
		StatusDescription:   DescribeStatus(overall),
		Risks:               DetectRisks(s.Milestones, now),
	}

	if next, ok := ResolveNextAction(b, s.Milestones); ok {
		action, by := next.Action, next.By
		result.NextAction = &action
		result.NextActionBy = &by
	}

	result.ContextualActions = BuildActionCatalog(CatalogInput{
		Booking:    b,
		Milestones: s.Milestones,
		Current:    current,
		Progress:   progress.Percentage,
	}, role)

	return result
}

// EstimateCompletion is the latest due date among unfinished milestones,
// else the booking's scheduled date. Delivered bookings have none.
func EstimateCompletion(b Booking, milestones []Milestone, overall OverallStatus) *time.Time {
	if overall == StatusDelivered {
		return nil
	}

	var latest *time.Time
	for _, m := range milestones {
		if m.IsCompleted() || m.DueDate == nil {
			continue
		}
		if latest == nil || m.DueDate.After(*latest) {
			due := *m.DueDate
			latest = &due
		}
	}
	if latest != nil {
		return latest
	}
	if b.ScheduledDate != nil {
		scheduled := *b.ScheduledDate
		return &scheduled
	}
	return nil
}

func currentPhase(phases []Phase) *string {
	for _, p := range phases {
		if p.Status != MilestoneCompleted && p.Name != "" {
			name := p.Name
			return &name
		}
	}
	return nil
}
