package domain

// ClassifyStatus maps booking fields and milestone aggregates to one overall
// status. Rules are checked in order and the first match wins; an approved
// booking with a milestone in progress is in production, not approved.
func ClassifyStatus(b Booking, milestones []Milestone) OverallStatus {
	allCompleted := len(milestones) > 0
	anyInProgress := false
	for _, m := range milestones {
		if !m.IsCompleted() {
			allCompleted = false
		}
		if m.Status == MilestoneInProgress {
			anyInProgress = true
		}
	}

	switch {
	case allCompleted || b.Status == BookingCompleted:
		return StatusDelivered
	case b.Status == BookingInProgress || anyInProgress:
		return StatusInProduction
	case b.IsApproved():
		if len(milestones) == 0 {
			return StatusReadyToLaunch
		}
		return StatusApproved
	case b.Status == BookingPending:
		return StatusPendingReview
	case b.Status == BookingCancelled || b.Status == BookingOnHold:
		return OverallStatus(b.Status)
	case b.Status == "":
		return StatusPendingReview
	default:
		return OverallStatus(b.Status)
	}
}

var statusDescriptions = map[OverallStatus]string{
	StatusDelivered:     "All milestones are complete and the project has been delivered",
	StatusInProduction:  "Work is underway on this booking",
	StatusReadyToLaunch: "Booking approved, waiting for the provider to set up milestones",
	StatusApproved:      "Booking approved and milestones are ready to start",
	StatusPendingReview: "Waiting for the provider to review this booking",
	StatusCancelled:     "This booking has been cancelled",
	StatusOnHold:        "This booking is on hold",
}

// DescribeStatus returns a human-readable sentence for an overall status.
func DescribeStatus(status OverallStatus) string {
	if d, ok := statusDescriptions[status]; ok {
		return d
	}
	return "Booking status: " + string(status)
}
