package domain

import "fmt"

// ResolveNextAction returns the highest-priority next step and who owns it.
// ok is false when nothing is pending on anyone.
func ResolveNextAction(b Booking, milestones []Milestone) (next NextAction, ok bool) {
	if b.Status == BookingPending {
		return NextAction{Action: "Provider needs to approve booking", By: RoleProvider}, true
	}
	if b.Status == BookingApproved && len(milestones) == 0 {
		return NextAction{Action: "Provider needs to create project milestones", By: RoleProvider}, true
	}

	milestones = ordered(milestones)

	if current := CurrentMilestone(milestones); current != nil {
		switch current.Status {
		case MilestonePending:
			return NextAction{Action: fmt.Sprintf("Start working on %s", current.Title), By: RoleProvider}, true
		case MilestoneInProgress:
			if remaining := current.IncompleteTasks(); remaining > 0 {
				return NextAction{Action: fmt.Sprintf("Complete %d remaining task(s)", remaining), By: RoleProvider}, true
			}
			return NextAction{Action: fmt.Sprintf("Mark %s as complete", current.Title), By: RoleProvider}, true
		case MilestoneCompleted:
			return NextAction{Action: fmt.Sprintf("Review and approve %s", current.Title), By: RoleClient}, true
		}
	}

	for _, m := range milestones {
		if m.Status == MilestonePending {
			return NextAction{Action: fmt.Sprintf("Begin %s milestone", m.Title), By: RoleProvider}, true
		}
	}

	if len(milestones) > 0 && allCompleted(milestones) {
		return NextAction{Action: "Provide final project approval", By: RoleClient}, true
	}

	return NextAction{}, false
}

func allCompleted(milestones []Milestone) bool {
	for _, m := range milestones {
		if !m.IsCompleted() {
			return false
		}
	}
	return true
}
