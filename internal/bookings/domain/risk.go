package domain

import (
	"fmt"
	"time"
)

// Risk identifiers, in display order.
const (
	RiskIDDeadline   = "deadline_risk"
	RiskIDQuality    = "quality_risk"
	RiskIDDependency = "dependency_risk"
)

// DetectRisks runs the deadline, quality and dependency checks. Each check
// emits at most one aggregated risk; the result is never nil.
func DetectRisks(milestones []Milestone, now time.Time) []Risk {
	milestones = ordered(milestones)
	risks := make([]Risk, 0, 3)

	if overdue := countOverdue(milestones, now); overdue > 0 {
		risks = append(risks, Risk{
			ID:          RiskIDDeadline,
			Type:        RiskDeadline,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%d milestone(s) are past their due date", overdue),
			Impact:      "Project delivery may be delayed",
			Mitigation:  "Review the timeline with the client and reprioritize overdue work",
		})
	}

	if elevated := countElevatedRisk(milestones); elevated > 0 {
		risks = append(risks, Risk{
			ID:          RiskIDQuality,
			Type:        RiskQuality,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d milestone(s) are rated high risk", elevated),
			Impact:      "Deliverables may need rework",
			Mitigation:  "Schedule an extra review before completing high-risk milestones",
		})
	}

	if blocked := countBlocked(milestones); blocked > 0 {
		risks = append(risks, Risk{
			ID:          RiskIDDependency,
			Type:        RiskDependency,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d milestone(s) are waiting on earlier milestones", blocked),
			Impact:      "Later milestones cannot start on time",
			Mitigation:  "Finish the earlier milestones first or adjust the plan",
		})
	}

	return risks
}

// OverdueMilestones returns milestones past their due date that are not completed.
func OverdueMilestones(milestones []Milestone, now time.Time) []Milestone {
	var out []Milestone
	for _, m := range milestones {
		if isOverdue(m, now) {
			out = append(out, m)
		}
	}
	return out
}

func isOverdue(m Milestone, now time.Time) bool {
	return m.DueDate != nil && m.DueDate.Before(now) && !m.IsCompleted()
}

func countOverdue(milestones []Milestone, now time.Time) int {
	n := 0
	for _, m := range milestones {
		if isOverdue(m, now) {
			n++
		}
	}
	return n
}

func countElevatedRisk(milestones []Milestone) int {
	n := 0
	for _, m := range milestones {
		if m.RiskLevel == RiskHigh || m.RiskLevel == RiskCritical {
			n++
		}
	}
	return n
}

// countBlocked counts pending milestones with an unfinished milestone of a
// strictly lower order index. milestones must be sorted.
func countBlocked(milestones []Milestone) int {
	n := 0
	for i, m := range milestones {
		if m.Status != MilestonePending {
			continue
		}
		for _, earlier := range milestones[:i] {
			if earlier.OrderIndex < m.OrderIndex && !earlier.IsCompleted() {
				n++
				break
			}
		}
	}
	return n
}
