package domain

import (
	"sort"
	"strings"
)

// UntitledMilestone is used when the record store returned no title.
const UntitledMilestone = "Untitled milestone"

var knownRiskLevels = map[string]bool{
	RiskLow:      true,
	RiskMedium:   true,
	RiskHigh:     true,
	RiskCritical: true,
}

// NormalizeSnapshot resolves missing and malformed fields once so the
// derivations can read the snapshot without nil checks. The input is not
// modified.
func NormalizeSnapshot(s Snapshot) Snapshot {
	out := Snapshot{Booking: s.Booking}
	out.Booking.Status = normalizeStatus(s.Booking.Status)
	out.Booking.ApprovalStatus = normalizeStatus(s.Booking.ApprovalStatus)

	out.Phases = make([]Phase, len(s.Phases))
	for i, p := range s.Phases {
		p.Status = normalizeStatus(p.Status)
		p.Name = strings.TrimSpace(p.Name)
		out.Phases[i] = p
	}
	sort.SliceStable(out.Phases, func(i, j int) bool {
		return out.Phases[i].OrderIndex < out.Phases[j].OrderIndex
	})

	out.Milestones = make([]Milestone, len(s.Milestones))
	for i, m := range s.Milestones {
		m.Status = normalizeStatus(m.Status)
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			m.Title = UntitledMilestone
		}
		m.ProgressPercentage = clampPercentage(m.ProgressPercentage)
		m.RiskLevel = normalizeStatus(m.RiskLevel)
		if !knownRiskLevels[m.RiskLevel] {
			m.RiskLevel = RiskLow
		}

		tasks := make([]Task, len(m.Tasks))
		for j, t := range m.Tasks {
			t.Status = normalizeStatus(t.Status)
			t.ProgressPercentage = clampPercentage(t.ProgressPercentage)
			tasks[j] = t
		}
		m.Tasks = tasks
		out.Milestones[i] = m
	}
	sort.SliceStable(out.Milestones, func(i, j int) bool {
		return out.Milestones[i].OrderIndex < out.Milestones[j].OrderIndex
	})

	return out
}

func normalizeStatus(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func clampPercentage(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// ordered returns milestones sorted by order index, copying only when the
// input is out of order.
func ordered(milestones []Milestone) []Milestone {
	if sort.SliceIsSorted(milestones, func(i, j int) bool {
		return milestones[i].OrderIndex < milestones[j].OrderIndex
	}) {
		return milestones
	}
	sorted := make([]Milestone, len(milestones))
	copy(sorted, milestones)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})
	return sorted
}

// CurrentMilestone returns the first non-completed milestone in order, or nil.
func CurrentMilestone(milestones []Milestone) *Milestone {
	for _, m := range ordered(milestones) {
		if !m.IsCompleted() {
			current := m
			return &current
		}
	}
	return nil
}
