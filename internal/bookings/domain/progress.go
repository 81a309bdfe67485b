package domain

import "math"

// ProgressSummary carries the overall percentage and the counts behind it.
type ProgressSummary struct {
	Percentage          int
	MilestonesCompleted int
	MilestonesTotal     int
	TasksCompleted      int
	TasksTotal          int
}

// SummarizeProgress averages milestone completion and task completion.
// A milestone without tasks contributes nothing to task progress, so a
// booking with milestones but no tasks is capped at 50% until it is fully
// delivered. A booking whose every milestone is completed is at 100%.
func SummarizeProgress(milestones []Milestone) ProgressSummary {
	var s ProgressSummary
	s.MilestonesTotal = len(milestones)

	for _, m := range milestones {
		if m.IsCompleted() {
			s.MilestonesCompleted++
		}
		for _, t := range m.Tasks {
			s.TasksTotal++
			if t.Status == MilestoneCompleted {
				s.TasksCompleted++
			}
		}
	}

	if s.MilestonesTotal == 0 {
		return s
	}
	if s.MilestonesCompleted == s.MilestonesTotal {
		s.Percentage = 100
		return s
	}

	milestoneProgress := ratio(s.MilestonesCompleted, s.MilestonesTotal)
	taskProgress := ratio(s.TasksCompleted, s.TasksTotal)
	s.Percentage = int(math.Round((milestoneProgress + taskProgress) / 2))
	return s
}

// CalculateProgress returns only the overall 0-100 percentage.
func CalculateProgress(milestones []Milestone) int {
	return SummarizeProgress(milestones).Percentage
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
