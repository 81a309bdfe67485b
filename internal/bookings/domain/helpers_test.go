package domain

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func milestone(order int, status string, tasks ...string) Milestone {
	id := uuid.New()
	m := Milestone{
		ID:         id,
		Title:      "Milestone " + string(rune('A'+order)),
		Status:     status,
		OrderIndex: order,
		RiskLevel:  RiskLow,
	}
	for _, ts := range tasks {
		m.Tasks = append(m.Tasks, Task{ID: uuid.New(), MilestoneID: id, Title: "task", Status: ts})
	}
	return m
}

func booking(status string) Booking {
	return Booking{
		ID:         uuid.New(),
		Status:     status,
		ClientID:   uuid.New(),
		ProviderID: uuid.New(),
		ServiceID:  uuid.New(),
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

var (
	randomBookingStatuses   = []string{BookingPending, BookingApproved, BookingInProgress, BookingCompleted, BookingCancelled, BookingOnHold}
	randomMilestoneStatuses = []string{MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneCancelled, MilestoneOnHold}
	randomTaskStatuses      = []string{MilestonePending, MilestoneInProgress, MilestoneCompleted}
	randomRiskLevels        = []string{RiskLow, RiskMedium, RiskHigh, RiskCritical}
)

func randomSnapshot(r *rand.Rand) Snapshot {
	b := booking(randomBookingStatuses[r.IntN(len(randomBookingStatuses))])
	if r.IntN(4) == 0 {
		b.ApprovedAt = ptrTime(testNow.Add(-48 * time.Hour))
	}

	n := r.IntN(5)
	milestones := make([]Milestone, 0, n)
	for i := 0; i < n; i++ {
		m := milestone(i, randomMilestoneStatuses[r.IntN(len(randomMilestoneStatuses))])
		m.RiskLevel = randomRiskLevels[r.IntN(len(randomRiskLevels))]
		if r.IntN(2) == 0 {
			m.DueDate = ptrTime(testNow.Add(time.Duration(r.IntN(20)-10) * 24 * time.Hour))
		}
		for j := r.IntN(4); j > 0; j-- {
			m.Tasks = append(m.Tasks, Task{
				ID:          uuid.New(),
				MilestoneID: m.ID,
				Title:       "task",
				Status:      randomTaskStatuses[r.IntN(len(randomTaskStatuses))],
			})
		}
		milestones = append(milestones, m)
	}
	return Snapshot{Booking: b, Milestones: milestones}
}

func cloneMilestones(in []Milestone) []Milestone {
	out := make([]Milestone, len(in))
	for i, m := range in {
		m.Tasks = append([]Task(nil), m.Tasks...)
		out[i] = m
	}
	return out
}
