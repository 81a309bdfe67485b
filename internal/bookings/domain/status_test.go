package domain

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePendingBookingForProvider(t *testing.T) {
	s := Snapshot{Booking: booking(BookingPending)}

	got := DeriveStatus(s, RoleProvider, testNow)

	assert.Equal(t, StatusPendingReview, got.OverallStatus)
	require.NotNil(t, got.NextActionBy)
	assert.Equal(t, RoleProvider, *got.NextActionBy)
	assert.Equal(t, "Provider needs to approve booking", *got.NextAction)

	approve, ok := findAction(got.ContextualActions, "approve_booking")
	require.True(t, ok)
	assert.True(t, approve.Urgent)
	_, ok = findAction(got.ContextualActions, "decline_booking")
	assert.True(t, ok)
}

func TestDeriveInProductionForClient(t *testing.T) {
	s := Snapshot{
		Booking: booking(BookingApproved),
		Milestones: []Milestone{
			milestone(0, MilestoneCompleted),
			milestone(1, MilestoneInProgress, MilestoneCompleted, MilestonePending),
		},
	}

	got := DeriveStatus(s, RoleClient, testNow)

	assert.Equal(t, StatusInProduction, got.OverallStatus)
	assert.Equal(t, 50, got.ProgressPercentage)
	require.NotNil(t, got.NextAction)
	assert.Equal(t, "Complete 1 remaining task(s)", *got.NextAction)
	assert.Equal(t, RoleProvider, *got.NextActionBy)
	assert.Equal(t, 1, got.MilestonesCompleted)
	assert.Equal(t, 2, got.MilestonesTotal)
	assert.Equal(t, 1, got.TasksCompleted)
	assert.Equal(t, 2, got.TasksTotal)
	require.NotNil(t, got.CurrentMilestone)
	assert.Equal(t, s.Milestones[1].ID, got.CurrentMilestone.ID)
}

func TestDeriveStartedMilestoneForProvider(t *testing.T) {
	s := Snapshot{
		Booking: booking(BookingApproved),
		Milestones: []Milestone{
			milestone(0, MilestoneCompleted),
			milestone(1, MilestoneInProgress, MilestoneCompleted, MilestoneCompleted),
		},
	}
	s.Milestones[1].Title = "Design review"

	got := DeriveStatus(s, RoleProvider, testNow)

	_, started := findAction(got.ContextualActions, "start_milestone")
	assert.False(t, started)
	require.NotNil(t, got.NextAction)
	assert.Equal(t, "Mark Design review as complete", *got.NextAction)
	assert.Equal(t, RoleProvider, *got.NextActionBy)

	complete, ok := findAction(got.ContextualActions, "complete_milestone")
	require.True(t, ok)
	assert.Equal(t, s.Milestones[1].ID.String(), complete.Params["milestoneId"])
}

func TestDeriveZeroMilestoneBoundary(t *testing.T) {
	for _, role := range []Role{RoleClient, RoleProvider, RoleAdmin} {
		got := DeriveStatus(Snapshot{Booking: booking(BookingApproved)}, role, testNow)
		assert.Equal(t, StatusReadyToLaunch, got.OverallStatus)
		require.NotNil(t, got.NextAction)
		assert.Equal(t, "Provider needs to create project milestones", *got.NextAction)
		assert.Equal(t, RoleProvider, *got.NextActionBy)
		assert.Equal(t, 0, got.ProgressPercentage)
	}
}

func TestDeriveAllCompletedBoundary(t *testing.T) {
	for _, raw := range randomBookingStatuses {
		s := Snapshot{
			Booking:    booking(raw),
			Milestones: []Milestone{milestone(0, MilestoneCompleted), milestone(1, MilestoneCompleted, MilestonePending)},
		}
		got := DeriveStatus(s, RoleClient, testNow)
		assert.Equal(t, StatusDelivered, got.OverallStatus, raw)
		assert.Equal(t, 100, got.ProgressPercentage, raw)
		assert.Nil(t, got.EstimatedCompletion, raw)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		s := randomSnapshot(r)
		for _, role := range []Role{RoleClient, RoleProvider, RoleAdmin} {
			assert.Equal(t, DeriveStatus(s, role, testNow), DeriveStatus(s, role, testNow))
		}
	}
}

func TestDeriveNoNextAction(t *testing.T) {
	got := DeriveStatus(Snapshot{Booking: booking(BookingCancelled)}, RoleClient, testNow)
	assert.Equal(t, StatusCancelled, got.OverallStatus)
	assert.Nil(t, got.NextAction)
	assert.Nil(t, got.NextActionBy)
	assert.NotNil(t, got.ContextualActions)
	assert.NotNil(t, got.Risks)
}

func TestDeriveNormalizesSnapshot(t *testing.T) {
	phaseDone := Phase{ID: uuid.New(), Name: "Discovery", OrderIndex: 0, Status: "Completed"}
	phaseOpen := Phase{ID: uuid.New(), Name: "Build", OrderIndex: 1, Status: "in_progress"}

	untitled := milestone(0, " IN_PROGRESS ")
	untitled.Title = "  "
	untitled.ProgressPercentage = 140
	untitled.RiskLevel = "extreme"

	s := Snapshot{
		Booking:    booking(" Approved "),
		Phases:     []Phase{phaseOpen, phaseDone},
		Milestones: []Milestone{untitled},
	}

	got := DeriveStatus(s, RoleProvider, testNow)

	assert.Equal(t, StatusInProduction, got.OverallStatus)
	require.NotNil(t, got.CurrentPhase)
	assert.Equal(t, "Build", *got.CurrentPhase)
	require.NotNil(t, got.CurrentMilestone)
	assert.Equal(t, UntitledMilestone, got.CurrentMilestone.Title)
	assert.Equal(t, 100, got.CurrentMilestone.ProgressPercentage)
	assert.Equal(t, RiskLow, got.CurrentMilestone.RiskLevel)
	assert.Empty(t, got.Risks)

	// The caller's snapshot is left untouched.
	assert.Equal(t, "  ", s.Milestones[0].Title)
}

func TestEstimateCompletion(t *testing.T) {
	scheduled := testNow.Add(30 * 24 * time.Hour)
	b := booking(BookingApproved)
	b.ScheduledDate = &scheduled

	early := milestone(0, MilestonePending)
	early.DueDate = ptrTime(testNow.Add(5 * 24 * time.Hour))
	late := milestone(1, MilestonePending)
	late.DueDate = ptrTime(testNow.Add(9 * 24 * time.Hour))
	doneLater := milestone(2, MilestoneCompleted)
	doneLater.DueDate = ptrTime(testNow.Add(50 * 24 * time.Hour))

	got := EstimateCompletion(b, []Milestone{early, late, doneLater}, StatusApproved)
	require.NotNil(t, got)
	assert.Equal(t, *late.DueDate, *got)

	got = EstimateCompletion(b, []Milestone{milestone(0, MilestonePending)}, StatusApproved)
	require.NotNil(t, got)
	assert.Equal(t, scheduled, *got)

	assert.Nil(t, EstimateCompletion(booking(BookingPending), nil, StatusPendingReview))
	assert.Nil(t, EstimateCompletion(b, nil, StatusDelivered))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("provider")
	assert.True(t, ok)
	assert.Equal(t, RoleProvider, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}
