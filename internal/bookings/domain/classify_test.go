package domain

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	approvedFlag := booking(BookingPending)
	approvedFlag.ApprovedAt = ptrTime(testNow)

	approvalStatus := booking("")
	approvalStatus.ApprovalStatus = BookingApproved

	tests := []struct {
		name       string
		booking    Booking
		milestones []Milestone
		want       OverallStatus
	}{
		{"completed booking", booking(BookingCompleted), nil, StatusDelivered},
		{
			"all milestones completed overrides raw status",
			booking(BookingApproved),
			[]Milestone{milestone(0, MilestoneCompleted), milestone(1, MilestoneCompleted)},
			StatusDelivered,
		},
		{"booking in progress", booking(BookingInProgress), nil, StatusInProduction},
		{
			"approved with milestone in progress is in production",
			booking(BookingApproved),
			[]Milestone{milestone(0, MilestoneCompleted), milestone(1, MilestoneInProgress)},
			StatusInProduction,
		},
		{"approved without milestones", booking(BookingApproved), nil, StatusReadyToLaunch},
		{
			"approved with pending milestones",
			booking(BookingApproved),
			[]Milestone{milestone(0, MilestonePending)},
			StatusApproved,
		},
		{"approval timestamp counts as approved", approvedFlag, nil, StatusReadyToLaunch},
		{"approval status counts as approved", approvalStatus, []Milestone{milestone(0, MilestonePending)}, StatusApproved},
		{"pending", booking(BookingPending), nil, StatusPendingReview},
		{"cancelled passes through", booking(BookingCancelled), []Milestone{milestone(0, MilestonePending)}, StatusCancelled},
		{"on hold passes through", booking(BookingOnHold), nil, StatusOnHold},
		{"unknown status passes through", booking("disputed"), nil, OverallStatus("disputed")},
		{"missing status defaults to pending review", booking(""), nil, StatusPendingReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.booking, tt.milestones))
		})
	}
}

func TestClassifyAllCompletedIsDelivered(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 17))
	for i := 0; i < 200; i++ {
		s := randomSnapshot(r)
		if len(s.Milestones) == 0 {
			continue
		}
		for j := range s.Milestones {
			s.Milestones[j].Status = MilestoneCompleted
		}
		assert.Equal(t, StatusDelivered, ClassifyStatus(s.Booking, s.Milestones), "raw status %q", s.Booking.Status)
		assert.Equal(t, 100, CalculateProgress(s.Milestones))
	}
}

func TestDescribeStatus(t *testing.T) {
	assert.Equal(t, "This booking has been cancelled", DescribeStatus(StatusCancelled))
	assert.Equal(t, "Booking status: disputed", DescribeStatus(OverallStatus("disputed")))
}
