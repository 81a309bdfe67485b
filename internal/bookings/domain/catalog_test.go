package domain

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionIDs(actions []ContextualAction) []string {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return ids
}

func findAction(actions []ContextualAction, id string) (ContextualAction, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return ContextualAction{}, false
}

func catalogFor(s Snapshot, role Role) []ContextualAction {
	return DeriveStatus(s, role, testNow).ContextualActions
}

func TestCatalogPendingBooking(t *testing.T) {
	s := Snapshot{Booking: booking(BookingPending)}

	provider := catalogFor(s, RoleProvider)
	assert.Equal(t, []string{"approve_booking", "decline_booking"}, actionIDs(provider))
	approve, _ := findAction(provider, "approve_booking")
	assert.True(t, approve.Urgent)
	assert.Equal(t, ActionPrimary, approve.Type)
	assert.Equal(t, ActionApprove, approve.Action)
	decline, _ := findAction(provider, "decline_booking")
	assert.Equal(t, ActionDanger, decline.Type)
	assert.Equal(t, ActionDecline, decline.Action)

	assert.Empty(t, catalogFor(s, RoleClient))
	assert.Equal(t, []string{"manage_project", "force_approve"}, actionIDs(catalogFor(s, RoleAdmin)))
}

func TestCatalogApprovedWithoutMilestones(t *testing.T) {
	s := Snapshot{Booking: booking(BookingApproved)}

	provider := catalogFor(s, RoleProvider)
	assert.Equal(t, []string{"create_milestones", "create_invoice"}, actionIDs(provider))
	create, _ := findAction(provider, "create_milestones")
	assert.True(t, create.Urgent)
}

func TestCatalogStartMilestoneCarriesID(t *testing.T) {
	first := milestone(0, MilestonePending)
	s := Snapshot{Booking: booking(BookingApproved), Milestones: []Milestone{first, milestone(1, MilestonePending)}}

	provider := catalogFor(s, RoleProvider)
	assert.Equal(t, []string{"start_milestone", "create_invoice"}, actionIDs(provider))
	start, _ := findAction(provider, "start_milestone")
	assert.Equal(t, first.ID.String(), start.Params["milestoneId"])
}

func TestCatalogCompletedProject(t *testing.T) {
	s := Snapshot{
		Booking:    booking(BookingInProgress),
		Milestones: []Milestone{milestone(0, MilestoneCompleted), milestone(1, MilestoneCompleted)},
	}

	provider := catalogFor(s, RoleProvider)
	assert.Equal(t, []string{"complete_project"}, actionIDs(provider))

	client := catalogFor(s, RoleClient)
	assert.Equal(t, []string{"approve_milestone", "add_feedback", "final_approval"}, actionIDs(client))
	final, _ := findAction(client, "final_approval")
	assert.True(t, final.Urgent)
	assert.Equal(t, ActionCompleteProject, final.Action)
	approve, _ := findAction(client, "approve_milestone")
	assert.Equal(t, s.Milestones[1].ID.String(), approve.Params["milestoneId"])
}

func TestCatalogApprovedMilestoneIsNotOfferedAgain(t *testing.T) {
	done := milestone(0, MilestoneCompleted)
	done.ApprovedAt = ptrTime(testNow)
	s := Snapshot{Booking: booking(BookingApproved), Milestones: []Milestone{done, milestone(1, MilestonePending)}}

	_, ok := findAction(catalogFor(s, RoleClient), "approve_milestone")
	assert.False(t, ok)
}

func TestCatalogOffersApprovalOfEarlierMilestone(t *testing.T) {
	done := milestone(0, MilestoneCompleted)
	s := Snapshot{
		Booking:    booking(BookingApproved),
		Milestones: []Milestone{done, milestone(1, MilestoneInProgress, MilestoneCompleted, MilestonePending)},
	}

	client := catalogFor(s, RoleClient)
	assert.Equal(t, []string{"approve_milestone"}, actionIDs(client))
	approve, _ := findAction(client, "approve_milestone")
	assert.Equal(t, done.ID.String(), approve.Params["milestoneId"])
	assert.Equal(t, ActionApproveMilestone, approve.Action)

	_, ok := findAction(catalogFor(s, RoleProvider), "approve_milestone")
	assert.False(t, ok)
}

func TestCatalogAdminManageProject(t *testing.T) {
	s := Snapshot{Booking: booking(BookingInProgress)}

	admin := catalogFor(s, RoleAdmin)
	require.Len(t, admin, 1)
	assert.Equal(t, ActionNavigate, admin[0].Action)
	assert.Equal(t, "/admin/bookings/"+s.Booking.ID.String(), admin[0].Params["href"])
}

func TestCatalogRoleExclusivity(t *testing.T) {
	r := rand.New(rand.NewPCG(21, 34))
	roles := []Role{RoleClient, RoleProvider, RoleAdmin}

	for i := 0; i < 500; i++ {
		s := randomSnapshot(r)
		for _, role := range roles {
			for _, a := range catalogFor(s, role) {
				assert.True(t, slices.Contains(a.Roles, role), "%s offered to %s", a.ID, role)
				assert.True(t, IsPermitted(a.Action, role), "%s not permitted for %s", a.Action, role)
			}
		}
	}
}

func TestPermittedRolesReturnsCopy(t *testing.T) {
	roles := PermittedRoles(ActionApprove)
	roles[0] = RoleClient
	assert.False(t, IsPermitted(ActionApprove, RoleClient))
}
