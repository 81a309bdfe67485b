package service

import (
	"context"
	"testing"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executorFixture struct {
	executor  *ActionExecutor
	store     *fakeStore
	approver  *fakeApprover
	guard     *fakeGuard
	messenger *fakeMessenger
	invoices  *fakeInvoices
	planner   *fakePlanner
	bus       *recordingBus
	clientID  uuid.UUID
	provider  uuid.UUID
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		approver:  &fakeApprover{},
		guard:     &fakeGuard{},
		messenger: &fakeMessenger{},
		invoices:  &fakeInvoices{},
		planner:   &fakePlanner{},
		bus:       &recordingBus{},
		clientID:  uuid.New(),
		provider:  uuid.New(),
	}
	f.store = &fakeStore{participants: repository.Participants{
		ClientID:        f.clientID,
		ProviderID:      f.provider,
		ServiceCategory: "web_development",
	}}
	f.executor = NewActionExecutor(ExecutorDeps{
		Store:     f.store,
		Approver:  f.approver,
		Guard:     f.guard,
		Messenger: f.messenger,
		Invoices:  f.invoices,
		Planner:   f.planner,
		EventBus:  f.bus,
	}, logger.Discard())
	return f
}

func (f *executorFixture) run(action domain.ActionKey, role domain.Role, params map[string]any) domain.ActionResult {
	actor := f.provider
	if role == domain.RoleClient {
		actor = f.clientID
	}
	return f.executor.ExecuteAction(context.Background(), ActionRequest{
		BookingID: uuid.New(),
		Action:    action,
		Params:    params,
		Role:      role,
		ActorID:   actor,
	})
}

func TestApproveAgainstFailingEndpoint(t *testing.T) {
	f := newExecutorFixture()
	f.approver.err = apperr.Unavailable("approval endpoint returned 502", nil)

	result := f.run(domain.ActionApprove, domain.RoleProvider, map[string]any{})

	assert.Equal(t, domain.ActionResult{Success: false, Message: "Failed to update booking"}, result)
	assert.Equal(t, 1, f.approver.calls)
	assert.False(t, f.guard.held, "guard must be released after a failed approval")
}

func TestApproveSucceeds(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionApprove, domain.RoleProvider, nil)

	assert.True(t, result.Success)
	assert.Equal(t, "Booking approved", result.Message)
	assert.Equal(t, 1, f.guard.released)
	// The approval endpoint owns the follow-up events.
	assert.Empty(t, f.bus.names())
}

func TestApproveRejectedWhileAnotherApprovalRuns(t *testing.T) {
	f := newExecutorFixture()
	f.guard.held = true

	result := f.run(domain.ActionApprove, domain.RoleProvider, nil)

	assert.Equal(t, domain.ActionResult{Success: false, Message: "Booking approval already in progress"}, result)
	assert.Zero(t, f.approver.calls)
}

func TestApproveGuardUnavailable(t *testing.T) {
	f := newExecutorFixture()
	f.guard.err = errStoreDown

	result := f.run(domain.ActionApprove, domain.RoleProvider, nil)

	assert.Equal(t, "Failed to update booking", result.Message)
	assert.Zero(t, f.approver.calls)
}

func TestUnknownAction(t *testing.T) {
	f := newExecutorFixture()

	for _, key := range []domain.ActionKey{"launch_rocket", "", domain.ActionNavigate} {
		result := f.run(key, domain.RoleAdmin, nil)
		assert.Equal(t, domain.ActionResult{Success: false, Message: "Unknown action."}, result, key)
	}
}

func TestPermissionIsCheckedAgain(t *testing.T) {
	tests := []struct {
		action domain.ActionKey
		role   domain.Role
	}{
		{domain.ActionApprove, domain.RoleClient},
		{domain.ActionDecline, domain.RoleClient},
		{domain.ActionStartMilestone, domain.RoleClient},
		{domain.ActionAddFeedback, domain.RoleAdmin},
		{domain.ActionApproveMilestone, domain.RoleProvider},
		{domain.ActionCreateInvoice, domain.RoleClient},
		{domain.ActionDecline, domain.Role("stranger")},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.role), func(t *testing.T) {
			f := newExecutorFixture()
			result := f.run(tt.action, tt.role, map[string]any{"milestoneId": uuid.NewString()})
			assert.Equal(t, domain.ActionResult{Success: false, Message: "You do not have permission to perform this action."}, result)
			assert.Empty(t, f.store.bookingStatus)
			assert.Nil(t, f.store.milestoneUpdate)
			assert.Zero(t, f.approver.calls)
		})
	}
}

func TestDeclineAndCompleteProject(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionDecline, domain.RoleProvider, nil)
	require.True(t, result.Success)
	assert.Equal(t, domain.BookingCancelled, f.store.bookingStatus)

	result = f.run(domain.ActionCompleteProject, domain.RoleClient, nil)
	require.True(t, result.Success)
	assert.Equal(t, "Project completed", result.Message)
	assert.Equal(t, domain.BookingCompleted, f.store.bookingStatus)

	assert.Equal(t, []string{"bookings.status.changed", "bookings.status.changed"}, f.bus.names())
}

func TestBookingMutationFailure(t *testing.T) {
	f := newExecutorFixture()
	f.store.err = errStoreDown

	result := f.run(domain.ActionDecline, domain.RoleProvider, nil)

	assert.Equal(t, domain.ActionResult{Success: false, Message: "Failed to update booking"}, result)
	assert.Empty(t, f.bus.names())
}

func TestMilestoneActionsRequireID(t *testing.T) {
	f := newExecutorFixture()

	for _, params := range []map[string]any{nil, {}, {"milestoneId": ""}, {"milestoneId": "nope"}, {"milestoneId": 42}} {
		result := f.run(domain.ActionStartMilestone, domain.RoleProvider, params)
		assert.Equal(t, domain.ActionResult{Success: false, Message: "Milestone ID is required"}, result)
	}
	assert.Nil(t, f.store.milestoneUpdate)
}

func TestStartMilestone(t *testing.T) {
	f := newExecutorFixture()
	id := uuid.New()

	result := f.run(domain.ActionStartMilestone, domain.RoleProvider, map[string]any{"milestoneId": id.String()})

	require.True(t, result.Success)
	require.NotNil(t, f.store.milestoneUpdate)
	assert.Equal(t, id, f.store.milestoneUpdate.MilestoneID)
	assert.Equal(t, domain.MilestoneInProgress, f.store.milestoneUpdate.Status)
	assert.Nil(t, f.store.milestoneUpdate.ProgressPercentage)
	assert.Equal(t, []string{"bookings.milestone.changed"}, f.bus.names())
}

func TestCompleteMilestoneForcesFullProgress(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionCompleteMilestone, domain.RoleProvider, map[string]any{"milestoneId": uuid.NewString()})

	require.True(t, result.Success)
	assert.Equal(t, domain.MilestoneCompleted, f.store.milestoneUpdate.Status)
	require.NotNil(t, f.store.milestoneUpdate.ProgressPercentage)
	assert.Equal(t, 100, *f.store.milestoneUpdate.ProgressPercentage)
}

func TestApproveMilestone(t *testing.T) {
	f := newExecutorFixture()
	id := uuid.New()

	result := f.run(domain.ActionApproveMilestone, domain.RoleClient, map[string]any{"milestoneId": id.String()})
	require.True(t, result.Success)
	assert.Equal(t, id, f.store.approvedID)

	f.store.err = apperr.Conflict("milestone is not awaiting approval")
	result = f.run(domain.ActionApproveMilestone, domain.RoleClient, map[string]any{"milestoneId": id.String()})
	assert.Equal(t, domain.ActionResult{Success: false, Message: "Milestone is not awaiting approval"}, result)
}

func TestAddFeedbackMessagesCounterParty(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionAddFeedback, domain.RoleClient, map[string]any{"feedback": "  Looks great  "})

	require.True(t, result.Success)
	require.Len(t, f.messenger.sent, 1)
	msg := f.messenger.sent[0]
	assert.Equal(t, f.provider, msg.ReceiverID)
	assert.Equal(t, f.clientID, msg.SenderID)
	assert.Equal(t, "Looks great", msg.Content)
	assert.Equal(t, defaultFeedbackSubject, msg.Subject)
}

func TestAddFeedbackDeliveryFailureStillSucceeds(t *testing.T) {
	f := newExecutorFixture()
	f.messenger.err = errStoreDown

	result := f.run(domain.ActionAddFeedback, domain.RoleProvider, nil)

	assert.Equal(t, domain.ActionResult{Success: true, Message: "Feedback submitted"}, result)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.clientID, f.messenger.sent[0].ReceiverID)
}

func TestAddFeedbackWithoutCounterPartyFails(t *testing.T) {
	f := newExecutorFixture()
	f.store.participants.ProviderID = uuid.Nil

	result := f.run(domain.ActionAddFeedback, domain.RoleClient, nil)
	assert.False(t, result.Success)
	assert.Empty(t, f.messenger.sent)

	f = newExecutorFixture()
	f.store.participantsErr = apperr.NotFound("booking not found")
	result = f.run(domain.ActionAddFeedback, domain.RoleClient, nil)
	assert.False(t, result.Success)
	assert.Empty(t, f.messenger.sent)
}

func TestCreateMilestonesFromTitles(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionCreateMilestones, domain.RoleProvider, map[string]any{
		"titles": []any{"Design", " Build "},
	})

	require.True(t, result.Success)
	require.Len(t, f.store.created, 2)
	assert.Equal(t, "Build", f.store.created[1].Title)
	assert.Equal(t, 1, f.store.created[1].OrderIndex)
	assert.Empty(t, f.planner.category)
	assert.Equal(t, []string{"bookings.milestones.created"}, f.bus.names())
}

func TestCreateMilestonesFromTemplate(t *testing.T) {
	f := newExecutorFixture()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f.executor.now = func() time.Time { return now }

	result := f.run(domain.ActionCreateMilestones, domain.RoleProvider, nil)

	require.True(t, result.Success)
	assert.Equal(t, "web_development", f.planner.category)
	require.Len(t, f.store.created, 2)
	require.NotNil(t, f.store.created[0].DueDate)
	assert.Equal(t, now.AddDate(0, 0, 2), *f.store.created[0].DueDate)
	assert.Equal(t, "medium", f.store.created[1].RiskLevel)
}

func TestCreateMilestonesRejectsBadTitles(t *testing.T) {
	f := newExecutorFixture()

	for _, titles := range []any{"Design", []any{}, []any{"ok", 3}, []string{" "}} {
		result := f.run(domain.ActionCreateMilestones, domain.RoleProvider, map[string]any{"titles": titles})
		assert.False(t, result.Success)
	}
	assert.Nil(t, f.store.created)
}

func TestCreateMilestonesWhenPlanExists(t *testing.T) {
	f := newExecutorFixture()
	f.store.err = apperr.Conflict("booking already has milestones")

	result := f.run(domain.ActionCreateMilestones, domain.RoleProvider, map[string]any{"titles": []string{"A"}})

	assert.Equal(t, domain.ActionResult{Success: false, Message: "Milestones already exist for this booking"}, result)
}

func TestCreateInvoice(t *testing.T) {
	f := newExecutorFixture()

	result := f.run(domain.ActionCreateInvoice, domain.RoleProvider, nil)
	require.True(t, result.Success)
	assert.Len(t, f.invoices.queued, 1)
	assert.Equal(t, []string{"invoices.draft.requested"}, f.bus.names())

	f.invoices.err = apperr.Conflict("invoice draft already queued")
	result = f.run(domain.ActionCreateInvoice, domain.RoleProvider, nil)
	assert.Equal(t, domain.ActionResult{Success: false, Message: "Invoice draft already requested"}, result)
}
