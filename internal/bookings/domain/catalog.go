package domain

import "fmt"

// CatalogInput is everything the action catalog looks at.
type CatalogInput struct {
	Booking    Booking
	Milestones []Milestone
	Current    *Milestone
	Progress   int
}

type catalogRule struct {
	audience Role
	when     func(in CatalogInput) bool
	build    func(in CatalogInput) ContextualAction
}

// catalogRules fire additively in this order. A rule only reaches the
// audience it names, and only when that role is permitted on the action key.
var catalogRules = []catalogRule{
	{
		audience: RoleProvider,
		when:     bookingIs(BookingPending),
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "approve_booking",
				Label:       "Approve Booking",
				Description: "Accept this booking and notify the client",
				Type:        ActionPrimary,
				Action:      ActionApprove,
				Urgent:      true,
			}
		},
	},
	{
		audience: RoleProvider,
		when:     bookingIs(BookingPending),
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "decline_booking",
				Label:       "Decline Booking",
				Description: "Decline this booking request",
				Type:        ActionDanger,
				Action:      ActionDecline,
			}
		},
	},
	{
		audience: RoleProvider,
		when: func(in CatalogInput) bool {
			return in.Booking.Status == BookingApproved && len(in.Milestones) == 0
		},
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "create_milestones",
				Label:       "Create Milestones",
				Description: "Break the project into milestones",
				Type:        ActionPrimary,
				Action:      ActionCreateMilestones,
				Urgent:      true,
			}
		},
	},
	{
		audience: RoleProvider,
		when:     currentIs(MilestonePending),
		build: func(in CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "start_milestone",
				Label:       fmt.Sprintf("Start %s", in.Current.Title),
				Description: "Begin work on the next milestone",
				Type:        ActionPrimary,
				Action:      ActionStartMilestone,
				Params:      map[string]any{"milestoneId": in.Current.ID.String()},
			}
		},
	},
	{
		audience: RoleProvider,
		when: func(in CatalogInput) bool {
			return in.Current != nil && in.Current.Status == MilestoneInProgress && in.Current.IncompleteTasks() == 0
		},
		build: func(in CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "complete_milestone",
				Label:       fmt.Sprintf("Complete %s", in.Current.Title),
				Description: "Mark the current milestone as complete",
				Type:        ActionSuccess,
				Action:      ActionCompleteMilestone,
				Params:      map[string]any{"milestoneId": in.Current.ID.String()},
			}
		},
	},
	{
		audience: RoleProvider,
		when:     progressComplete,
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "complete_project",
				Label:       "Complete Project",
				Description: "Mark the whole project as completed",
				Type:        ActionSuccess,
				Action:      ActionCompleteProject,
			}
		},
	},
	{
		audience: RoleProvider,
		when:     bookingIs(BookingApproved),
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "create_invoice",
				Label:       "Create Invoice",
				Description: "Draft an invoice for this booking",
				Type:        ActionSecondary,
				Action:      ActionCreateInvoice,
			}
		},
	},
	{
		audience: RoleClient,
		when: func(in CatalogInput) bool {
			return awaitingApproval(in.Milestones) != nil
		},
		build: func(in CatalogInput) ContextualAction {
			m := awaitingApproval(in.Milestones)
			return ContextualAction{
				ID:          "approve_milestone",
				Label:       fmt.Sprintf("Approve %s", m.Title),
				Description: "Review and approve the completed milestone",
				Type:        ActionPrimary,
				Action:      ActionApproveMilestone,
				Params:      map[string]any{"milestoneId": m.ID.String()},
			}
		},
	},
	{
		audience: RoleClient,
		when:     bookingIs(BookingInProgress),
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "add_feedback",
				Label:       "Add Feedback",
				Description: "Send feedback to the provider",
				Type:        ActionSecondary,
				Action:      ActionAddFeedback,
			}
		},
	},
	{
		audience: RoleClient,
		when:     progressComplete,
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "final_approval",
				Label:       "Final Approval",
				Description: "Approve the delivered project",
				Type:        ActionSuccess,
				Action:      ActionCompleteProject,
				Urgent:      true,
			}
		},
	},
	{
		audience: RoleAdmin,
		when:     func(CatalogInput) bool { return true },
		build: func(in CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "manage_project",
				Label:       "Manage Project",
				Description: "Open the admin view of this booking",
				Type:        ActionPrimary,
				Action:      ActionNavigate,
				Params:      map[string]any{"href": fmt.Sprintf("/admin/bookings/%s", in.Booking.ID)},
			}
		},
	},
	{
		audience: RoleAdmin,
		when:     bookingIs(BookingPending),
		build: func(CatalogInput) ContextualAction {
			return ContextualAction{
				ID:          "force_approve",
				Label:       "Force Approve",
				Description: "Approve this booking on behalf of the provider",
				Type:        ActionSecondary,
				Action:      ActionApprove,
			}
		},
	},
}

// BuildActionCatalog returns the contextual actions for role, in rule order.
// The result is never nil.
func BuildActionCatalog(in CatalogInput, role Role) []ContextualAction {
	actions := make([]ContextualAction, 0, 4)
	for _, rule := range catalogRules {
		if rule.audience != role || !rule.when(in) {
			continue
		}
		action := rule.build(in)
		if !IsPermitted(action.Action, role) {
			continue
		}
		action.Roles = PermittedRoles(action.Action)
		actions = append(actions, action)
	}
	return actions
}

func bookingIs(status string) func(CatalogInput) bool {
	return func(in CatalogInput) bool { return in.Booking.Status == status }
}

func currentIs(status string) func(CatalogInput) bool {
	return func(in CatalogInput) bool { return in.Current != nil && in.Current.Status == status }
}

func progressComplete(in CatalogInput) bool {
	return in.Progress >= 100
}

// awaitingApproval returns the latest completed milestone the client has
// not approved yet.
func awaitingApproval(milestones []Milestone) *Milestone {
	milestones = ordered(milestones)
	for i := len(milestones) - 1; i >= 0; i-- {
		m := milestones[i]
		if m.IsCompleted() && m.ApprovedAt == nil {
			return &m
		}
	}
	return nil
}
