package domain

import "slices"

// actionPermissions is the single role table for every action key. The
// catalog copies it into emitted actions and the executor checks it again.
var actionPermissions = map[ActionKey][]Role{
	ActionApprove:           {RoleProvider, RoleAdmin},
	ActionDecline:           {RoleProvider, RoleAdmin},
	ActionStartMilestone:    {RoleProvider, RoleAdmin},
	ActionCompleteMilestone: {RoleProvider, RoleAdmin},
	ActionCompleteProject:   {RoleProvider, RoleClient, RoleAdmin},
	ActionAddFeedback:       {RoleClient, RoleProvider},
	ActionApproveMilestone:  {RoleClient, RoleAdmin},
	ActionCreateMilestones:  {RoleProvider, RoleAdmin},
	ActionCreateInvoice:     {RoleProvider, RoleAdmin},
	ActionNavigate:          {RoleAdmin},
}

// PermittedRoles returns a copy of the roles allowed to invoke key.
func PermittedRoles(key ActionKey) []Role {
	return slices.Clone(actionPermissions[key])
}

// IsPermitted reports whether role may invoke key.
func IsPermitted(key ActionKey, role Role) bool {
	return slices.Contains(actionPermissions[key], role)
}
