package transport

import "business_services_hub/internal/bookings/domain"

// FromSmartStatus maps a derived status to its response body.
func FromSmartStatus(s domain.SmartBookingStatus, role domain.Role) SmartStatusResponse {
	resp := SmartStatusResponse{
		BookingID:           s.BookingID,
		Role:                string(role),
		OverallStatus:       string(s.OverallStatus),
		StatusDescription:   s.StatusDescription,
		CurrentPhase:        s.CurrentPhase,
		ProgressPercentage:  s.ProgressPercentage,
		NextAction:          s.NextAction,
		EstimatedCompletion: s.EstimatedCompletion,
		MilestonesCompleted: s.MilestonesCompleted,
		MilestonesTotal:     s.MilestonesTotal,
		TasksCompleted:      s.TasksCompleted,
		TasksTotal:          s.TasksTotal,
		ContextualActions:   FromActions(s.ContextualActions),
		Risks:               make([]RiskResponse, len(s.Risks)),
	}
	if s.NextActionBy != nil {
		by := string(*s.NextActionBy)
		resp.NextActionBy = &by
	}
	if s.CurrentMilestone != nil {
		m := fromMilestone(*s.CurrentMilestone)
		resp.CurrentMilestone = &m
	}
	for i, r := range s.Risks {
		resp.Risks[i] = RiskResponse{
			ID:          r.ID,
			Type:        string(r.Type),
			Severity:    string(r.Severity),
			Description: r.Description,
			Impact:      r.Impact,
			Mitigation:  r.Mitigation,
		}
	}
	return resp
}

// FromActions maps contextual actions; the result is never nil.
func FromActions(actions []domain.ContextualAction) []ContextualActionResponse {
	out := make([]ContextualActionResponse, len(actions))
	for i, a := range actions {
		roles := make([]string, len(a.Roles))
		for j, r := range a.Roles {
			roles[j] = string(r)
		}
		out[i] = ContextualActionResponse{
			ID:          a.ID,
			Label:       a.Label,
			Description: a.Description,
			Type:        string(a.Type),
			Action:      string(a.Action),
			Params:      a.Params,
			Roles:       roles,
			Urgent:      a.Urgent,
		}
	}
	return out
}

// FromActionResult maps an action outcome.
func FromActionResult(r domain.ActionResult) ActionResultResponse {
	return ActionResultResponse{Success: r.Success, Message: r.Message}
}

func fromMilestone(m domain.Milestone) MilestoneResponse {
	tasks := make([]TaskResponse, len(m.Tasks))
	for i, t := range m.Tasks {
		tasks[i] = TaskResponse{
			ID:                 t.ID,
			Title:              t.Title,
			Status:             t.Status,
			ProgressPercentage: t.ProgressPercentage,
			AssigneeID:         t.AssigneeID,
			Priority:           t.Priority,
		}
	}
	return MilestoneResponse{
		ID:                 m.ID,
		Title:              m.Title,
		Status:             m.Status,
		ProgressPercentage: m.ProgressPercentage,
		OrderIndex:         m.OrderIndex,
		DueDate:            m.DueDate,
		RiskLevel:          m.RiskLevel,
		ApprovedAt:         m.ApprovedAt,
		Tasks:              tasks,
	}
}
