package transport

import (
	"time"

	"github.com/google/uuid"
)

// ExecuteActionRequest asks for one contextual action on a booking.
type ExecuteActionRequest struct {
	Action string         `json:"action" validate:"required,booking_action"`
	Params map[string]any `json:"params"`
}

// ActionResultResponse reports the outcome of an action.
type ActionResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApproveBookingRequest is the body the approval endpoint accepts.
type ApproveBookingRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Action    string `json:"action" validate:"required,eq=approve"`
}

// ApproveBookingResponse confirms an approval.
type ApproveBookingResponse struct {
	BookingID uuid.UUID `json:"bookingId"`
	Status    string    `json:"status"`
}

// TaskResponse is a task of the current milestone.
type TaskResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Status             string     `json:"status"`
	ProgressPercentage int        `json:"progressPercentage"`
	AssigneeID         *uuid.UUID `json:"assigneeId,omitempty"`
	Priority           string     `json:"priority,omitempty"`
}

// MilestoneResponse is the current milestone of a booking.
type MilestoneResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Title              string         `json:"title"`
	Status             string         `json:"status"`
	ProgressPercentage int            `json:"progressPercentage"`
	OrderIndex         int            `json:"orderIndex"`
	DueDate            *time.Time     `json:"dueDate,omitempty"`
	RiskLevel          string         `json:"riskLevel"`
	ApprovedAt         *time.Time     `json:"approvedAt,omitempty"`
	Tasks              []TaskResponse `json:"tasks"`
}

// ContextualActionResponse is one action offered to the caller.
type ContextualActionResponse struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Action      string         `json:"action"`
	Params      map[string]any `json:"params,omitempty"`
	Roles       []string       `json:"roles"`
	Urgent      bool           `json:"urgent"`
}

// RiskResponse is one detected risk.
type RiskResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// SmartStatusResponse is the derived status of a booking for the caller.
type SmartStatusResponse struct {
	BookingID           uuid.UUID                  `json:"bookingId"`
	Role                string                     `json:"role"`
	OverallStatus       string                     `json:"overallStatus"`
	StatusDescription   string                     `json:"statusDescription"`
	CurrentPhase        *string                    `json:"currentPhase"`
	CurrentMilestone    *MilestoneResponse         `json:"currentMilestone"`
	ProgressPercentage  int                        `json:"progressPercentage"`
	NextAction          *string                    `json:"nextAction"`
	NextActionBy        *string                    `json:"nextActionBy"`
	EstimatedCompletion *time.Time                 `json:"estimatedCompletion"`
	MilestonesCompleted int                        `json:"milestonesCompleted"`
	MilestonesTotal     int                        `json:"milestonesTotal"`
	TasksCompleted      int                        `json:"tasksCompleted"`
	TasksTotal          int                        `json:"tasksTotal"`
	ContextualActions   []ContextualActionResponse `json:"contextualActions"`
	Risks               []RiskResponse             `json:"risks"`
}

// ContextualActionsResponse lists the actions offered to the caller.
type ContextualActionsResponse struct {
	BookingID uuid.UUID                  `json:"bookingId"`
	Role      string                     `json:"role"`
	Actions   []ContextualActionResponse `json:"actions"`
}
