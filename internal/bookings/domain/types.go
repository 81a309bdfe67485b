// Package domain provides core business rules for the bookings bounded context:
// status classification, progress, next actions, risks and the action catalog.
// Everything here is a pure function of a Snapshot.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the caller's relationship to a booking.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts only the three known roles.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleClient, RoleProvider, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// Booking lifecycle statuses as stored.
const (
	BookingPending    = "pending"
	BookingApproved   = "approved"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
	BookingOnHold     = "on_hold"
)

// Milestone and task statuses as stored.
const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
	MilestoneCancelled  = "cancelled"
	MilestoneOnHold     = "on_hold"
)

// Risk levels carried by milestones.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// OverallStatus is the coarse derived lifecycle status.
type OverallStatus string

const (
	StatusDelivered     OverallStatus = "delivered"
	StatusInProduction  OverallStatus = "in_production"
	StatusReadyToLaunch OverallStatus = "ready_to_launch"
	StatusApproved      OverallStatus = "approved"
	StatusPendingReview OverallStatus = "pending_review"
	StatusCancelled     OverallStatus = "cancelled"
	StatusOnHold        OverallStatus = "on_hold"
)

// Booking is the top-level contract between a client and a provider.
type Booking struct {
	ID              uuid.UUID
	Status          string
	ApprovalStatus  string
	ApprovedAt      *time.Time
	ScheduledDate   *time.Time
	AmountCents     int64
	Currency        string
	ClientID        uuid.UUID
	ProviderID      uuid.UUID
	ServiceID       uuid.UUID
	ServiceTitle    string
	ServiceCategory string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsApproved reports whether the booking status or one of its approval flags
// marks it approved.
func (b Booking) IsApproved() bool {
	return b.Status == BookingApproved || b.ApprovalStatus == BookingApproved || b.ApprovedAt != nil
}

// Phase is an optional grouping of milestones.
type Phase struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	Name       string
	OrderIndex int
	Status     string
}

// Milestone is an ordered unit of work within a booking.
type Milestone struct {
	ID                 uuid.UUID
	BookingID          uuid.UUID
	PhaseID            *uuid.UUID
	Title              string
	Status             string
	ProgressPercentage int
	OrderIndex         int
	DueDate            *time.Time
	RiskLevel          string
	ApprovedAt         *time.Time
	Tasks              []Task
}

// IsCompleted reports whether the milestone is completed.
func (m Milestone) IsCompleted() bool {
	return m.Status == MilestoneCompleted
}

// IncompleteTasks counts tasks that are not completed.
func (m Milestone) IncompleteTasks() int {
	n := 0
	for _, t := range m.Tasks {
		if t.Status != MilestoneCompleted {
			n++
		}
	}
	return n
}

// Task is the smallest tracked unit of work.
type Task struct {
	ID                 uuid.UUID
	MilestoneID        uuid.UUID
	Title              string
	Status             string
	ProgressPercentage int
	AssigneeID         *uuid.UUID
	Priority           string
}

// Snapshot is the point-in-time aggregate every derivation reads.
// Milestones carry their tasks.
type Snapshot struct {
	Booking    Booking
	Phases     []Phase
	Milestones []Milestone
}

// ActionType is the visual weight of a contextual action.
type ActionType string

const (
	ActionPrimary   ActionType = "primary"
	ActionSecondary ActionType = "secondary"
	ActionDanger    ActionType = "danger"
	ActionSuccess   ActionType = "success"
)

// ActionKey identifies what the executor does for an action.
type ActionKey string

const (
	ActionApprove           ActionKey = "approve"
	ActionDecline           ActionKey = "decline"
	ActionStartMilestone    ActionKey = "start_milestone"
	ActionCompleteMilestone ActionKey = "complete_milestone"
	ActionCompleteProject   ActionKey = "complete_project"
	ActionAddFeedback       ActionKey = "add_feedback"
	ActionApproveMilestone  ActionKey = "approve_milestone"
	ActionCreateMilestones  ActionKey = "create_milestones"
	ActionCreateInvoice     ActionKey = "create_invoice"
	ActionNavigate          ActionKey = "navigate"
)

// ContextualAction is a role-specific operation offered to the caller.
type ContextualAction struct {
	ID          string
	Label       string
	Description string
	Type        ActionType
	Action      ActionKey
	Params      map[string]any
	Roles       []Role
	Urgent      bool
}

// RiskType classifies a detected risk.
type RiskType string

const (
	RiskDeadline   RiskType = "deadline"
	RiskDependency RiskType = "dependency"
	RiskResource   RiskType = "resource"
	RiskQuality    RiskType = "quality"
)

// Severity of a detected risk.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Risk is a detected condition surfaced for visibility.
type Risk struct {
	ID          string
	Type        RiskType
	Severity    Severity
	Description string
	Impact      string
	Mitigation  string
}

// NextAction is the single "what happens next" statement.
type NextAction struct {
	Action string
	By     Role
}

// SmartBookingStatus is derived per request and never persisted.
type SmartBookingStatus struct {
	BookingID           uuid.UUID
	OverallStatus       OverallStatus
	CurrentPhase        *string
	CurrentMilestone    *Milestone
	ProgressPercentage  int
	NextAction          *string
	NextActionBy        *Role
	EstimatedCompletion *time.Time
	MilestonesCompleted int
	MilestonesTotal     int
	TasksCompleted      int
	TasksTotal          int
	StatusDescription   string
	ContextualActions   []ContextualAction
	Risks               []Risk
}

// ActionResult is what executing an action reports back.
type ActionResult struct {
	Success bool
	Message string
}
