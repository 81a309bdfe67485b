package service

import (
	"context"
	"strings"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/events"
	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"

	"github.com/google/uuid"
)

// Result messages reported back to the caller.
const (
	msgUnknownAction          = "Unknown action."
	msgPermissionDenied       = "You do not have permission to perform this action."
	msgBookingUpdateFailed    = "Failed to update booking"
	msgMilestoneUpdateFailed  = "Failed to update milestone"
	msgMilestoneIDRequired    = "Milestone ID is required"
	msgApprovalInProgress     = "Booking approval already in progress"
	msgBookingApproved        = "Booking approved"
	msgBookingDeclined        = "Booking declined"
	msgMilestoneStarted       = "Milestone started"
	msgMilestoneCompleted     = "Milestone completed"
	msgMilestoneApproved      = "Milestone approved"
	msgMilestoneNotAwaiting   = "Milestone is not awaiting approval"
	msgProjectCompleted       = "Project completed"
	msgFeedbackSubmitted      = "Feedback submitted"
	msgCounterPartyUnresolved = "Could not find the other participant of this booking"
	msgMilestonesCreated      = "Milestones created"
	msgMilestonesExist        = "Milestones already exist for this booking"
	msgMilestoneTitlesInvalid = "Milestone titles must be a non-empty list of text"
	msgMilestonesFailed       = "Failed to create milestones"
	msgInvoiceRequested       = "Invoice draft requested"
	msgInvoiceAlreadyQueued   = "Invoice draft already requested"
	msgInvoiceFailed          = "Failed to request invoice draft"
)

const (
	paramMilestoneID = "milestoneId"
	paramFeedback    = "feedback"
	paramSubject     = "subject"
	paramTitles      = "titles"

	defaultFeedbackSubject = "New feedback on your booking"
	defaultFeedbackContent = "The other participant left feedback on this booking."
	completedProgress      = 100
)

// ActionRequest asks the executor to run one action key on a booking.
type ActionRequest struct {
	BookingID uuid.UUID
	Action    domain.ActionKey
	Params    map[string]any
	Role      domain.Role
	ActorID   uuid.UUID
}

// ExecutorDeps are the collaborators of the ActionExecutor.
type ExecutorDeps struct {
	Store     BookingStore
	Approver  BookingApprover
	Guard     ApprovalGuard
	Messenger Messenger
	Invoices  InvoiceScheduler
	Planner   MilestonePlanner
	EventBus  events.Bus
}

type actionFunc func(ctx context.Context, req ActionRequest) domain.ActionResult

// ActionExecutor runs contextual actions. Every path ends in an ActionResult;
// collaborator errors are logged and turned into failure results.
type ActionExecutor struct {
	deps     ExecutorDeps
	log      *logger.Logger
	now      func() time.Time
	handlers map[domain.ActionKey]actionFunc
}

// NewActionExecutor creates a new action executor.
func NewActionExecutor(deps ExecutorDeps, log *logger.Logger) *ActionExecutor {
	e := &ActionExecutor{deps: deps, log: log, now: time.Now}
	e.handlers = map[domain.ActionKey]actionFunc{
		domain.ActionApprove:           e.approve,
		domain.ActionDecline:           e.decline,
		domain.ActionStartMilestone:    e.startMilestone,
		domain.ActionCompleteMilestone: e.completeMilestone,
		domain.ActionCompleteProject:   e.completeProject,
		domain.ActionAddFeedback:       e.addFeedback,
		domain.ActionApproveMilestone:  e.approveMilestone,
		domain.ActionCreateMilestones:  e.createMilestones,
		domain.ActionCreateInvoice:     e.createInvoice,
	}
	return e
}

// ExecuteAction runs req.Action after checking req.Role against the
// permission table. It never returns the resulting booking status.
func (e *ActionExecutor) ExecuteAction(ctx context.Context, req ActionRequest) domain.ActionResult {
	handler, ok := e.handlers[req.Action]
	var result domain.ActionResult
	switch {
	case !ok:
		result = failure(msgUnknownAction)
	case !domain.IsPermitted(req.Action, req.Role):
		result = failure(msgPermissionDenied)
	default:
		result = handler(ctx, req)
	}

	e.log.WithContext(ctx).BookingAction(req.BookingID.String(), string(req.Action), string(req.Role), result.Success, result.Message)
	metrics.IncrementActionExecuted(string(req.Action), result.Success)
	return result
}

func (e *ActionExecutor) approve(ctx context.Context, req ActionRequest) domain.ActionResult {
	token, acquired, err := e.deps.Guard.Acquire(ctx, req.BookingID)
	if err != nil {
		e.log.Error("approval guard unavailable", "bookingId", req.BookingID, "error", err)
		return failure(msgBookingUpdateFailed)
	}
	if !acquired {
		return failure(msgApprovalInProgress)
	}
	defer func() {
		if err := e.deps.Guard.Release(context.WithoutCancel(ctx), req.BookingID, token); err != nil {
			e.log.Warn("failed to release approval guard", "bookingId", req.BookingID, "error", err)
		}
	}()

	if err := e.deps.Approver.Approve(ctx, req.BookingID, req.ActorID); err != nil {
		e.log.Error("booking approval failed", "bookingId", req.BookingID, "error", err)
		return failure(msgBookingUpdateFailed)
	}
	return success(msgBookingApproved)
}

func (e *ActionExecutor) decline(ctx context.Context, req ActionRequest) domain.ActionResult {
	return e.setBookingStatus(ctx, req, domain.BookingCancelled, msgBookingDeclined)
}

func (e *ActionExecutor) completeProject(ctx context.Context, req ActionRequest) domain.ActionResult {
	return e.setBookingStatus(ctx, req, domain.BookingCompleted, msgProjectCompleted)
}

func (e *ActionExecutor) setBookingStatus(ctx context.Context, req ActionRequest, status, message string) domain.ActionResult {
	if err := e.deps.Store.UpdateBookingStatus(ctx, req.BookingID, status); err != nil {
		e.log.Error("booking status update failed", "bookingId", req.BookingID, "status", status, "error", err)
		return failure(msgBookingUpdateFailed)
	}

	e.deps.EventBus.Publish(ctx, events.BookingStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		BookingID: req.BookingID,
		ActorID:   req.ActorID,
		Status:    status,
	})
	return success(message)
}

func (e *ActionExecutor) startMilestone(ctx context.Context, req ActionRequest) domain.ActionResult {
	return e.setMilestoneStatus(ctx, req, domain.MilestoneInProgress, nil, msgMilestoneStarted)
}

// completeMilestone forces progress to 100 whatever the state of its tasks.
func (e *ActionExecutor) completeMilestone(ctx context.Context, req ActionRequest) domain.ActionResult {
	progress := completedProgress
	return e.setMilestoneStatus(ctx, req, domain.MilestoneCompleted, &progress, msgMilestoneCompleted)
}

func (e *ActionExecutor) setMilestoneStatus(ctx context.Context, req ActionRequest, status string, progress *int, message string) domain.ActionResult {
	milestoneID, ok := milestoneIDParam(req.Params)
	if !ok {
		return failure(msgMilestoneIDRequired)
	}

	err := e.deps.Store.UpdateMilestone(ctx, repository.MilestoneUpdate{
		BookingID:          req.BookingID,
		MilestoneID:        milestoneID,
		Status:             status,
		ProgressPercentage: progress,
	})
	if err != nil {
		e.log.Error("milestone update failed", "bookingId", req.BookingID, "milestoneId", milestoneID, "error", err)
		return failure(msgMilestoneUpdateFailed)
	}

	e.publishMilestoneChange(ctx, req, milestoneID, status)
	return success(message)
}

func (e *ActionExecutor) approveMilestone(ctx context.Context, req ActionRequest) domain.ActionResult {
	milestoneID, ok := milestoneIDParam(req.Params)
	if !ok {
		return failure(msgMilestoneIDRequired)
	}

	if err := e.deps.Store.ApproveMilestone(ctx, req.BookingID, milestoneID); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return failure(msgMilestoneNotAwaiting)
		}
		e.log.Error("milestone approval failed", "bookingId", req.BookingID, "milestoneId", milestoneID, "error", err)
		return failure(msgMilestoneUpdateFailed)
	}

	e.publishMilestoneChange(ctx, req, milestoneID, "approved")
	return success(msgMilestoneApproved)
}

func (e *ActionExecutor) publishMilestoneChange(ctx context.Context, req ActionRequest, milestoneID uuid.UUID, status string) {
	e.deps.EventBus.Publish(ctx, events.MilestoneStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		BookingID:   req.BookingID,
		MilestoneID: milestoneID,
		ActorID:     req.ActorID,
		Status:      status,
	})
}

// addFeedback messages the counter-party. Only failing to find who to write
// to fails the action; a failed delivery is logged and still reported as
// submitted.
func (e *ActionExecutor) addFeedback(ctx context.Context, req ActionRequest) domain.ActionResult {
	participants, err := e.deps.Store.GetParticipants(ctx, req.BookingID)
	if err != nil {
		e.log.Error("participant lookup failed", "bookingId", req.BookingID, "error", err)
		return failure(msgCounterPartyUnresolved)
	}

	receiverID, ok := domain.CounterParty(domain.Booking{
		ClientID:   participants.ClientID,
		ProviderID: participants.ProviderID,
	}, req.Role)
	if !ok {
		return failure(msgCounterPartyUnresolved)
	}

	msg := Message{
		BookingID:  req.BookingID,
		SenderID:   req.ActorID,
		ReceiverID: receiverID,
		Subject:    stringParam(req.Params, paramSubject, defaultFeedbackSubject),
		Content:    stringParam(req.Params, paramFeedback, defaultFeedbackContent),
	}
	if err := e.deps.Messenger.SendMessage(ctx, msg); err != nil {
		e.log.Warn("feedback delivery failed", "bookingId", req.BookingID, "receiverId", receiverID, "error", err)
	}
	return success(msgFeedbackSubmitted)
}

// createMilestones uses the titles given in params, or the plan of the
// booking's service category when none are given.
func (e *ActionExecutor) createMilestones(ctx context.Context, req ActionRequest) domain.ActionResult {
	plan, ok := explicitPlan(req.Params)
	if !ok {
		return failure(msgMilestoneTitlesInvalid)
	}

	if plan == nil {
		participants, err := e.deps.Store.GetParticipants(ctx, req.BookingID)
		if err != nil {
			e.log.Error("participant lookup failed", "bookingId", req.BookingID, "error", err)
			return failure(msgMilestonesFailed)
		}
		for _, m := range e.deps.Planner.Plan(participants.ServiceCategory, e.now()) {
			due := m.DueDate
			plan = append(plan, repository.NewMilestone{
				Title:      m.Title,
				OrderIndex: m.OrderIndex,
				DueDate:    &due,
				RiskLevel:  m.RiskLevel,
			})
		}
	}

	count, err := e.deps.Store.CreateMilestones(ctx, req.BookingID, plan)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return failure(msgMilestonesExist)
		}
		e.log.Error("milestone creation failed", "bookingId", req.BookingID, "error", err)
		return failure(msgMilestonesFailed)
	}

	e.deps.EventBus.Publish(ctx, events.MilestonesCreated{
		BaseEvent: events.NewBaseEvent(),
		BookingID: req.BookingID,
		ActorID:   req.ActorID,
		Count:     count,
	})
	return success(msgMilestonesCreated)
}

func (e *ActionExecutor) createInvoice(ctx context.Context, req ActionRequest) domain.ActionResult {
	if err := e.deps.Invoices.EnqueueInvoiceDraft(ctx, req.BookingID, req.ActorID); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return failure(msgInvoiceAlreadyQueued)
		}
		e.log.Error("invoice draft enqueue failed", "bookingId", req.BookingID, "error", err)
		return failure(msgInvoiceFailed)
	}

	e.deps.EventBus.Publish(ctx, events.InvoiceDraftRequested{
		BaseEvent:   events.NewBaseEvent(),
		BookingID:   req.BookingID,
		RequestedBy: req.ActorID,
	})
	return success(msgInvoiceRequested)
}

func milestoneIDParam(params map[string]any) (uuid.UUID, bool) {
	raw, ok := params[paramMilestoneID].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// explicitPlan reads the titles param. A nil plan with ok means no titles
// were given.
func explicitPlan(params map[string]any) ([]repository.NewMilestone, bool) {
	raw, present := params[paramTitles]
	if !present {
		return nil, true
	}

	var titles []string
	switch v := raw.(type) {
	case []string:
		titles = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			titles = append(titles, s)
		}
	default:
		return nil, false
	}

	plan := make([]repository.NewMilestone, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			return nil, false
		}
		plan = append(plan, repository.NewMilestone{Title: title, OrderIndex: len(plan)})
	}
	if len(plan) == 0 {
		return nil, false
	}
	return plan, true
}

func success(message string) domain.ActionResult {
	return domain.ActionResult{Success: true, Message: message}
}

func failure(message string) domain.ActionResult {
	return domain.ActionResult{Success: false, Message: message}
}
