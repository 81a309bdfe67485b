package handler

import (
	"net/http"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/service"
	"business_services_hub/internal/bookings/transport"
	"business_services_hub/platform/httpkit"
	"business_services_hub/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid booking ID"
	msgInvalidRole      = "invalid role"
	msgApproverRequired = "approval requires a service or admin token"

	roleAdmin   = "admin"
	roleService = "service"
)

// Handler handles HTTP requests for booking status and actions.
type Handler struct {
	status    *service.StatusService
	executor  *service.ActionExecutor
	approvals *service.ApprovalService
	val       *validator.Validator
}

// New creates a new bookings handler.
func New(status *service.StatusService, executor *service.ActionExecutor, approvals *service.ApprovalService, val *validator.Validator) *Handler {
	return &Handler{status: status, executor: executor, approvals: approvals, val: val}
}

// GetSmartStatus returns the derived status of a booking for the caller.
// Admins may pass ?role= to see the booking as another participant would.
// GET /api/v1/bookings/:id/smart-status
func (h *Handler) GetSmartStatus(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if asRole := c.Query("role"); asRole != "" && identity.HasRole(roleAdmin) {
		role, valid := domain.ParseRole(asRole)
		if !valid {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRole, nil)
			return
		}
		status, err := h.status.GetSmartStatus(c.Request.Context(), bookingID, role)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, transport.FromSmartStatus(status, role))
		return
	}

	status, role, err := h.status.GetSmartStatusForCaller(c.Request.Context(), bookingID, callerOf(identity))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromSmartStatus(status, role))
}

// ListActions returns only the contextual actions offered to the caller.
// GET /api/v1/bookings/:id/actions
func (h *Handler) ListActions(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	status, role, err := h.status.GetSmartStatusForCaller(c.Request.Context(), bookingID, callerOf(identity))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ContextualActionsResponse{
		BookingID: bookingID,
		Role:      string(role),
		Actions:   transport.FromActions(status.ContextualActions),
	})
}

// ExecuteAction runs a contextual action as the caller's role on the booking.
// Action failures are reported in the body with 200.
// POST /api/v1/bookings/:id/actions
func (h *Handler) ExecuteAction(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	var req transport.ExecuteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	role, err := h.status.ResolveRole(c.Request.Context(), bookingID, callerOf(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	result := h.executor.ExecuteAction(c.Request.Context(), service.ActionRequest{
		BookingID: bookingID,
		Action:    domain.ActionKey(req.Action),
		Params:    req.Params,
		Role:      role,
		ActorID:   identity.UserID(),
	})
	httpkit.OK(c, transport.FromActionResult(result))
}

// ApproveBooking is the approval endpoint called with a service token.
// POST /api/v1/internal/bookings/approve
func (h *Handler) ApproveBooking(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if !identity.HasRole(roleService) && !identity.HasRole(roleAdmin) {
		httpkit.Error(c, http.StatusForbidden, msgApproverRequired, nil)
		return
	}

	var req transport.ApproveBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.approvals.Approve(c.Request.Context(), bookingID, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ApproveBookingResponse{BookingID: bookingID, Status: domain.BookingApproved})
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func callerOf(identity httpkit.Identity) service.Caller {
	return service.Caller{UserID: identity.UserID(), IsAdmin: identity.HasRole(roleAdmin)}
}
