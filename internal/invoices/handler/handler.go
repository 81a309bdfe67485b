package handler

import (
	"net/http"

	"business_services_hub/internal/invoices/service"
	"business_services_hub/internal/invoices/transport"
	"business_services_hub/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidBookingID = "invalid booking ID"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetForBooking returns the booking's invoice draft.
// GET /api/v1/bookings/:id/invoice
func (h *Handler) GetForBooking(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	inv, err := h.svc.GetForBooking(c.Request.Context(), bookingID, identity.UserID(), identity.HasRole("admin"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromInvoice(inv))
}
