package transport

import (
	"time"

	"business_services_hub/internal/invoices/repository"

	"github.com/google/uuid"
)

// InvoiceResponse is the public form of an invoice.
type InvoiceResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"bookingId"`
	ClientID    uuid.UUID `json:"clientId"`
	ProviderID  uuid.UUID `json:"providerId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromInvoice(inv repository.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		BookingID:   inv.BookingID,
		ClientID:    inv.ClientID,
		ProviderID:  inv.ProviderID,
		AmountCents: inv.AmountCents,
		Currency:    inv.Currency,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt,
	}
}
