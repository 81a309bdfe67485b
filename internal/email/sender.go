package email

import (
	"context"
	"time"

	"business_services_hub/platform/config"
)

// BookingMessage is a message one booking participant sent the other.
type BookingMessage struct {
	ToEmail       string
	RecipientName string
	SenderName    string
	ServiceTitle  string
	Subject       string
	Content       string
	BookingURL    string
}

// BookingStatus tells a participant the booking moved to a new status.
type BookingStatus struct {
	ToEmail       string
	RecipientName string
	ServiceTitle  string
	Status        string
	BookingURL    string
}

// InvoiceDraft announces the draft invoice of a booking.
type InvoiceDraft struct {
	ToEmail       string
	RecipientName string
	ServiceTitle  string
	AmountCents   int64
	Currency      string
	BookingURL    string
}

// MilestoneOverdue warns that a milestone passed its due date.
type MilestoneOverdue struct {
	ToEmail        string
	RecipientName  string
	ServiceTitle   string
	MilestoneTitle string
	DueDate        time.Time
	BookingURL     string
}

type Sender interface {
	SendBookingMessageEmail(ctx context.Context, msg BookingMessage) error
	SendBookingStatusEmail(ctx context.Context, msg BookingStatus) error
	SendInvoiceDraftEmail(ctx context.Context, msg InvoiceDraft) error
	SendMilestoneOverdueEmail(ctx context.Context, msg MilestoneOverdue) error
}

type NoopSender struct{}

func (NoopSender) SendBookingMessageEmail(context.Context, BookingMessage) error     { return nil }
func (NoopSender) SendBookingStatusEmail(context.Context, BookingStatus) error       { return nil }
func (NoopSender) SendInvoiceDraftEmail(context.Context, InvoiceDraft) error         { return nil }
func (NoopSender) SendMilestoneOverdueEmail(context.Context, MilestoneOverdue) error { return nil }

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
