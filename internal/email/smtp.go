package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const dueDateLayout = "Jan 2, 2006"

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendBookingMessageEmail(ctx context.Context, m BookingMessage) error {
	content, err := renderBookingMessage(m)
	if err != nil {
		return err
	}
	return s.send(ctx, m.ToEmail, fmt.Sprintf(subjectBookingMessageFmt, m.ServiceTitle, m.Subject), content)
}

func (s *SMTPSender) SendBookingStatusEmail(ctx context.Context, m BookingStatus) error {
	content, err := renderBookingStatus(m)
	if err != nil {
		return err
	}
	return s.send(ctx, m.ToEmail, fmt.Sprintf(subjectBookingStatusFmt, m.ServiceTitle, humanizeStatus(m.Status)), content)
}

func (s *SMTPSender) SendInvoiceDraftEmail(ctx context.Context, m InvoiceDraft) error {
	content, err := renderInvoiceDraft(m)
	if err != nil {
		return err
	}
	return s.send(ctx, m.ToEmail, fmt.Sprintf(subjectInvoiceDraftFmt, m.ServiceTitle), content)
}

func (s *SMTPSender) SendMilestoneOverdueEmail(ctx context.Context, m MilestoneOverdue) error {
	content, err := renderMilestoneOverdue(m)
	if err != nil {
		return err
	}
	return s.send(ctx, m.ToEmail, fmt.Sprintf(subjectMilestoneOverdueFmt, m.MilestoneTitle), content)
}

func renderBookingMessage(m BookingMessage) (string, error) {
	return renderEmailTemplate("booking_message.html", bookingMessageEmailData{
		baseEmailData: baseEmailData{
			Title:      "New message",
			Heading:    "You have a new message",
			Subheading: m.ServiceTitle,
			CTALabel:   "Open booking",
			CTAURL:     m.BookingURL,
		},
		RecipientName: greetingName(m.RecipientName),
		SenderName:    m.SenderName,
		Subject:       m.Subject,
		Content:       m.Content,
	})
}

func renderBookingStatus(m BookingStatus) (string, error) {
	return renderEmailTemplate("booking_status.html", bookingStatusEmailData{
		baseEmailData: baseEmailData{
			Title:    "Booking update",
			Heading:  "Your booking was updated",
			CTALabel: "View booking",
			CTAURL:   m.BookingURL,
		},
		RecipientName: greetingName(m.RecipientName),
		ServiceTitle:  m.ServiceTitle,
		Status:        humanizeStatus(m.Status),
	})
}

func renderInvoiceDraft(m InvoiceDraft) (string, error) {
	return renderEmailTemplate("invoice_draft.html", invoiceDraftEmailData{
		baseEmailData: baseEmailData{
			Title:    "Invoice draft",
			Heading:  "Your invoice draft is ready",
			CTALabel: "Review invoice",
			CTAURL:   m.BookingURL,
		},
		RecipientName:   greetingName(m.RecipientName),
		ServiceTitle:    m.ServiceTitle,
		AmountFormatted: formatAmount(m.AmountCents, m.Currency),
	})
}

func renderMilestoneOverdue(m MilestoneOverdue) (string, error) {
	return renderEmailTemplate("milestone_overdue.html", milestoneOverdueEmailData{
		baseEmailData: baseEmailData{
			Title:    "Milestone overdue",
			Heading:  "A milestone is overdue",
			CTALabel: "Open project",
			CTAURL:   m.BookingURL,
		},
		RecipientName:  greetingName(m.RecipientName),
		ServiceTitle:   m.ServiceTitle,
		MilestoneTitle: m.MilestoneTitle,
		DueDate:        m.DueDate.Format(dueDateLayout),
	})
}
