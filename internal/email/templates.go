package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type bookingMessageEmailData struct {
	baseEmailData
	RecipientName string
	SenderName    string
	Subject       string
	Content       string
}

type bookingStatusEmailData struct {
	baseEmailData
	RecipientName string
	ServiceTitle  string
	Status        string
}

type invoiceDraftEmailData struct {
	baseEmailData
	RecipientName   string
	ServiceTitle    string
	AmountFormatted string
}

type milestoneOverdueEmailData struct {
	baseEmailData
	RecipientName  string
	ServiceTitle   string
	MilestoneTitle string
	DueDate        string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatAmount(cents int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, currency, cents/100, cents%100)
}

func humanizeStatus(status string) string {
	return strings.ReplaceAll(strings.TrimSpace(status), "_", " ")
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
