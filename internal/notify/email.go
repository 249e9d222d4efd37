// Package notify sends applicant-facing email over SMTP. Delivery is best
// effort: the portal never fails a request because an email bounced.
package notify

import (
	"fmt"
	"net/smtp"
	"os"
)

// Mailer sends plain-text mail through an authenticated SMTP relay.
// A nil Mailer silently drops every message, so callers can hold one
// unconditionally and let configuration decide whether mail goes out.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
}

// NewMailerFromEnv builds a Mailer from SMTP_HOST, SMTP_PORT, SMTP_FROM and
// SMTP_PASSWORD. Returns nil when SMTP_HOST is unset.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &Mailer{
		host:     host,
		port:     port,
		from:     os.Getenv("SMTP_FROM"),
		password: os.Getenv("SMTP_PASSWORD"),
	}
}

// Send delivers a single plain-text message to one recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s", m.from, to, subject, body)
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(message))
}

// SendApplicationReceived confirms to an applicant that their submission
// was recorded.
func (m *Mailer) SendApplicationReceived(to, name string) error {
	subject := "TCG Application Received"
	body := fmt.Sprintf("Hello %s,\n\nWe received your Triton Consulting Group application. You will hear from us about case night scheduling soon.\n\nTCG Recruitment Team\n", name)
	return m.Send(to, subject, body)
}

// SendCaseNightAssignment tells an applicant which case night slot and group
// they landed in.
func (m *Mailer) SendCaseNightAssignment(to, name, slotLabel string, groupNumber int) error {
	subject := "Your TCG Case Night Assignment"
	body := fmt.Sprintf("Hello %s,\n\nYou have been assigned to %s, group %d. Please arrive ten minutes early.\n\nTCG Recruitment Team\n", name, slotLabel, groupNumber)
	return m.Send(to, subject, body)
}
