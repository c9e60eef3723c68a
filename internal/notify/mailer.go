package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPMailer sends plain-text mail through a relay. The storefront's HTML
// templates live with the frontend-facing mail service; the core only
// emits short transactional notices.
type SMTPMailer struct {
	Addr string
	From string
	Auth smtp.Auth
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
