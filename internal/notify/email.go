package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailTransport sends one alert as an email.
type EmailTransport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPEmailTransport sends plain-text mail over SMTP with optional AUTH.
type SMTPEmailTransport struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func (t *SMTPEmailTransport) Send(_ context.Context, to, subject, body string) error {
	if t.Host == "" || t.From == "" {
		return fmt.Errorf("smtp: %w", ErrNotConfigured)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", t.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	var auth smtp.Auth
	if t.Username != "" {
		auth = smtp.PlainAuth("", t.Username, t.Password, t.Host)
	}

	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)
	if err := smtp.SendMail(addr, auth, t.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending email via %s: %w", addr, err)
	}
	return nil
}
