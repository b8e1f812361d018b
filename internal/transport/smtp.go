// internal/transport/smtp.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"vitacoach/adherence-app/internal/config"
)

// smtpEmailSender implements EmailSender over plain SMTP with AUTH PLAIN.
type smtpEmailSender struct {
	host     string
	port     int
	from     string
	password string
}

// NewSMTPEmailSender creates the SMTP email transport. Missing credentials are
// not an error here: every send will fail and be marked FAILED by the delivery
// service, which is the intended fail-closed behavior for a misconfigured
// environment.
func NewSMTPEmailSender(cfg config.SMTPConfig) EmailSender {
	return &smtpEmailSender{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

func (s *smtpEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.host == "" || s.from == "" {
		return errors.New("smtp transport is not configured")
	}
	if to == "" {
		return errors.New("recipient address is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.from, to, subject, body))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
