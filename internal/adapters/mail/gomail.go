package mail

// Package mail implements the ports.Mailer contract over SMTP via gomail.

import (
	"context"
	"fmt"

	"github.com/campuslife/campushub/internal/ports"
	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig groups connection settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer sends mail through an SMTP relay. Each Send dials a fresh
// connection; campus mail volume does not justify a persistent one.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from config.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// Send delivers one message. The context is honored only up front; gomail
// has no per-dial context support, so callers run Send off the request path.
func (m *SMTPMailer) Send(ctx context.Context, msg ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
