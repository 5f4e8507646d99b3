package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/campuslife/campushub/internal/ports"
)

// NotifierOptions groups dependencies for Notifier.
type NotifierOptions struct {
	Mailer  ports.Mailer // Required: outbound mail transport
	Logger  *slog.Logger // Optional: structured logger
	BaseURL string       // Required: public base URL used in email links
	// SendTimeout bounds a single delivery attempt. Defaults to 15s.
	SendTimeout time.Duration
}

// Notifier sends transactional email off the request path. Deliveries run in
// background goroutines so a slow or down SMTP server never delays the
// mutation that triggered the mail. Failures are logged, not retried; every
// email the system sends can be re-requested by the user.
type Notifier struct {
	mailer      ports.Mailer
	logger      *slog.Logger
	baseURL     string
	sendTimeout time.Duration

	wg sync.WaitGroup
}

// NewNotifier constructs a new Notifier.
func NewNotifier(opts NotifierOptions) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Notifier{
		mailer:      opts.Mailer,
		logger:      logger.With("component", "notifier"),
		baseURL:     opts.BaseURL,
		sendTimeout: timeout,
	}
}

// Wait blocks until all in-flight deliveries complete. Used by graceful
// shutdown and by tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// VerificationEmail sends the email-verification link issued at registration.
func (n *Notifier) VerificationEmail(to, firstName, token string) {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", n.baseURL, token)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to CampusHub! Please confirm your email address by clicking the link below:</p>
<p><a href="%s">Verify my email</a></p>
<p>The link is valid for 24 hours. If you did not create an account, you can ignore this message.</p>`,
		htmlEscape(firstName), link)
	n.dispatch(ports.Mail{
		To:       to,
		Subject:  "Verify your CampusHub email",
		HTMLBody: body,
	})
}

// PasswordResetEmail sends a password reset link.
func (n *Notifier) PasswordResetEmail(to, firstName, token string) {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", n.baseURL, token)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your CampusHub password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset my password</a></p>
<p>The link is valid for 1 hour and can be used once. If you did not request a reset, no action is needed.</p>`,
		htmlEscape(firstName), link)
	n.dispatch(ports.Mail{
		To:       to,
		Subject:  "Reset your CampusHub password",
		HTMLBody: body,
	})
}

// TicketEmail confirms an event registration and carries the ticket code.
func (n *Notifier) TicketEmail(to, firstName, eventTitle, ticketCode string) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You are registered for <strong>%s</strong>.</p>
<p>Your ticket code: <code>%s</code></p>
<p>Show this code at the door. See you there!</p>`,
		htmlEscape(firstName), htmlEscape(eventTitle), htmlEscape(ticketCode))
	n.dispatch(ports.Mail{
		To:       to,
		Subject:  fmt.Sprintf("Your ticket for %s", eventTitle),
		HTMLBody: body,
	})
}

// EventDecisionEmail tells an organizer their event was approved or rejected.
func (n *Notifier) EventDecisionEmail(to, firstName, eventTitle string, approved bool) {
	decision := "approved"
	detail := "It is now visible to students and open for registration."
	if !approved {
		decision = "rejected"
		detail = "You can edit the event and it will be reviewed again."
	}
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your event <strong>%s</strong> has been %s.</p>
<p>%s</p>`,
		htmlEscape(firstName), htmlEscape(eventTitle), decision, detail)
	n.dispatch(ports.Mail{
		To:       to,
		Subject:  fmt.Sprintf("Your event %q was %s", eventTitle, decision),
		HTMLBody: body,
	})
}

// dispatch hands the message to a background goroutine. The goroutine gets a
// fresh context; the triggering HTTP request may be long gone by the time the
// SMTP dial completes.
func (n *Notifier) dispatch(msg ports.Mail) {
	if n.mailer == nil {
		n.logger.Warn("mailer not configured, dropping email", "to", msg.To, "subject", msg.Subject)
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		defer cancel()
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logger.Error("email delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
			return
		}
		n.logger.Debug("email sent", "to", msg.To, "subject", msg.Subject)
	}()
}

func htmlEscape(s string) string { return html.EscapeString(s) }
