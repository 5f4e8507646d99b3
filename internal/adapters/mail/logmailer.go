package mail

import (
	"context"
	"log/slog"

	"github.com/campuslife/campushub/internal/ports"
)

// LogMailer records outbound mail in the application log instead of sending
// it. It backs local development, where no SMTP relay is available but the
// verification and reset links still need to be reachable.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message instead of delivering it.
func (m *LogMailer) Send(ctx context.Context, msg ports.Mail) error {
	m.logger.InfoContext(ctx, "outbound email (not sent; SMTP disabled)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.HTMLBody,
	)
	return nil
}

var _ ports.Mailer = (*LogMailer)(nil)
