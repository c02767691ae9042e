package digest

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/wneessen/go-mail"

	"github.com/hermes-sec/hermes-cli/internal/config"
)

// Mailer delivers the rendered briefing over SMTP.
type Mailer struct {
	cfg config.MailConfig
}

// NewMailer creates a Mailer from mail configuration.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send emails the HTML briefing to the configured recipients. Delivery
// failure propagates; the caller decides whether the run fails.
func (m *Mailer) Send(ctx context.Context, subject string, htmlBody []byte) error {
	if m.cfg.Host == "" {
		return eris.New("digest: mail.host is not configured")
	}
	if m.cfg.From == "" || len(m.cfg.To) == 0 {
		return eris.New("digest: mail.from and mail.to are required")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return eris.Wrap(err, "digest: set sender")
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return eris.Wrap(err, "digest: set recipients")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, string(htmlBody))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return eris.Wrap(err, "digest: create smtp client")
	}
	return eris.Wrap(client.DialAndSendWithContext(ctx, msg), "digest: send briefing")
}
