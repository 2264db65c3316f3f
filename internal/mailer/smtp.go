// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/stagepass/backend/config"
)

// Mailer sends email through a configured SMTP relay.
type Mailer struct {
	dialer *mail.Dialer
	from   string
}

// New creates a mailer from SMTP configuration.
func New(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		dialer: mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
	}
}

// Send delivers a single message. BodyText is attached as the plain-text
// alternative when present.
func (m *Mailer) Send(to, subject, bodyHTML, bodyText string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if bodyText != "" {
		msg.SetBody("text/plain", bodyText)
		msg.AddAlternative("text/html", bodyHTML)
	} else {
		msg.SetBody("text/html", bodyHTML)
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
