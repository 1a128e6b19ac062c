// Package mail sends notification emails over SMTP. Delivery is
// best-effort: call sites fire and forget, logging failures instead of
// propagating them into marketplace transactions.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/farmerchain/farmerchain/internal/config"
)

// Mailer sends plain-text notification emails via STARTTLS SMTP.
// A zero-host Mailer is a no-op, so the server runs fine without mail
// configuration.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// New creates a Mailer from config. Returns a disabled Mailer when no
// SMTP host is configured.
func New(cfg config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// Enabled reports whether the mailer has an SMTP host to talk to.
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// Send delivers one message synchronously.
func (m *Mailer) Send(subject, to, body string) error {
	if !m.Enabled() {
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// SendAsync delivers a message in the background, logging any failure.
// Used on marketplace state transitions where a notification must never
// block or roll back the commit.
func (m *Mailer) SendAsync(subject, to, body string) {
	if !m.Enabled() {
		return
	}
	go func() {
		if err := m.Send(subject, to, body); err != nil {
			slog.Warn("notification mail failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
