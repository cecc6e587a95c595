package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/email-login-otp/internal/config"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned by Deliver when host, credentials or sender are missing.
var ErrNotConfigured = errors.New("missing smtp config")

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers login codes over SMTP.
type Mailer struct {
	dialer     sender
	from       string
	codeTTL    time.Duration
	configured bool
}

func NewMailer(cfg *config.Config) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.SSL = cfg.SMTPSSL
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return &Mailer{
		dialer:     d,
		from:       cfg.SMTPFrom,
		codeTTL:    cfg.CodeTTL,
		configured: cfg.SMTPHost != "" && cfg.SMTPUsername != "" && cfg.SMTPPassword != "" && cfg.SMTPFrom != "",
	}
}

// Channel names the delivery path reported to clients.
func (m *Mailer) Channel() string { return "smtp" }

// Deliver sends the code to identity. It returns early if ctx ends first;
// the SMTP exchange itself is bounded by the dialer's own timeout.
func (m *Mailer) Deliver(ctx context.Context, identity, code string) error {
	if !m.configured {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := m.buildMessage(identity, code)
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) buildMessage(to, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your login code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is: %s\nThis code expires in %d minutes.",
		code, int(m.codeTTL/time.Minute),
	))
	return msg
}
