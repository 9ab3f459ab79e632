// Package mailer delivers individual messages over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/inboxinvader/inboxinvader/internal/model"
	gomail "gopkg.in/gomail.v2"
)

// Account holds the per-request SMTP relay settings. Credentials are
// supplied by the caller on every batch and never persisted.
type Account struct {
	Server   string
	Port     int
	Email    string
	Password string
}

// Message is one fully-rendered message for a single recipient.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []model.Attachment
}

// Sender delivers a single message through the given account. Implemented
// by SMTPSender; tests substitute a fake.
type Sender interface {
	Send(ctx context.Context, acct Account, msg Message) error
}

// SMTPSender sends mail through gomail. Port 465 uses implicit TLS;
// any other port negotiates STARTTLS when the server offers it.
type SMTPSender struct {
	dialTimeout time.Duration
}

// NewSMTPSender creates an SMTPSender with the given dial timeout.
func NewSMTPSender(dialTimeout time.Duration) *SMTPSender {
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &SMTPSender{dialTimeout: dialTimeout}
}

// Send assembles and delivers one message. Each call opens a fresh
// connection because the relay and credentials vary per batch.
func (s *SMTPSender) Send(ctx context.Context, acct Account, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", acct.Email)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, att := range msg.Attachments {
		att := att
		m.Attach(att.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(att.Data)
			return err
		}))
	}

	d := gomail.NewDialer(acct.Server, acct.Port, acct.Email, acct.Password)
	d.SSL = acct.Port == 465
	d.TLSConfig = &tls.Config{ServerName: acct.Server}

	if err := s.dialAndSend(ctx, d, m); err != nil {
		return fmt.Errorf("could not send email: %w", err)
	}
	return nil
}

// dialAndSend runs the blocking gomail call in a goroutine so the dial
// timeout and context cancellation are both honored.
func (s *SMTPSender) dialAndSend(ctx context.Context, d *gomail.Dialer, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	timer := time.NewTimer(s.dialTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("timed out after %s", s.dialTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
