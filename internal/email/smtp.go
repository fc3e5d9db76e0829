package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer dialer
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{from: from, dialer: gomail.NewDialer(host, port, user, pass)}
}

// Send ignores ctx once the dial has started; gomail has no cancellation.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
