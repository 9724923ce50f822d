// Package email implements the email connector for a plain SMTP relay. Lists
// come from the account credentials and campaigns live in memory until sent.
package email

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the configuration for SMTP connections.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers HTML messages through an SMTP relay.
type Sender struct {
	cfg  SMTPConfig
	send sendFunc
}

// NewSender creates a sender for cfg.
func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

func (s *Sender) auth() smtp.Auth {
	if s.cfg.Password == "" {
		return nil
	}
	user := s.cfg.Username
	if user == "" {
		user = s.cfg.From
	}
	return smtp.PlainAuth("", user, s.cfg.Password, s.cfg.Host)
}

// Send delivers one message to each recipient individually so addresses are
// not disclosed to each other.
func (s *Sender) Send(ctx context.Context, fromName, replyTo string, to []string, subject, html string) error {
	from := s.cfg.From
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), s.cfg.From)
	}
	for _, rcpt := range to {
		if err := ctx.Err(); err != nil {
			return err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "From: %s\r\n", from)
		fmt.Fprintf(&b, "To: %s\r\n", rcpt)
		if replyTo != "" {
			fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
		}
		fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
		b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(html)

		if err := s.send(s.cfg.addr(), s.auth(), s.cfg.From, []string{rcpt}, []byte(b.String())); err != nil {
			return fmt.Errorf("send email to %s: %w", rcpt, err)
		}
	}
	return nil
}
